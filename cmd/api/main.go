package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/taskloop/taskloop-go/internal/config"
	"github.com/taskloop/taskloop-go/internal/handler"
	"github.com/taskloop/taskloop-go/internal/mailer"
	"github.com/taskloop/taskloop-go/internal/middleware"
	"github.com/taskloop/taskloop-go/internal/repository"
	"github.com/taskloop/taskloop-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := repository.NewDB(cfg.DatabaseDSN)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	mail, err := mailer.New(cfg)
	if err != nil {
		slog.Error("mailer setup failed", "error", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	tokenRepo := repository.NewTokenRepository(db)

	tokenService := service.NewTokenService(tokenRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo, taskRepo, tokenService, mail)
	taskService := service.NewTaskService(taskRepo)

	userHandler := handler.NewUserHandler(userService)
	taskHandler := handler.NewTaskHandler(taskService)

	r := chi.NewRouter()
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Post("/users", userHandler.HandleSignup)
	r.Post("/users/login", userHandler.HandleLogin)
	r.Get("/users/{id}/avatar", userHandler.HandleAvatarFetch)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokenService))

		r.Post("/users/logout", userHandler.HandleLogout)
		r.Post("/users/logoutAll", userHandler.HandleLogoutAll)
		r.Get("/users/me", userHandler.HandleProfile)
		r.Patch("/users/me", userHandler.HandleUpdate)
		r.Delete("/users/me", userHandler.HandleDelete)
		r.Post("/users/me/avatar", userHandler.HandleAvatarUpload)
		r.Delete("/users/me/avatar", userHandler.HandleAvatarDelete)

		r.Post("/tasks", taskHandler.HandleCreate)
		r.Get("/tasks", taskHandler.HandleList)
		r.Get("/tasks/{id}", taskHandler.HandleGet)
		r.Patch("/tasks/{id}", taskHandler.HandleUpdate)
		r.Delete("/tasks/{id}", taskHandler.HandleDelete)
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
