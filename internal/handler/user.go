package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/taskloop/taskloop-go/internal/avatar"
	"github.com/taskloop/taskloop-go/internal/middleware"
	"github.com/taskloop/taskloop-go/internal/model"
	"github.com/taskloop/taskloop-go/internal/service"
)

// maxAvatarBytes caps avatar uploads at 1MB before anything is read.
const maxAvatarBytes = 1 << 20

// UserHandler handles HTTP requests for user accounts.
type UserHandler struct {
	service *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService) *UserHandler {
	return &UserHandler{service: svc}
}

// HandleSignup handles POST /users.
func (h *UserHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req model.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.Signup(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrValidation), errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// HandleLogin handles POST /users/login.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogout handles POST /users/logout. Only the token that
// authenticated this request is revoked.
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	userID, token, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	if err := h.service.Logout(r.Context(), userID, token); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

// HandleLogoutAll handles POST /users/logoutAll.
func (h *UserHandler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	if err := h.service.LogoutAll(r.Context(), userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

// HandleProfile handles GET /users/me.
func (h *UserHandler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	resp, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleUpdate handles PATCH /users/me.
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	keys, raw, err := decodePartial(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	var upd model.UserUpdate
	if err := json.Unmarshal(raw, &upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.Update(r.Context(), userID, keys, upd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUpdateFields),
			errors.Is(err, model.ErrValidation),
			errors.Is(err, service.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrUserNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleDelete handles DELETE /users/me.
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	resp, err := h.service.Delete(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleAvatarUpload handles POST /users/me/avatar. The body is a multipart
// form with a single "avatar" file part.
func (h *UserHandler) HandleAvatarUpload(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxAvatarBytes)

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("avatar file missing or too large"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("avatar file missing or too large"))
		return
	}

	if err := h.service.UploadAvatar(r.Context(), userID, header.Filename, data); err != nil {
		switch {
		case errors.Is(err, service.ErrBadAvatarType), errors.Is(err, model.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

// HandleAvatarDelete handles DELETE /users/me/avatar.
func (h *UserHandler) HandleAvatarDelete(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := identity(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	if err := h.service.DeleteAvatar(r.Context(), userID); err != nil {
		if errors.Is(err, service.ErrNoAvatar) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, struct{}{})
}

// HandleAvatarFetch handles GET /users/{id}/avatar. The route is public.
func (h *UserHandler) HandleAvatarFetch(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, err := h.service.Avatar(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrNoAvatar):
			writeJSON(w, http.StatusNotFound, errorResponse("not found"))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	w.Header().Set("Content-Type", avatar.ContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// identity pulls the authenticated user id and token out of the context.
func identity(r *http.Request) (userID, token string, ok bool) {
	userID, ok = middleware.UserIDFromContext(r.Context())
	if !ok {
		return "", "", false
	}
	token, _ = middleware.TokenFromContext(r.Context())
	return userID, token, true
}
