package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/taskloop/taskloop-go/internal/middleware"
	"github.com/taskloop/taskloop-go/internal/model"
	"github.com/taskloop/taskloop-go/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// HandleCreate handles POST /tasks.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req model.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	task, err := h.service.Create(r.Context(), ownerID, req)
	if err != nil {
		if errors.Is(err, model.ErrValidation) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

// HandleList handles GET /tasks. Query parameters completed, limit, skip
// and sortBy are all optional; an unparseable value falls back to its zero
// behavior instead of failing the request.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	filter := parseListFilter(r.URL.Query().Get("completed"),
		r.URL.Query().Get("limit"),
		r.URL.Query().Get("skip"),
		r.URL.Query().Get("sortBy"))

	tasks, err := h.service.List(r.Context(), ownerID, filter)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, tasks)
}

// HandleGet handles GET /tasks/{id}.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	task, err := h.service.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleUpdate handles PATCH /tasks/{id}.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
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

	var upd model.TaskUpdate
	if err := json.Unmarshal(raw, &upd); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	task, err := h.service.Update(r.Context(), ownerID, chi.URLParam(r, "id"), keys, upd)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidUpdateFields), errors.Is(err, model.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrTaskNotFound):
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
		default:
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// HandleDelete handles DELETE /tasks/{id}.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("please authenticate"))
		return
	}

	task, err := h.service.Delete(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// parseListFilter interprets the list query parameters. Nothing here ever
// errors: bad input means no filter, no limit, natural order.
func parseListFilter(completed, limit, skip, sortBy string) model.ListFilter {
	var filter model.ListFilter

	switch completed {
	case "true":
		v := true
		filter.Completed = &v
	case "false":
		v := false
		filter.Completed = &v
	}

	if n, err := strconv.Atoi(limit); err == nil && n > 0 {
		filter.Limit = n
	}
	if n, err := strconv.Atoi(skip); err == nil && n > 0 {
		filter.Skip = n
	}

	if sortBy != "" {
		field, dir, _ := strings.Cut(sortBy, ":")
		filter.SortBy = field
		// descending unless the client explicitly asked for ascending
		filter.SortDesc = dir != "asc"
	}

	return filter
}
