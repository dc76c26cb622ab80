package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/taskloop/taskloop-go/internal/model"
	"github.com/taskloop/taskloop-go/internal/repository"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskStore persists task records. Every operation except the cascade purge
// is scoped by owner.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, ownerID, id string) (*model.Task, error)
	List(ctx context.Context, ownerID string, filter model.ListFilter) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, ownerID, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// TaskService handles owner-scoped task business logic.
type TaskService struct {
	store TaskStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

// Create builds a task bound to the authenticated owner and persists it.
func (s *TaskService) Create(ctx context.Context, ownerID string, req model.CreateTaskRequest) (*model.Task, error) {
	task, err := model.NewTask(req, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// List returns the caller's tasks under the given filter. Filters never
// fail; invalid query input has already fallen back to the zero filter.
func (s *TaskService) List(ctx context.Context, ownerID string, filter model.ListFilter) ([]model.Task, error) {
	return s.store.List(ctx, ownerID, filter)
}

// Get returns a task only when it exists and belongs to the caller. A
// foreign task id is reported as not found, so ids cannot be enumerated.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*model.Task, error) {
	task, err := s.store.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// Update applies an allow-listed partial update to an owned task. Any
// payload key outside {description, completed} fails the whole operation
// before the task is even loaded.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, keys []string, upd model.TaskUpdate) (*model.Task, error) {
	if err := model.CheckTaskUpdateFields(keys); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpdateFields, err)
	}

	task, err := s.store.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := upd.Apply(task); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// Delete removes an owned task and returns its last state.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) (*model.Task, error) {
	task, err := s.store.GetByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}
