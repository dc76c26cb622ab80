package model

import (
	"fmt"
	"strings"
	"time"
)

// Task represents a task row. OwnerID is always the authenticated user that
// created the task; it is never decoded from a request body.
type Task struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	OwnerID     string    `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateTaskRequest represents a task creation request. There is
// deliberately no owner field.
type CreateTaskRequest struct {
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// NewTask validates the request and binds the task to its owner.
func NewTask(req CreateTaskRequest, ownerID string) (*Task, error) {
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}

	return &Task{
		Description: description,
		Completed:   req.Completed,
		OwnerID:     ownerID,
	}, nil
}

// taskUpdateFields is the allow-list for PATCH /tasks/{id}.
var taskUpdateFields = map[string]bool{
	"description": true,
	"completed":   true,
}

// TaskUpdate holds the decoded allow-listed fields of a partial task update.
type TaskUpdate struct {
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// CheckTaskUpdateFields rejects the whole update when any payload key falls
// outside the allow-list.
func CheckTaskUpdateFields(keys []string) error {
	for _, k := range keys {
		if !taskUpdateFields[k] {
			return fmt.Errorf("invalid update field %q", k)
		}
	}
	return nil
}

// Apply mutates the task with the present fields.
func (t *TaskUpdate) Apply(task *Task) error {
	if t.Description != nil {
		description := strings.TrimSpace(*t.Description)
		if description == "" {
			return fmt.Errorf("%w: description is required", ErrValidation)
		}
		task.Description = description
	}
	if t.Completed != nil {
		task.Completed = *t.Completed
	}
	return nil
}

// ListFilter captures the optional query parameters of GET /tasks. Invalid
// values never reach this struct; parsing falls back to the zero value.
type ListFilter struct {
	Completed *bool
	Limit     int
	Skip      int
	SortBy    string
	SortDesc  bool
}
