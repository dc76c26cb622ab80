package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/taskloop/taskloop-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// sortColumns maps the sortBy names accepted on GET /tasks to real columns.
// Anything else falls back to natural order, never into the query text.
var sortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"description": "description",
	"completed":   "completed",
}

// TaskRepository handles task persistence operations. Every read and write
// is scoped by owner_id, so a foreign task id behaves exactly like a missing
// one.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task, assigning a fresh id when none is set.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	query := `INSERT INTO tasks (id, description, completed, owner_id) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, task.ID, task.Description, task.Completed, task.OwnerID)
	return err
}

// GetByID retrieves a task owned by the given user.
func (r *TaskRepository) GetByID(ctx context.Context, ownerID, id string) (*model.Task, error) {
	query := `SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks WHERE id = ? AND owner_id = ?`

	task := &model.Task{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&task.ID, &task.Description, &task.Completed, &task.OwnerID, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// List retrieves the caller's tasks applying the optional completion filter,
// pagination and sort.
func (r *TaskRepository) List(ctx context.Context, ownerID string, filter model.ListFilter) ([]model.Task, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, description, completed, owner_id, created_at, updated_at
		FROM tasks WHERE owner_id = ?`)
	args := []any{ownerID}

	if filter.Completed != nil {
		sb.WriteString(` AND completed = ?`)
		args = append(args, *filter.Completed)
	}

	if col, ok := sortColumns[filter.SortBy]; ok {
		sb.WriteString(` ORDER BY ` + col)
		if filter.SortDesc {
			sb.WriteString(` DESC`)
		} else {
			sb.WriteString(` ASC`)
		}
	}

	if filter.Limit > 0 || filter.Skip > 0 {
		// MySQL has no OFFSET without LIMIT; fall back to the documented
		// "all remaining rows" limit when only skip is present.
		limit := filter.Limit
		if limit <= 0 {
			limit = 1<<63 - 1
		}
		sb.WriteString(` LIMIT ? OFFSET ?`)
		args = append(args, limit, filter.Skip)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.Description, &t.Completed, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Update persists the mutable fields of a task, still owner-scoped.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	query := `UPDATE tasks SET description = ?, completed = ? WHERE id = ? AND owner_id = ?`

	result, err := r.db.ExecContext(ctx, query, task.Description, task.Completed, task.ID, task.OwnerID)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// The row may exist with identical values; distinguish a no-op
		// update from a missing or foreign task.
		if _, err := r.GetByID(ctx, task.OwnerID, task.ID); err != nil {
			return err
		}
	}

	return nil
}

// Delete removes a task owned by the given user.
func (r *TaskRepository) Delete(ctx context.Context, ownerID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}

	return checkFound(result, ErrTaskNotFound)
}

// DeleteByOwner removes every task owned by a user. Runs after the user row
// is already gone; the two steps are deliberately not transactional.
func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE owner_id = ?`, ownerID)
	return err
}
