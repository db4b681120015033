package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/task-manager/internal/domain"
)

// TaskFilter narrows and orders task listings. Zero values mean "no filter".
type TaskFilter struct {
	Status    string
	Priority  string
	Category  string
	SortBy    string
	SortOrder string
}

// TaskStore defines persistence access for tasks. Every operation is scoped
// to the owning user; rows belonging to other users behave as absent.
type TaskStore interface {
	Create(ctx context.Context, task *domain.Task) error
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, userID, id string) error
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string, filter TaskFilter) ([]*domain.Task, error)
}

// Whitelisted sort columns; anything else falls back to created_at.
var taskSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"priority":  "priority",
	"status":    "status",
	"title":     "title",
}

type taskStore struct {
	pool *pgxpool.Pool
}

// NewTaskStore returns the postgres-backed task store.
func NewTaskStore(pool *pgxpool.Pool) TaskStore {
	return &taskStore{pool: pool}
}

func (r *taskStore) Create(ctx context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}

	const query = `
        INSERT INTO tasks (id, user_id, title, description, status, priority, category, tags, due_date, completed_at, time_spent)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Category,
		task.Tags,
		task.DueDate,
		task.CompletedAt,
		task.TimeSpent,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
}

func (r *taskStore) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks
        SET title=$1, description=$2, status=$3, priority=$4, category=$5, tags=$6,
            due_date=$7, completed_at=$8, time_spent=$9, updated_at=NOW()
        WHERE id=$10 AND user_id=$11`

	cmd, err := r.pool.Exec(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Category,
		task.Tags,
		task.DueDate,
		task.CompletedAt,
		task.TimeSpent,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskStore) Delete(ctx context.Context, userID, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskStore) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	const query = `
        SELECT id, user_id, title, description, status, priority, category, tags,
               due_date, completed_at, time_spent, created_at, updated_at
        FROM tasks WHERE id=$1 AND user_id=$2`

	return scanTask(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *taskStore) ListByUser(ctx context.Context, userID string, filter TaskFilter) ([]*domain.Task, error) {
	var sb strings.Builder
	sb.WriteString(`
        SELECT id, user_id, title, description, status, priority, category, tags,
               due_date, completed_at, time_spent, created_at, updated_at
        FROM tasks WHERE user_id=$1`)

	args := []any{userID}
	if filter.Status != "" {
		args = append(args, filter.Status)
		fmt.Fprintf(&sb, " AND status=$%d", len(args))
	}
	if filter.Priority != "" {
		args = append(args, filter.Priority)
		fmt.Fprintf(&sb, " AND priority=$%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		fmt.Fprintf(&sb, " AND category=$%d", len(args))
	}

	column, ok := taskSortColumns[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}
	fmt.Fprintf(&sb, " ORDER BY %s %s", column, direction)

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var task domain.Task
	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.Priority,
		&task.Category,
		&task.Tags,
		&task.DueDate,
		&task.CompletedAt,
		&task.TimeSpent,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &task, nil
}
