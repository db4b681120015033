package dto

import (
	"time"

	"github.com/spec-kit/task-manager/internal/domain"
)

// TaskCreateRequest is the payload for POST /api/tasks.
type TaskCreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
	TimeSpent   *int       `json:"timeSpent"`
}

// TaskUpdateRequest is the payload for PUT /api/tasks/:id. Absent fields
// leave the stored value unchanged.
type TaskUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	Category    *string    `json:"category"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate"`
	TimeSpent   *int       `json:"timeSpent"`
}

// TaskResponse is the wire view of a task.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	TimeSpent   int        `json:"timeSpent"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewTaskResponse maps a domain task to its wire view.
func NewTaskResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		Category:    task.Category,
		Tags:        task.Tags,
		DueDate:     task.DueDate,
		CompletedAt: task.CompletedAt,
		TimeSpent:   task.TimeSpent,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}
