package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/task-manager/internal/domain"
	"github.com/spec-kit/task-manager/internal/repository"
	apperrors "github.com/spec-kit/task-manager/pkg/util"
)

// TaskInput carries caller-supplied task fields. Nil pointers on update mean
// "leave unchanged".
type TaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	Category    *string
	Tags        []string
	DueDate     *time.Time
	TimeSpent   *int
}

// TaskService owns task business rules: ownership scoping and the
// completed-at bookkeeping tied to status transitions.
type TaskService struct {
	tasks repository.TaskStore
}

// NewTaskService builds the service.
func NewTaskService(tasks repository.TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

// List returns the owner's tasks, filtered and sorted.
func (s *TaskService) List(ctx context.Context, ownerID string, filter repository.TaskFilter) ([]*domain.Task, error) {
	return s.tasks.ListByUser(ctx, ownerID, filter)
}

// Get returns one of the owner's tasks. Tasks of other users are
// indistinguishable from missing ones.
func (s *TaskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	return s.tasks.GetByID(ctx, ownerID, id)
}

// Create validates input and stores a new task for the owner.
func (s *TaskService) Create(ctx context.Context, ownerID string, input TaskInput) (*domain.Task, error) {
	task := &domain.Task{
		UserID:   ownerID,
		Status:   domain.TaskStatusPending,
		Priority: domain.TaskPriorityMedium,
		Tags:     []string{},
	}
	if err := applyTaskInput(task, input); err != nil {
		return nil, err
	}
	if task.Title == "" {
		return nil, apperrors.NewValidationError("task title is required", nil)
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update applies partial changes to one of the owner's tasks.
func (s *TaskService) Update(ctx context.Context, ownerID, id string, input TaskInput) (*domain.Task, error) {
	task, err := s.tasks.GetByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if err := applyTaskInput(task, input); err != nil {
		return nil, err
	}
	if task.Title == "" {
		return nil, apperrors.NewValidationError("task title is required", nil)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete removes one of the owner's tasks.
func (s *TaskService) Delete(ctx context.Context, ownerID, id string) error {
	return s.tasks.Delete(ctx, ownerID, id)
}

func applyTaskInput(task *domain.Task, input TaskInput) error {
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		status := domain.TaskStatus(*input.Status)
		if !status.Valid() {
			return apperrors.NewValidationError("invalid task status", map[string]any{"status": *input.Status})
		}
		task.Status = status
	}
	if input.Priority != nil {
		priority := domain.TaskPriority(*input.Priority)
		if !priority.Valid() {
			return apperrors.NewValidationError("invalid task priority", map[string]any{"priority": *input.Priority})
		}
		task.Priority = priority
	}
	if input.Category != nil {
		task.Category = strings.TrimSpace(*input.Category)
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.TimeSpent != nil {
		if *input.TimeSpent < 0 {
			return apperrors.NewValidationError("time spent cannot be negative", nil)
		}
		task.TimeSpent = *input.TimeSpent
	}

	// Entering completed stamps the time; leaving it clears the stamp.
	switch {
	case task.Status == domain.TaskStatusCompleted && task.CompletedAt == nil:
		now := time.Now()
		task.CompletedAt = &now
	case task.Status != domain.TaskStatusCompleted && task.CompletedAt != nil:
		task.CompletedAt = nil
	}
	return nil
}
