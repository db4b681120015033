package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-manager/internal/api/dto"
	"github.com/spec-kit/task-manager/internal/auth"
	"github.com/spec-kit/task-manager/internal/repository"
	"github.com/spec-kit/task-manager/internal/service"
	apperrors "github.com/spec-kit/task-manager/pkg/util"
)

// TasksHandler exposes the task CRUD endpoints. The gate has already
// attached an identity; handlers consume it and never re-verify.
type TasksHandler struct {
	tasks *service.TaskService
}

// NewTasksHandler constructs the handler.
func NewTasksHandler(tasks *service.TaskService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// List handles GET /api/tasks.
func (h *TasksHandler) List(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	filter := repository.TaskFilter{
		Status:    c.Query("status"),
		Priority:  c.Query("priority"),
		Category:  c.Query("category"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}

	tasks, err := h.tasks.List(c.UserContext(), identity.ID, filter)
	if err != nil {
		return apperrors.MapError(err)
	}

	out := make([]dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, dto.NewTaskResponse(task))
	}
	return c.JSON(fiber.Map{"tasks": out})
}

// Create handles POST /api/tasks.
func (h *TasksHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TaskCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	task, err := h.tasks.Create(c.UserContext(), identity.ID, service.TaskInput{
		Title:       &req.Title,
		Description: &req.Description,
		Status:      optional(req.Status),
		Priority:    optional(req.Priority),
		Category:    &req.Category,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
		TimeSpent:   req.TimeSpent,
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"task": dto.NewTaskResponse(task)})
}

// Get handles GET /api/tasks/:id.
func (h *TasksHandler) Get(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	task, err := h.tasks.Get(c.UserContext(), identity.ID, c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"task": dto.NewTaskResponse(task)})
}

// Update handles PUT /api/tasks/:id.
func (h *TasksHandler) Update(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.TaskUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	task, err := h.tasks.Update(c.UserContext(), identity.ID, c.Params("id"), service.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
		TimeSpent:   req.TimeSpent,
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"task": dto.NewTaskResponse(task)})
}

// Delete handles DELETE /api/tasks/:id.
func (h *TasksHandler) Delete(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.tasks.Delete(c.UserContext(), identity.ID, c.Params("id")); err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted"})
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
