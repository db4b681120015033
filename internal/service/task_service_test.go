package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/task-manager/internal/domain"
	"github.com/spec-kit/task-manager/internal/repository"
	"github.com/spec-kit/task-manager/internal/service"
	apperrors "github.com/spec-kit/task-manager/pkg/util"
)

type memoryTaskStore struct {
	tasks map[string]*domain.Task
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{tasks: make(map[string]*domain.Task)}
}

func (s *memoryTaskStore) Create(_ context.Context, task *domain.Task) error {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.CreatedAt = time.Now()
	task.UpdatedAt = task.CreatedAt
	stored := *task
	s.tasks[task.ID] = &stored
	return nil
}

func (s *memoryTaskStore) Update(_ context.Context, task *domain.Task) error {
	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return pgx.ErrNoRows
	}
	task.UpdatedAt = time.Now()
	stored := *task
	s.tasks[task.ID] = &stored
	return nil
}

func (s *memoryTaskStore) Delete(_ context.Context, userID, id string) error {
	existing, ok := s.tasks[id]
	if !ok || existing.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(s.tasks, id)
	return nil
}

func (s *memoryTaskStore) GetByID(_ context.Context, userID, id string) (*domain.Task, error) {
	existing, ok := s.tasks[id]
	if !ok || existing.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	copied := *existing
	return &copied, nil
}

func (s *memoryTaskStore) ListByUser(_ context.Context, userID string, _ repository.TaskFilter) ([]*domain.Task, error) {
	out := make([]*domain.Task, 0)
	for _, task := range s.tasks {
		if task.UserID == userID {
			copied := *task
			out = append(out, &copied)
		}
	}
	return out, nil
}

func strptr(s string) *string { return &s }

func TestTaskServiceCreateDefaults(t *testing.T) {
	t.Parallel()

	svc := service.NewTaskService(newMemoryTaskStore())

	task, err := svc.Create(context.Background(), "u1", service.TaskInput{Title: strptr("write report")})
	require.NoError(t, err)

	assert.Equal(t, "u1", task.UserID)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	assert.Nil(t, task.CompletedAt)
	assert.NotEmpty(t, task.ID)
}

func TestTaskServiceCreateValidation(t *testing.T) {
	t.Parallel()

	svc := service.NewTaskService(newMemoryTaskStore())

	cases := map[string]service.TaskInput{
		"missing title":      {},
		"blank title":        {Title: strptr("   ")},
		"invalid status":     {Title: strptr("x"), Status: strptr("done")},
		"invalid priority":   {Title: strptr("x"), Priority: strptr("asap")},
		"negative timeSpent": {Title: strptr("x"), TimeSpent: func() *int { v := -1; return &v }()},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "u1", input)
			require.Error(t, err)
			var domainErr *apperrors.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
		})
	}
}

func TestTaskServiceCompletionBookkeeping(t *testing.T) {
	t.Parallel()

	svc := service.NewTaskService(newMemoryTaskStore())
	task, err := svc.Create(context.Background(), "u1", service.TaskInput{Title: strptr("x")})
	require.NoError(t, err)

	completed, err := svc.Update(context.Background(), "u1", task.ID, service.TaskInput{Status: strptr("completed")})
	require.NoError(t, err)
	require.NotNil(t, completed.CompletedAt)
	assert.WithinDuration(t, time.Now(), *completed.CompletedAt, time.Minute)

	reopened, err := svc.Update(context.Background(), "u1", task.ID, service.TaskInput{Status: strptr("pending")})
	require.NoError(t, err)
	assert.Nil(t, reopened.CompletedAt)
}

func TestTaskServiceOwnershipScoping(t *testing.T) {
	t.Parallel()

	svc := service.NewTaskService(newMemoryTaskStore())
	task, err := svc.Create(context.Background(), "u1", service.TaskInput{Title: strptr("mine")})
	require.NoError(t, err)

	// Another user's view of the task is indistinguishable from absence.
	_, err = svc.Get(context.Background(), "u2", task.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	_, err = svc.Update(context.Background(), "u2", task.ID, service.TaskInput{Title: strptr("stolen")})
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	err = svc.Delete(context.Background(), "u2", task.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	mine, err := svc.Get(context.Background(), "u1", task.ID)
	require.NoError(t, err)
	assert.Equal(t, "mine", mine.Title)
}

func TestTaskServiceListScopedToOwner(t *testing.T) {
	t.Parallel()

	svc := service.NewTaskService(newMemoryTaskStore())
	_, err := svc.Create(context.Background(), "u1", service.TaskInput{Title: strptr("a")})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "u2", service.TaskInput{Title: strptr("b")})
	require.NoError(t, err)

	tasks, err := svc.List(context.Background(), "u1", repository.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "a", tasks[0].Title)
}
