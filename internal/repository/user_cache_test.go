package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/task-manager/internal/domain"
	"github.com/spec-kit/task-manager/internal/repository"
)

type countingUserStore struct {
	users map[string]*domain.User
	gets  int
}

func (s *countingUserStore) Create(_ context.Context, user *domain.User) error {
	s.users[user.ID] = user
	return nil
}

func (s *countingUserStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.gets++
	user, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (s *countingUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// deadClient points at a port nothing listens on; every command errors fast.
func deadClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestCachedUserStoreFallsThroughWhenRedisDown(t *testing.T) {
	t.Parallel()

	inner := &countingUserStore{users: map[string]*domain.User{
		"u1": {ID: "u1", Email: "a@b.com", Name: "A"},
	}}
	cached := repository.NewCachedUserStore(inner, deadClient(), time.Minute, zap.NewNop())

	user, err := cached.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, 1, inner.gets)

	// Still served (by the inner store) on every call while redis is down.
	_, err = cached.GetByID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.gets)
}

func TestCachedUserStoreMissPropagates(t *testing.T) {
	t.Parallel()

	inner := &countingUserStore{users: map[string]*domain.User{}}
	cached := repository.NewCachedUserStore(inner, deadClient(), time.Minute, zap.NewNop())

	_, err := cached.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestCachedUserStoreCreateDelegates(t *testing.T) {
	t.Parallel()

	inner := &countingUserStore{users: map[string]*domain.User{}}
	cached := repository.NewCachedUserStore(inner, deadClient(), time.Minute, zap.NewNop())

	user := &domain.User{ID: "u2", Email: "b@b.com"}
	require.NoError(t, cached.Create(context.Background(), user))

	got, err := cached.GetByID(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, "b@b.com", got.Email)
}

func TestCachedUserStoreGetByEmailBypassesCache(t *testing.T) {
	t.Parallel()

	inner := &countingUserStore{users: map[string]*domain.User{
		"u1": {ID: "u1", Email: "a@b.com"},
	}}
	cached := repository.NewCachedUserStore(inner, deadClient(), time.Minute, zap.NewNop())

	user, err := cached.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
}
