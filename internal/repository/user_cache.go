package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/task-manager/internal/domain"
)

const userCacheKeyPrefix = "user:"

// CachedUserStore is a read-through Redis cache in front of another
// UserStore. Token verification re-checks user existence on every protected
// request; the cache keeps that off the database hot path. Cache errors fall
// through to the inner store, so a dead Redis only costs latency.
type CachedUserStore struct {
	inner  UserStore
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedUserStore wraps inner with a Redis cache.
func NewCachedUserStore(inner UserStore, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedUserStore {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedUserStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

// Create delegates to the inner store and drops any stale cache entry.
func (s *CachedUserStore) Create(ctx context.Context, user *domain.User) error {
	if err := s.inner.Create(ctx, user); err != nil {
		return err
	}
	s.invalidate(ctx, user.ID)
	return nil
}

// GetByID serves from cache when possible.
func (s *CachedUserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if cached := s.lookup(ctx, id); cached != nil {
		return cached, nil
	}

	user, err := s.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.store(ctx, user)
	return user, nil
}

// GetByEmail always hits the inner store; login is not a hot path and caching
// by email would double the invalidation surface.
func (s *CachedUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.inner.GetByEmail(ctx, email)
}

func (s *CachedUserStore) lookup(ctx context.Context, id string) *domain.User {
	if s.client == nil {
		return nil
	}
	payload, err := s.client.Get(ctx, userCacheKeyPrefix+id).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Debug("user cache read failed", zap.Error(err))
		}
		return nil
	}
	var user domain.User
	if err := json.Unmarshal(payload, &user); err != nil {
		s.logger.Debug("user cache entry corrupt", zap.String("id", id), zap.Error(err))
		s.invalidate(ctx, id)
		return nil
	}
	return &user
}

func (s *CachedUserStore) store(ctx context.Context, user *domain.User) {
	if s.client == nil {
		return
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, userCacheKeyPrefix+user.ID, payload, s.ttl).Err(); err != nil {
		s.logger.Debug("user cache write failed", zap.Error(err))
	}
}

func (s *CachedUserStore) invalidate(ctx context.Context, id string) {
	if s.client == nil {
		return
	}
	if err := s.client.Del(ctx, userCacheKeyPrefix+id).Err(); err != nil {
		s.logger.Debug("user cache invalidate failed", zap.Error(err))
	}
}
