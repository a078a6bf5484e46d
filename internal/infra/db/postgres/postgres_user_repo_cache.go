package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/repository"
	"tutor-onboarding/internal/infra/metrics"
	red "tutor-onboarding/internal/infra/redis"
)

var (
	_ repository.UserRepository       = (*userRepoCacheDecorator)(nil)
	_ repository.UserCacheInvalidator = (*userRepoCacheDecorator)(nil)
)

// userRepoCacheDecorator caches FindByID lookups (dashboard reads) in Redis.
// The password hash is never written to the cache.
type userRepoCacheDecorator struct {
	inner repository.UserRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewUserRepoCacheDecorator(inner repository.UserRepository, cache red.RedisClient) repository.UserRepository {
	return &userRepoCacheDecorator{
		inner: inner,
		cache: cache,
		ttl:   10 * time.Minute,
	}
}

func userCacheKey(id string) string { return fmt.Sprintf("user:id:%s", id) }

func (d *userRepoCacheDecorator) Create(ctx context.Context, tx repository.Tx, u *repository.UserRecord) error {
	return d.inner.Create(ctx, tx, u)
}

// Update drops the cached row up front. Inside a transaction a concurrent
// FindByID can still re-cache the old row before commit, so transactional
// writers also call Invalidate after commit.
func (d *userRepoCacheDecorator) Update(ctx context.Context, tx repository.Tx, u *model.User) error {
	_ = d.cache.Del(ctx, userCacheKey(u.ID))
	return d.inner.Update(ctx, tx, u)
}

func (d *userRepoCacheDecorator) Invalidate(ctx context.Context, id string) error {
	return d.cache.Del(ctx, userCacheKey(id))
}

// FindByID serves cached rows without the hash; callers needing the hash use FindByEmail.
func (d *userRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*repository.UserRecord, error) {
	// reads inside a transaction must see the row, not the cache
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	key := userCacheKey(id)
	if val, err := d.cache.Get(ctx, key); err == nil {
		var u model.User
		if json.Unmarshal([]byte(val), &u) == nil {
			metrics.IncCacheRequest("user", "hit")
			return &repository.UserRecord{User: u}, nil
		}
	}

	metrics.IncCacheRequest("user", "miss")
	rec, err := d.inner.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(rec.User); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return rec, nil
}

func (d *userRepoCacheDecorator) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*repository.UserRecord, error) {
	return d.inner.FindByEmail(ctx, tx, email)
}

func (d *userRepoCacheDecorator) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	return d.inner.CountUsers(ctx, tx)
}
