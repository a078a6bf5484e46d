// File: internal/infra/redis/lock.go
package redis

import (
	"context"
	"time"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/ports/repository"

	"github.com/google/uuid"
)

var _ repository.SubmissionLocker = (*RedisLocker)(nil)

// RedisLocker is a single-attempt SETNX lock. A held lock means another
// request owns the key, so callers fail fast instead of waiting.
type RedisLocker struct {
	client RedisClient
	ttl    time.Duration
}

// NewLocker creates a locker whose leases expire after ttl, so a crashed
// holder cannot wedge a key forever.
func NewLocker(c RedisClient, ttl time.Duration) *RedisLocker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisLocker{client: c, ttl: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context, key string) (string, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, l.ttl)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrSubmissionInFlight
	}
	return token, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key, token string) error {
	_, err := l.client.CompareAndDelete(ctx, key, token)
	return err
}
