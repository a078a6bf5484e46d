package repository

import (
	"context"
	"time"

	"tutor-onboarding/internal/domain/model"
)

// SignupStateRepository is the port for storing in-progress signup wizards.
// GetState returns domain.ErrSessionExpired when the id is unknown or expired.
type SignupStateRepository interface {
	SetState(ctx context.Context, s *model.SignupSession) error
	GetState(ctx context.Context, id string) (*model.SignupSession, error)
	ClearState(ctx context.Context, id string) error
}

// SubmissionLocker guards a signup session against concurrent submissions.
type SubmissionLocker interface {
	TryLock(ctx context.Context, key string) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// RateLimiter counts hits per key inside a fixed window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
