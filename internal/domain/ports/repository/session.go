package repository

import (
	"context"
	"time"
)

// AuthSession is the server-side record behind an issued session token.
type AuthSession struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthSessionRepository stores live sessions; deleting one signs the user out.
// Get returns domain.ErrUnauthorized for an unknown or expired id.
type AuthSessionRepository interface {
	Put(ctx context.Context, s *AuthSession) error
	Get(ctx context.Context, id string) (*AuthSession, error)
	Delete(ctx context.Context, id string) error
}
