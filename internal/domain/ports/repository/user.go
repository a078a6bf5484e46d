package repository

import (
	"context"

	"tutor-onboarding/internal/domain/model"
)

// UserRecord is a user row including the password hash. Only the self-hosted
// account provider sees it.
type UserRecord struct {
	model.User
	PasswordHash string `json:"-"`
}

type UserRepository interface {
	Create(ctx context.Context, tx Tx, u *UserRecord) error
	Update(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*UserRecord, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*UserRecord, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
}

// UserCacheInvalidator is implemented by caching UserRepository decorators.
// Writers call it once their transaction has committed.
type UserCacheInvalidator interface {
	Invalidate(ctx context.Context, id string) error
}
