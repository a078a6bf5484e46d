//go:build !integration

package postgres

import (
	"context"
	"time"

	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/repository"
	red "tutor-onboarding/internal/infra/redis"
)

// mockInnerUserRepo mocks the database repository that the User decorator wraps.
type mockInnerUserRepo struct {
	CreateFunc      func(ctx context.Context, tx repository.Tx, u *repository.UserRecord) error
	UpdateFunc      func(ctx context.Context, tx repository.Tx, u *model.User) error
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id string) (*repository.UserRecord, error)
	FindByEmailFunc func(ctx context.Context, tx repository.Tx, email string) (*repository.UserRecord, error)
	CountUsersFunc  func(ctx context.Context, tx repository.Tx) (int, error)
}

func (m *mockInnerUserRepo) Create(ctx context.Context, tx repository.Tx, u *repository.UserRecord) error {
	return m.CreateFunc(ctx, tx, u)
}
func (m *mockInnerUserRepo) Update(ctx context.Context, tx repository.Tx, u *model.User) error {
	return m.UpdateFunc(ctx, tx, u)
}
func (m *mockInnerUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*repository.UserRecord, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*repository.UserRecord, error) {
	return m.FindByEmailFunc(ctx, tx, email)
}
func (m *mockInnerUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	return m.CountUsersFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	return true, m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) CompareAndDelete(ctx context.Context, key, value string) (bool, error) {
	return true, m.DelFunc(ctx, key)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
