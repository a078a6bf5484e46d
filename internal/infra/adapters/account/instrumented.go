package account

import (
	"context"
	"time"

	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/infra/metrics"
)

// Compile-time check
var _ adapter.AccountService = (*instrumented)(nil)

type instrumented struct {
	inner adapter.AccountService
}

// NewInstrumented records latency and outcome of every call to inner.
func NewInstrumented(inner adapter.AccountService) adapter.AccountService {
	return &instrumented{inner: inner}
}

func (i *instrumented) Name() string { return i.inner.Name() }

func (i *instrumented) CreateAccount(ctx context.Context, acc adapter.NewAccount) (u *model.User, err error) {
	defer func(start time.Time) { metrics.ObserveAccountCall(i.inner.Name(), "create", start, err) }(time.Now())
	return i.inner.CreateAccount(ctx, acc)
}

func (i *instrumented) Authenticate(ctx context.Context, email, password string) (u *model.User, err error) {
	defer func(start time.Time) { metrics.ObserveAccountCall(i.inner.Name(), "authenticate", start, err) }(time.Now())
	return i.inner.Authenticate(ctx, email, password)
}

func (i *instrumented) GetUser(ctx context.Context, id string) (u *model.User, err error) {
	defer func(start time.Time) { metrics.ObserveAccountCall(i.inner.Name(), "get", start, err) }(time.Now())
	return i.inner.GetUser(ctx, id)
}

func (i *instrumented) UpdateUser(ctx context.Context, id string, upd adapter.ProfileUpdate) (u *model.User, err error) {
	defer func(start time.Time) { metrics.ObserveAccountCall(i.inner.Name(), "update", start, err) }(time.Now())
	return i.inner.UpdateUser(ctx, id, upd)
}
