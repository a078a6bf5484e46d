package account

import (
	"context"

	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
)

var _ adapter.AccountService = Unconfigured{}

// Unconfigured is wired when no account backend has been connected yet.
// Every call fails with KindServiceUnavailable.
type Unconfigured struct{}

func (Unconfigured) Name() string { return "unconfigured" }

func (Unconfigured) err() error {
	return adapter.NewAccountError(adapter.KindServiceUnavailable, "account service is not configured", nil)
}

func (u Unconfigured) CreateAccount(context.Context, adapter.NewAccount) (*model.User, error) {
	return nil, u.err()
}

func (u Unconfigured) Authenticate(context.Context, string, string) (*model.User, error) {
	return nil, u.err()
}

func (u Unconfigured) GetUser(context.Context, string) (*model.User, error) {
	return nil, u.err()
}

func (u Unconfigured) UpdateUser(context.Context, string, adapter.ProfileUpdate) (*model.User, error) {
	return nil, u.err()
}
