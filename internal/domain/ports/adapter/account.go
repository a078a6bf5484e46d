package adapter

import (
	"context"
	"errors"
	"fmt"

	"tutor-onboarding/internal/domain/model"
)

// AccountErrorKind classifies account-service failures so callers can branch
// on the kind instead of the message text.
type AccountErrorKind string

const (
	// KindServiceUnavailable: the backing service is unreachable, timed out or not configured.
	KindServiceUnavailable AccountErrorKind = "service_unavailable"
	// KindConflict: email or username already registered.
	KindConflict AccountErrorKind = "conflict"
	// KindInvalidCredentials: sign-in rejected.
	KindInvalidCredentials AccountErrorKind = "invalid_credentials"
	// KindNotFound: the referenced account does not exist.
	KindNotFound AccountErrorKind = "not_found"
	// KindGeneric: anything else.
	KindGeneric AccountErrorKind = "generic"
)

// AccountError is the failure type returned by every AccountService method.
type AccountError struct {
	Kind    AccountErrorKind
	Message string
	Err     error
}

func (e *AccountError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("account service (%s): %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("account service (%s): %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("account service (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("account service (%s)", e.Kind)
}

func (e *AccountError) Unwrap() error { return e.Err }

func NewAccountError(kind AccountErrorKind, msg string, err error) *AccountError {
	return &AccountError{Kind: kind, Message: msg, Err: err}
}

// ErrorKind extracts the kind of err, defaulting to KindGeneric for foreign errors.
func ErrorKind(err error) AccountErrorKind {
	var ae *AccountError
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindGeneric
}

// ErrorMessage returns the service-provided message of err, if any.
func ErrorMessage(err error) string {
	var ae *AccountError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return ""
}

// NewAccount is the record handed to CreateAccount.
type NewAccount struct {
	Email    string
	Password string
	Username string
	Subject  model.Subject
	Plan     model.PlanTier
}

// ProfileUpdate carries the settings a user may change. Empty fields are left as is.
type ProfileUpdate struct {
	Username  string
	Email     string
	Subject   model.Subject
	AvatarURL string
}

// AccountService is the port for the external account-and-billing service.
type AccountService interface {
	Name() string
	CreateAccount(ctx context.Context, acc NewAccount) (*model.User, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateUser(ctx context.Context, id string, upd ProfileUpdate) (*model.User, error)
}
