package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid execution context")

	// Signup wizard
	ErrInvalidTransition  = errors.New("action not allowed in current signup state")
	ErrSubmissionInFlight = errors.New("account creation already in progress")
	ErrSessionExpired     = errors.New("signup session expired or unknown")
	ErrRateLimited        = errors.New("too many requests")

	// Auth sessions
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
