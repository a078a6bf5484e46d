package adapter

import "time"

// TokenClaims are the fields carried by a session token.
type TokenClaims struct {
	SessionID string
	UserID    string
	ExpiresAt time.Time
}

// TokenSigner mints and verifies signed session tokens.
type TokenSigner interface {
	Sign(c TokenClaims) (string, error)
	Verify(token string) (*TokenClaims, error)
}
