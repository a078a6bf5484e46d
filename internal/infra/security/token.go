package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/ports/adapter"
)

var _ adapter.TokenSigner = (*JWTSigner)(nil)

// JWTSigner issues HS256 tokens with the session id as jti and the user id as sub.
type JWTSigner struct {
	secret []byte
	issuer string
}

func NewJWTSigner(secret string) (*JWTSigner, error) {
	if secret == "" {
		return nil, errors.New("jwt secret empty")
	}
	return &JWTSigner{secret: []byte(secret), issuer: "tutor-onboarding"}, nil
}

func (s *JWTSigner) Sign(c adapter.TokenClaims) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		ID:        c.SessionID,
		Subject:   c.UserID,
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *JWTSigner) Verify(token string) (*adapter.TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.issuer))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrUnauthorized
	}
	if claims.ID == "" || claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrUnauthorized
	}
	return &adapter.TokenClaims{
		SessionID: claims.ID,
		UserID:    claims.Subject,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
