package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/ports/repository"
)

var _ repository.AuthSessionRepository = (*AuthSessionRepo)(nil)

// AuthSessionRepo stores signed-in sessions until they expire or are revoked.
type AuthSessionRepo struct {
	client RedisClient
}

func NewAuthSessionRepo(client RedisClient) *AuthSessionRepo {
	return &AuthSessionRepo{client: client}
}

func authSessionKey(id string) string { return fmt.Sprintf("auth_session:%s", id) }

func (r *AuthSessionRepo) Put(ctx context.Context, s *repository.AuthSession) error {
	ttl := time.Until(s.ExpiresAt)
	if s.ID == "" || ttl <= 0 {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, authSessionKey(s.ID), data, ttl)
}

func (r *AuthSessionRepo) Get(ctx context.Context, id string) (*repository.AuthSession, error) {
	data, err := r.client.Get(ctx, authSessionKey(id))
	if err != nil {
		if errors.Is(err, ErrNil) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	var s repository.AuthSession
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("decode auth session: %w", err)
	}
	return &s, nil
}

func (r *AuthSessionRepo) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, authSessionKey(id))
}
