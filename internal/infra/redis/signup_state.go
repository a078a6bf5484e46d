package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/repository"
)

// Ensure the adapter implements the port interface.
var _ repository.SignupStateRepository = (*SignupStateRepo)(nil)

// PasswordSealer encrypts the wizard password while it is stored.
type PasswordSealer interface {
	Seal(plaintext, aad string) (string, error)
	Open(sealed, aad string) (string, error)
}

// SignupStateRepo keeps wizard sessions as JSON with a sliding TTL. Every
// write extends the lifetime; an idle session simply disappears.
type SignupStateRepo struct {
	client RedisClient
	sealer PasswordSealer
	ttl    time.Duration
}

func NewSignupStateRepo(client RedisClient, sealer PasswordSealer, ttl time.Duration) *SignupStateRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &SignupStateRepo{client: client, sealer: sealer, ttl: ttl}
}

func signupStateKey(id string) string {
	return fmt.Sprintf("signup_state:%s", id)
}

func (s *SignupStateRepo) SetState(ctx context.Context, st *model.SignupSession) error {
	if st == nil || st.ID == "" {
		return domain.ErrInvalidArgument
	}
	stored := *st
	sealed, err := s.sealer.Seal(st.Form.Password, signupStateKey(st.ID))
	if err != nil {
		return fmt.Errorf("seal signup password: %w", err)
	}
	stored.Form.Password = sealed
	data, err := json.Marshal(&stored)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, signupStateKey(st.ID), data, s.ttl)
}

func (s *SignupStateRepo) GetState(ctx context.Context, id string) (*model.SignupSession, error) {
	data, err := s.client.Get(ctx, signupStateKey(id))
	if err != nil {
		if errors.Is(err, ErrNil) {
			return nil, domain.ErrSessionExpired
		}
		return nil, err
	}

	var st model.SignupSession
	if err := json.Unmarshal([]byte(data), &st); err != nil {
		return nil, fmt.Errorf("decode signup state: %w", err)
	}
	plain, err := s.sealer.Open(st.Form.Password, signupStateKey(id))
	if err != nil {
		return nil, fmt.Errorf("open signup password: %w", err)
	}
	st.Form.Password = plain
	return &st, nil
}

func (s *SignupStateRepo) ClearState(ctx context.Context, id string) error {
	return s.client.Del(ctx, signupStateKey(id))
}
