//go:build !integration

package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/repository"
)

type memStateRepo struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStateRepo() *memStateRepo { return &memStateRepo{data: map[string][]byte{}} }

func (m *memStateRepo) SetState(ctx context.Context, s *model.SignupSession) error {
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = b
	return nil
}

func (m *memStateRepo) GetState(ctx context.Context, id string) (*model.SignupSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	var s model.SignupSession
	return &s, json.Unmarshal(b, &s)
}

func (m *memStateRepo) ClearState(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

type memLocker struct {
	mu    sync.Mutex
	locks map[string]string
}

func newMemLocker() *memLocker { return &memLocker{locks: map[string]string{}} }

func (m *memLocker) TryLock(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.locks[key]; ok {
		return "", domain.ErrSubmissionInFlight
	}
	tok := uuid.NewString()
	m.locks[key] = tok
	return tok, nil
}

func (m *memLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] != token {
		return errors.New("unlock token mismatch")
	}
	delete(m.locks, key)
	return nil
}

type allowAll struct{}

func (allowAll) Allow(context.Context, string, int, time.Duration) (bool, error) { return true, nil }

type memSessionRepo struct {
	mu   sync.Mutex
	data map[string]repository.AuthSession
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{data: map[string]repository.AuthSession{}}
}

func (m *memSessionRepo) Put(ctx context.Context, s *repository.AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = *s
	return nil
}

func (m *memSessionRepo) Get(ctx context.Context, id string) (*repository.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	return &s, nil
}

func (m *memSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}
