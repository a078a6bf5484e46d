//go:build !integration

package usecase_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/domain/ports/repository"
	"tutor-onboarding/internal/infra/catalog"
	"tutor-onboarding/internal/infra/i18n"
)

// ---- Mock SignupStateRepository ----

// MockStateRepo stores sessions as JSON so callers never share pointers with it.
type MockStateRepo struct {
	mu     sync.Mutex
	data   map[string][]byte
	writes int

	SetErr error
}

var _ repository.SignupStateRepository = (*MockStateRepo)(nil)

func NewMockStateRepo() *MockStateRepo {
	return &MockStateRepo{data: map[string][]byte{}}
}

func (m *MockStateRepo) SetState(ctx context.Context, s *model.SignupSession) error {
	if m.SetErr != nil {
		return m.SetErr
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = b
	m.writes++
	return nil
}

func (m *MockStateRepo) GetState(ctx context.Context, id string) (*model.SignupSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSessionExpired
	}
	var s model.SignupSession
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *MockStateRepo) ClearState(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *MockStateRepo) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// gatedStateRepo runs a one-shot hook after the next GetState, letting a
// test park a reader between its load and its write.
type gatedStateRepo struct {
	*MockStateRepo
	mu    sync.Mutex
	onGet func()
}

func (g *gatedStateRepo) Arm(hook func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onGet = hook
}

func (g *gatedStateRepo) GetState(ctx context.Context, id string) (*model.SignupSession, error) {
	s, err := g.MockStateRepo.GetState(ctx, id)
	g.mu.Lock()
	hook := g.onGet
	g.onGet = nil
	g.mu.Unlock()
	if hook != nil {
		hook()
	}
	return s, err
}

// ---- Mock SubmissionLocker ----

type MockLocker struct {
	mu    sync.Mutex
	locks map[string]string
}

var _ repository.SubmissionLocker = (*MockLocker)(nil)

func NewMockLocker() *MockLocker { return &MockLocker{locks: map[string]string{}} }

func (m *MockLocker) TryLock(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[key]; held {
		return "", domain.ErrSubmissionInFlight
	}
	tok := uuid.NewString()
	m.locks[key] = tok
	return tok, nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[key] != token {
		return errors.New("unlock token mismatch")
	}
	delete(m.locks, key)
	return nil
}

func (m *MockLocker) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.locks[key]
	return ok
}

// ---- Mock RateLimiter ----

type MockLimiter struct {
	mu   sync.Mutex
	hits map[string]int
	Err  error
}

func NewMockLimiter() *MockLimiter { return &MockLimiter{hits: map[string]int{}} }

func (m *MockLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m.Err != nil {
		return false, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[key]++
	return m.hits[key] <= limit, nil
}

// ---- Mock AccountService ----

type AccountCall struct {
	Email, Password, Username string
	Subject                   model.Subject
	Plan                      model.PlanTier
}

// MockAccounts records CreateAccount calls. CreateFunc overrides the default
// success behavior.
type MockAccounts struct {
	mu    sync.Mutex
	Calls []AccountCall
	Users map[string]*model.User

	CreateFunc       func(ctx context.Context, acc adapter.NewAccount) (*model.User, error)
	AuthenticateFunc func(ctx context.Context, email, password string) (*model.User, error)
	UpdateFunc       func(ctx context.Context, id string, upd adapter.ProfileUpdate) (*model.User, error)
}

var _ adapter.AccountService = (*MockAccounts)(nil)

func NewMockAccounts() *MockAccounts { return &MockAccounts{Users: map[string]*model.User{}} }

func (m *MockAccounts) Name() string { return "mock" }

func (m *MockAccounts) CreateAccount(ctx context.Context, acc adapter.NewAccount) (*model.User, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, AccountCall{acc.Email, acc.Password, acc.Username, acc.Subject, acc.Plan})
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, acc)
	}
	u, err := model.NewUser("", acc.Email, acc.Username, acc.Subject, acc.Plan)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.Users[u.ID] = u
	m.mu.Unlock()
	return u, nil
}

func (m *MockAccounts) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockAccounts) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	if m.AuthenticateFunc != nil {
		return m.AuthenticateFunc(ctx, email, password)
	}
	return nil, adapter.NewAccountError(adapter.KindInvalidCredentials, "", nil)
}

func (m *MockAccounts) GetUser(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, adapter.NewAccountError(adapter.KindNotFound, "", nil)
	}
	cp := *u
	return &cp, nil
}

func (m *MockAccounts) UpdateUser(ctx context.Context, id string, upd adapter.ProfileUpdate) (*model.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, upd)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.Users[id]
	if !ok {
		return nil, adapter.NewAccountError(adapter.KindNotFound, "", nil)
	}
	u.Username, u.Email, u.Subject, u.AvatarURL = upd.Username, upd.Email, upd.Subject, upd.AvatarURL
	cp := *u
	return &cp, nil
}

// ---- Mock AuthSessionRepository ----

type MockSessionRepo struct {
	mu   sync.Mutex
	data map[string]repository.AuthSession
}

var _ repository.AuthSessionRepository = (*MockSessionRepo)(nil)

func NewMockSessionRepo() *MockSessionRepo {
	return &MockSessionRepo{data: map[string]repository.AuthSession{}}
}

func (m *MockSessionRepo) Put(ctx context.Context, s *repository.AuthSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ID] = *s
	return nil
}

func (m *MockSessionRepo) Get(ctx context.Context, id string) (*repository.AuthSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[id]
	if !ok || time.Now().After(s.ExpiresAt) {
		return nil, domain.ErrUnauthorized
	}
	return &s, nil
}

func (m *MockSessionRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, id)
	return nil
}

func (m *MockSessionRepo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

// ---- Mock TokenSigner ----

// MockSigner encodes claims as "sessionID|userID" without a signature.
type MockSigner struct{}

func (MockSigner) Sign(c adapter.TokenClaims) (string, error) {
	return c.SessionID + "|" + c.UserID, nil
}

func (MockSigner) Verify(token string) (*adapter.TokenClaims, error) {
	for i := 0; i < len(token); i++ {
		if token[i] == '|' {
			return &adapter.TokenClaims{SessionID: token[:i], UserID: token[i+1:]}, nil
		}
	}
	return nil, domain.ErrUnauthorized
}

// ---- helpers ----

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestTranslator() *i18n.Translator { return i18n.MustDefault() }

func newTestCatalog() *catalog.Catalog {
	c, err := catalog.Default()
	if err != nil {
		panic(err)
	}
	return c
}
