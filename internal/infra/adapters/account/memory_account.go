package account

import (
	"context"
	"strings"
	"sync"

	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/infra/security"
)

var _ adapter.AccountService = (*MemoryAccountService)(nil)

// MemoryAccountService keeps accounts in process memory. Use it in dev mode
// and tests; everything is lost on restart.
type MemoryAccountService struct {
	mu      sync.Mutex
	users   map[string]*model.User
	hashes  map[string]string // user id -> bcrypt hash
	byEmail map[string]string // lower(email) -> user id
}

func NewMemoryAccountService() *MemoryAccountService {
	return &MemoryAccountService{
		users:   make(map[string]*model.User),
		hashes:  make(map[string]string),
		byEmail: make(map[string]string),
	}
}

func (m *MemoryAccountService) Name() string { return "memory" }

func (m *MemoryAccountService) CreateAccount(ctx context.Context, acc adapter.NewAccount) (*model.User, error) {
	u, err := model.NewUser("", acc.Email, acc.Username, acc.Subject, acc.Plan)
	if err != nil {
		return nil, adapter.NewAccountError(adapter.KindGeneric, "invalid account data", err)
	}
	hash, err := security.HashPassword(acc.Password)
	if err != nil {
		return nil, adapter.NewAccountError(adapter.KindGeneric, "", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := m.byEmail[key]; ok {
		return nil, adapter.NewAccountError(adapter.KindConflict, "email or username already registered", nil)
	}
	for _, other := range m.users {
		if strings.EqualFold(other.Username, u.Username) {
			return nil, adapter.NewAccountError(adapter.KindConflict, "email or username already registered", nil)
		}
	}
	m.users[u.ID] = u
	m.hashes[u.ID] = hash
	m.byEmail[key] = u.ID
	cp := *u
	return &cp, nil
}

func (m *MemoryAccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	m.mu.Lock()
	id, ok := m.byEmail[strings.ToLower(strings.TrimSpace(email))]
	hash := m.hashes[id]
	var cp model.User
	if ok {
		cp = *m.users[id]
	}
	m.mu.Unlock()

	if !ok {
		return nil, adapter.NewAccountError(adapter.KindInvalidCredentials, "", nil)
	}
	match, err := security.CheckPassword(hash, password)
	if err != nil {
		return nil, adapter.NewAccountError(adapter.KindGeneric, "", err)
	}
	if !match {
		return nil, adapter.NewAccountError(adapter.KindInvalidCredentials, "", nil)
	}
	return &cp, nil
}

func (m *MemoryAccountService) GetUser(ctx context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, adapter.NewAccountError(adapter.KindNotFound, "", nil)
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryAccountService) UpdateUser(ctx context.Context, id string, upd adapter.ProfileUpdate) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, adapter.NewAccountError(adapter.KindNotFound, "", nil)
	}
	if upd.Email != "" && !strings.EqualFold(upd.Email, u.Email) {
		key := strings.ToLower(upd.Email)
		if _, taken := m.byEmail[key]; taken {
			return nil, adapter.NewAccountError(adapter.KindConflict, "email or username already registered", nil)
		}
		delete(m.byEmail, strings.ToLower(u.Email))
		m.byEmail[key] = id
	}
	applyUpdate(u, upd)
	cp := *u
	return &cp, nil
}
