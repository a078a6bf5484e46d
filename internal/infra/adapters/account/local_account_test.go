//go:build !integration

package account

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v4"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/domain/ports/repository"
)

type mockUserRepo struct {
	repository.UserRepository
	rows map[string]*repository.UserRecord
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{rows: map[string]*repository.UserRecord{}}
}

func (m *mockUserRepo) Create(ctx context.Context, tx repository.Tx, u *repository.UserRecord) error {
	for _, r := range m.rows {
		if strings.EqualFold(r.Email, u.Email) {
			return fmt.Errorf("create user: %w", domain.ErrAlreadyExists)
		}
	}
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, tx repository.Tx, u *model.User) error {
	r, ok := m.rows[u.ID]
	if !ok {
		return domain.ErrNotFound
	}
	r.User = *u
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*repository.UserRecord, error) {
	r, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*repository.UserRecord, error) {
	for _, r := range m.rows {
		if strings.EqualFold(r.Email, email) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

type mockTxManager struct {
	calls int
	open  bool
}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	m.calls++
	m.open = true
	defer func() { m.open = false }()
	return fn(ctx, nil)
}

// cachingUserRepo records cache invalidations and whether a transaction was
// still open when they happened.
type cachingUserRepo struct {
	*mockUserRepo
	txm         *mockTxManager
	invalidated []string
	insideTx    bool
}

func (c *cachingUserRepo) Invalidate(ctx context.Context, id string) error {
	c.invalidated = append(c.invalidated, id)
	c.insideTx = c.insideTx || c.txm.open
	return nil
}

func TestLocalAccountService(t *testing.T) {
	ctx := context.Background()
	repo := newMockUserRepo()
	txm := &mockTxManager{}
	svc := NewLocalAccountService(repo, txm)

	acc := adapter.NewAccount{Email: "a@b.com", Password: "x", Username: "ann", Subject: model.SubjectPhysics, Plan: model.PlanPremium}
	u, err := svc.CreateAccount(ctx, acc)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if u.ID == "" || u.Progress != 0 {
		t.Errorf("unexpected user %+v", u)
	}
	if hash := repo.rows[u.ID].PasswordHash; hash == "" || hash == "x" {
		t.Error("password must be stored hashed")
	}

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		_, err := svc.CreateAccount(ctx, acc)
		if adapter.ErrorKind(err) != adapter.KindConflict {
			t.Fatalf("expected conflict, got %v", err)
		}
	})

	t.Run("authenticate", func(t *testing.T) {
		got, err := svc.Authenticate(ctx, " A@b.com ", "x")
		if err != nil || got.ID != u.ID {
			t.Fatalf("expected sign-in to succeed, got %v, %v", got, err)
		}
		if _, err := svc.Authenticate(ctx, "a@b.com", "wrong"); adapter.ErrorKind(err) != adapter.KindInvalidCredentials {
			t.Errorf("expected invalid credentials for a wrong password, got %v", err)
		}
		if _, err := svc.Authenticate(ctx, "nobody@b.com", "x"); adapter.ErrorKind(err) != adapter.KindInvalidCredentials {
			t.Errorf("expected invalid credentials for an unknown email, got %v", err)
		}
	})

	t.Run("update keeps unset fields", func(t *testing.T) {
		got, err := svc.UpdateUser(ctx, u.ID, adapter.ProfileUpdate{Subject: model.SubjectBiology, AvatarURL: model.Avatars[2]})
		if err != nil {
			t.Fatalf("UpdateUser: %v", err)
		}
		if got.Username != "ann" || got.Subject != model.SubjectBiology || got.AvatarURL != model.Avatars[2] {
			t.Errorf("unexpected user after update %+v", got)
		}
		if _, err := svc.UpdateUser(ctx, "missing", adapter.ProfileUpdate{}); adapter.ErrorKind(err) != adapter.KindNotFound {
			t.Errorf("expected not found, got %v", err)
		}
	})

	if txm.calls == 0 {
		t.Error("writes must run inside a transaction")
	}
}

func TestLocalAccountService_InvalidatesCacheAfterCommit(t *testing.T) {
	ctx := context.Background()
	txm := &mockTxManager{}
	repo := &cachingUserRepo{mockUserRepo: newMockUserRepo(), txm: txm}
	svc := NewLocalAccountService(repo, txm)

	u, err := svc.CreateAccount(ctx, adapter.NewAccount{Email: "a@b.com", Password: "x", Username: "ann", Subject: model.SubjectPhysics, Plan: model.PlanBasic})
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	if _, err := svc.UpdateUser(ctx, u.ID, adapter.ProfileUpdate{Username: "anna"}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if len(repo.invalidated) != 1 || repo.invalidated[0] != u.ID {
		t.Fatalf("expected one invalidation for %s, got %v", u.ID, repo.invalidated)
	}
	if repo.insideTx {
		t.Error("cache must be invalidated after the transaction commits")
	}

	if _, err := svc.UpdateUser(ctx, "missing", adapter.ProfileUpdate{}); err == nil {
		t.Fatal("expected an error for a missing user")
	}
	if len(repo.invalidated) != 1 {
		t.Error("a failed update must not invalidate")
	}
}

func TestMemoryAccountService(t *testing.T) {
	ctx := context.Background()
	svc := NewMemoryAccountService()
	acc := adapter.NewAccount{Email: "a@b.com", Password: "x", Username: "ann", Subject: model.SubjectPhysics, Plan: model.PlanPremium}

	u, err := svc.CreateAccount(ctx, acc)
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	acc.Email = "other@b.com"
	if _, err := svc.CreateAccount(ctx, acc); adapter.ErrorKind(err) != adapter.KindConflict {
		t.Errorf("expected username conflict, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a@b.com", "x"); err != nil {
		t.Errorf("Authenticate: %v", err)
	}
	got, err := svc.GetUser(ctx, u.ID)
	if err != nil || got.Email != "a@b.com" {
		t.Errorf("GetUser: %+v, %v", got, err)
	}
}

func TestUnconfigured(t *testing.T) {
	var svc adapter.AccountService = Unconfigured{}
	if _, err := svc.CreateAccount(context.Background(), adapter.NewAccount{}); adapter.ErrorKind(err) != adapter.KindServiceUnavailable {
		t.Fatalf("expected service unavailable, got %v", err)
	}
}
