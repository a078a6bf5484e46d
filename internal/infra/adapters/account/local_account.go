package account

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v4"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/domain/ports/repository"
	"tutor-onboarding/internal/infra/security"
)

var _ adapter.AccountService = (*LocalAccountService)(nil)

// LocalAccountService is the self-hosted provider: accounts live in our own
// users table and passwords are stored as bcrypt hashes.
type LocalAccountService struct {
	users repository.UserRepository
	tx    repository.TransactionManager
}

func NewLocalAccountService(users repository.UserRepository, tx repository.TransactionManager) *LocalAccountService {
	return &LocalAccountService{users: users, tx: tx}
}

func (s *LocalAccountService) Name() string { return "postgres" }

func (s *LocalAccountService) CreateAccount(ctx context.Context, acc adapter.NewAccount) (*model.User, error) {
	u, err := model.NewUser("", acc.Email, acc.Username, acc.Subject, acc.Plan)
	if err != nil {
		return nil, adapter.NewAccountError(adapter.KindGeneric, "invalid account data", err)
	}
	hash, err := security.HashPassword(acc.Password)
	if err != nil {
		return nil, adapter.NewAccountError(adapter.KindGeneric, "", err)
	}
	rec := &repository.UserRecord{User: *u, PasswordHash: hash}

	err = s.tx.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		return s.users.Create(ctx, tx, rec)
	})
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	return &rec.User, nil
}

func (s *LocalAccountService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	rec, err := s.users.FindByEmail(ctx, nil, strings.TrimSpace(email))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, adapter.NewAccountError(adapter.KindInvalidCredentials, "", nil)
	}
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	ok, err := security.CheckPassword(rec.PasswordHash, password)
	if err != nil {
		return nil, adapter.NewAccountError(adapter.KindGeneric, "", err)
	}
	if !ok {
		return nil, adapter.NewAccountError(adapter.KindInvalidCredentials, "", nil)
	}
	return &rec.User, nil
}

func (s *LocalAccountService) GetUser(ctx context.Context, id string) (*model.User, error) {
	rec, err := s.users.FindByID(ctx, nil, id)
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	return &rec.User, nil
}

func (s *LocalAccountService) UpdateUser(ctx context.Context, id string, upd adapter.ProfileUpdate) (*model.User, error) {
	var out *model.User
	err := s.tx.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		rec, err := s.users.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		u := rec.User
		applyUpdate(&u, upd)
		if err := s.users.Update(ctx, tx, &u); err != nil {
			return err
		}
		out = &u
		return nil
	})
	if err != nil {
		return nil, mapRepoErr(ctx, err)
	}
	if inv, ok := s.users.(repository.UserCacheInvalidator); ok {
		// best effort; the cache entry expires on its own
		_ = inv.Invalidate(context.WithoutCancel(ctx), id)
	}
	return out, nil
}

func applyUpdate(u *model.User, upd adapter.ProfileUpdate) {
	if upd.Username != "" {
		u.Username = upd.Username
	}
	if upd.Email != "" {
		u.Email = upd.Email
	}
	if upd.Subject != "" {
		u.Subject = upd.Subject
	}
	if upd.AvatarURL != "" {
		u.AvatarURL = upd.AvatarURL
	}
}

func mapRepoErr(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		return adapter.NewAccountError(adapter.KindConflict, "email or username already registered", err)
	case errors.Is(err, domain.ErrNotFound):
		return adapter.NewAccountError(adapter.KindNotFound, "", err)
	case ctx.Err() != nil:
		return adapter.NewAccountError(adapter.KindServiceUnavailable, "", err)
	default:
		return adapter.NewAccountError(adapter.KindGeneric, "", err)
	}
}
