package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/domain/ports/repository"
	"tutor-onboarding/internal/infra/logging"
	"tutor-onboarding/internal/infra/metrics"
)

// Compile-time check
var _ SessionUseCase = (*sessionUC)(nil)

// IssuedSession is a freshly minted auth session and its token.
type IssuedSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Principal is the authenticated caller of a request.
type Principal struct {
	SessionID string
	UserID    string
}

// SessionUseCase owns auth sessions: issue after signup or sign-in,
// resolve a token to a principal, and revoke on sign-out.
type SessionUseCase interface {
	Issue(ctx context.Context, userID string) (*IssuedSession, error)
	SignIn(ctx context.Context, email, password string) (*model.User, *IssuedSession, error)
	Authenticate(ctx context.Context, token string) (*Principal, error)
	SignOut(ctx context.Context, p *Principal) error
}

type sessionUC struct {
	sessions repository.AuthSessionRepository
	signer   adapter.TokenSigner
	accounts adapter.AccountService
	ttl      time.Duration
	log      *zerolog.Logger
}

func NewSessionUseCase(
	sessions repository.AuthSessionRepository,
	signer adapter.TokenSigner,
	accounts adapter.AccountService,
	ttl time.Duration,
	logger *zerolog.Logger,
) *sessionUC {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &sessionUC{
		sessions: sessions,
		signer:   signer,
		accounts: accounts,
		ttl:      ttl,
		log:      logger,
	}
}

func (s *sessionUC) Issue(ctx context.Context, userID string) (*IssuedSession, error) {
	defer logging.TraceDuration(s.log, "SessionUC.Issue")()
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	rec := &repository.AuthSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Put(ctx, rec); err != nil {
		return nil, err
	}
	tok, err := s.signer.Sign(adapter.TokenClaims{SessionID: rec.ID, UserID: userID, ExpiresAt: rec.ExpiresAt})
	if err != nil {
		_ = s.sessions.Delete(ctx, rec.ID)
		return nil, err
	}
	metrics.IncAuthSession("issued")
	return &IssuedSession{Token: tok, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *sessionUC) SignIn(ctx context.Context, email, password string) (*model.User, *IssuedSession, error) {
	defer logging.TraceDuration(s.log, "SessionUC.SignIn")()
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, nil, domain.ErrInvalidCredentials
	}
	u, err := s.accounts.Authenticate(ctx, email, password)
	if err != nil {
		if adapter.ErrorKind(err) == adapter.KindInvalidCredentials {
			metrics.IncAuthSession("rejected")
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}
	issued, err := s.Issue(ctx, u.ID)
	if err != nil {
		return nil, nil, err
	}
	l := logging.With(logging.WithUserID(ctx, u.ID), s.log)
	l.Info().Msg("user signed in")
	return u, issued, nil
}

func (s *sessionUC) Authenticate(ctx context.Context, token string) (*Principal, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	claims, err := s.signer.Verify(token)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	rec, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	// a token must not be replayed against another user's session record
	if rec.UserID != claims.UserID {
		return nil, domain.ErrUnauthorized
	}
	return &Principal{SessionID: rec.ID, UserID: rec.UserID}, nil
}

func (s *sessionUC) SignOut(ctx context.Context, p *Principal) error {
	defer logging.TraceDuration(s.log, "SessionUC.SignOut")()
	if p == nil {
		return domain.ErrUnauthorized
	}
	if err := s.sessions.Delete(ctx, p.SessionID); err != nil {
		return err
	}
	metrics.IncAuthSession("revoked")
	return nil
}
