package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/domain/ports/repository"
	"tutor-onboarding/internal/infra/i18n"
	"tutor-onboarding/internal/infra/logging"
	"tutor-onboarding/internal/infra/metrics"
)

// Compile-time check
var _ SignupUseCase = (*signupUC)(nil)

// SignupResult is returned by a successful Pay.
type SignupResult struct {
	Session *model.SignupSession
	User    *model.User
	Auth    *IssuedSession
}

// SubmissionError is a failed account creation. The session has already been
// moved back to the payment step and carries the same failure.
type SubmissionError struct {
	Kind    adapter.AccountErrorKind
	Message string
	Session *model.SignupSession
	Err     error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("signup submission failed (%s): %v", e.Kind, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// SignupUseCase drives the three-step signup wizard. Every method loads the
// stored session, applies one transition and persists the result.
type SignupUseCase interface {
	Start(ctx context.Context, clientKey string) (*model.SignupSession, error)
	Get(ctx context.Context, id string) (*model.SignupSession, error)
	SetCredentials(ctx context.Context, id, email, password, username string) (*model.SignupSession, error)
	SelectSubject(ctx context.Context, id string, subject model.Subject) (*model.SignupSession, error)
	SelectPlan(ctx context.Context, id string, plan model.PlanTier) (*model.SignupSession, error)
	Advance(ctx context.Context, id string) (*model.SignupSession, error)
	CancelPayment(ctx context.Context, id string) (*model.SignupSession, error)
	Pay(ctx context.Context, id string, method model.PaymentMethod) (*SignupResult, error)
}

// SignupLimits bounds how often one client may start a wizard.
type SignupLimits struct {
	Starts int
	Window time.Duration
}

type signupUC struct {
	states   repository.SignupStateRepository
	locker   repository.SubmissionLocker
	limiter  repository.RateLimiter
	accounts adapter.AccountService
	sessions SessionUseCase
	tr       *i18n.Translator
	limits   SignupLimits
	timeout  time.Duration
	log      *zerolog.Logger
	dev      bool
}

func NewSignupUseCase(
	states repository.SignupStateRepository,
	locker repository.SubmissionLocker,
	limiter repository.RateLimiter,
	accounts adapter.AccountService,
	sessions SessionUseCase,
	tr *i18n.Translator,
	limits SignupLimits,
	accountTimeout time.Duration,
	logger *zerolog.Logger,
	dev bool,
) *signupUC {
	if accountTimeout <= 0 {
		accountTimeout = 10 * time.Second
	}
	return &signupUC{
		states:   states,
		locker:   locker,
		limiter:  limiter,
		accounts: accounts,
		sessions: sessions,
		tr:       tr,
		limits:   limits,
		timeout:  accountTimeout,
		log:      logger,
		dev:      dev,
	}
}

func lockKey(id string) string { return "signup_lock:" + id }

func (u *signupUC) Start(ctx context.Context, clientKey string) (*model.SignupSession, error) {
	defer logging.TraceDuration(u.log, "SignupUC.Start")()

	if u.limiter != nil && u.limits.Starts > 0 && clientKey != "" {
		ok, err := u.limiter.Allow(ctx, "rate_limit:signup:"+clientKey, u.limits.Starts, u.limits.Window)
		if err != nil {
			// fail open; the limiter is advisory
			u.log.Warn().Err(err).Msg("signup rate limiter unavailable")
		} else if !ok {
			return nil, domain.ErrRateLimited
		}
	}

	s, err := model.NewSignupSession(ulid.Make().String(), time.Now())
	if err != nil {
		return nil, err
	}
	if err := u.states.SetState(ctx, s); err != nil {
		return nil, err
	}
	metrics.IncSignupStarted()
	l := logging.With(logging.WithSignupID(ctx, s.ID), u.log)
	l.Debug().Msg("signup started")
	return s, nil
}

func (u *signupUC) Get(ctx context.Context, id string) (*model.SignupSession, error) {
	defer logging.TraceDuration(u.log, "SignupUC.Get")()
	return u.states.GetState(ctx, id)
}

func (u *signupUC) SetCredentials(ctx context.Context, id, email, password, username string) (*model.SignupSession, error) {
	defer logging.TraceDuration(u.log, "SignupUC.SetCredentials")()
	return u.mutate(ctx, id, func(s *model.SignupSession) error {
		return s.SetCredentials(email, password, username)
	})
}

func (u *signupUC) SelectSubject(ctx context.Context, id string, subject model.Subject) (*model.SignupSession, error) {
	defer logging.TraceDuration(u.log, "SignupUC.SelectSubject")()
	return u.mutate(ctx, id, func(s *model.SignupSession) error {
		return s.SelectSubject(subject)
	})
}

func (u *signupUC) SelectPlan(ctx context.Context, id string, plan model.PlanTier) (*model.SignupSession, error) {
	defer logging.TraceDuration(u.log, "SignupUC.SelectPlan")()
	return u.mutate(ctx, id, func(s *model.SignupSession) error {
		return s.SelectPlan(plan)
	})
}

func (u *signupUC) Advance(ctx context.Context, id string) (*model.SignupSession, error) {
	defer logging.TraceDuration(u.log, "SignupUC.Advance")()
	s, err := u.mutate(ctx, id, func(s *model.SignupSession) error {
		return s.Advance()
	})
	if err != nil {
		return nil, err
	}
	l := logging.With(logging.WithSignupID(ctx, s.ID), u.log)
	l.Debug().
		Int("step", s.Step).
		Str("stage", string(s.Stage)).
		Str("email", logging.Redact(s.Form.Email, u.dev)).
		Str("username", s.Form.Username).
		Str("subject", string(s.Form.Subject)).
		Str("plan", string(s.Form.Plan)).
		Msg("signup advanced")
	if s.Stage == model.StagePayment {
		metrics.IncStepAdvanced(4)
	} else {
		metrics.IncStepAdvanced(s.Step)
	}
	return s, nil
}

func (u *signupUC) CancelPayment(ctx context.Context, id string) (*model.SignupSession, error) {
	defer logging.TraceDuration(u.log, "SignupUC.CancelPayment")()
	s, err := u.mutate(ctx, id, func(s *model.SignupSession) error {
		return s.CancelPayment()
	})
	if err == nil {
		metrics.IncPaymentCancelled()
	}
	return s, err
}

// lock takes the session lease shared by every wizard write. A held lease
// surfaces as domain.ErrSubmissionInFlight.
func (u *signupUC) lock(ctx context.Context, id string) (func(), error) {
	token, err := u.locker.TryLock(ctx, lockKey(id))
	if err != nil {
		return nil, err
	}
	return func() {
		if err := u.locker.Unlock(context.WithoutCancel(ctx), lockKey(id), token); err != nil {
			logging.With(logging.WithSignupID(ctx, id), u.log).Warn().Err(err).Msg("failed to release signup lock")
		}
	}, nil
}

// mutate applies fn to the stored session and persists it under the session
// lease, so a stale copy can never overwrite a newer write. A failed guard
// leaves the stored session untouched.
func (u *signupUC) mutate(ctx context.Context, id string, fn func(s *model.SignupSession) error) (*model.SignupSession, error) {
	unlock, err := u.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := u.states.GetState(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			metrics.IncValidationFailure(verr.Step, verr.Field)
		}
		return nil, err
	}
	if err := u.states.SetState(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Pay chooses a payment method and creates the account. At most one
// submission per session runs at a time: the persisted submitting flag
// rejects re-entry, and the session lease serializes Pay with every other
// wizard write for the whole read-modify-write.
func (u *signupUC) Pay(ctx context.Context, id string, method model.PaymentMethod) (*SignupResult, error) {
	defer logging.TraceDuration(u.log, "SignupUC.Pay")()
	ctx = logging.WithSignupID(ctx, id)
	l := logging.With(ctx, u.log)

	unlock, err := u.lock(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := u.states.GetState(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.BeginSubmission(method); err != nil {
		var verr *model.ValidationError
		if errors.As(err, &verr) {
			metrics.IncValidationFailure(verr.Step, verr.Field)
			metrics.IncSubmission(string(method), "rejected")
		}
		return nil, err
	}
	if err := u.states.SetState(ctx, s); err != nil {
		return nil, err
	}
	l.Info().Str("method", string(method)).Str("plan", string(s.Form.Plan)).Msg("creating account")

	callCtx, cancel := context.WithTimeout(ctx, u.timeout)
	user, err := u.accounts.CreateAccount(callCtx, adapter.NewAccount{
		Email:    s.Form.Email,
		Password: s.Form.Password,
		Username: s.Form.Username,
		Subject:  s.Form.Subject,
		Plan:     s.Form.Plan,
	})
	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
	cancel()

	// the outcome must be persisted even if the client went away mid-call
	persistCtx := context.WithoutCancel(ctx)
	if err != nil {
		return nil, u.failSubmission(persistCtx, l, s, err, timedOut)
	}

	if err := s.CompleteSubmission(user.ID); err != nil {
		return nil, err
	}
	if err := u.states.SetState(persistCtx, s); err != nil {
		l.Error().Err(err).Msg("failed to persist completed signup")
	}
	metrics.IncSubmission(string(method), "created")
	l.Info().Str("user_id", user.ID).Msg("account created")

	issued, err := u.sessions.Issue(persistCtx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("account created but session not issued: %w", err)
	}
	return &SignupResult{Session: s, User: user, Auth: issued}, nil
}

func (u *signupUC) failSubmission(ctx context.Context, l *zerolog.Logger, s *model.SignupSession, err error, timedOut bool) error {
	kind := adapter.ErrorKind(err)
	switch {
	case timedOut:
		kind = adapter.KindServiceUnavailable
	case kind != adapter.KindServiceUnavailable && kind != adapter.KindConflict:
		kind = adapter.KindGeneric
	}
	msg := u.failureMessage(kind, adapter.ErrorMessage(err))

	if ferr := s.FailSubmission(string(kind), msg); ferr != nil {
		return ferr
	}
	if perr := u.states.SetState(ctx, s); perr != nil {
		l.Error().Err(perr).Msg("failed to persist failed signup")
	}
	metrics.IncSubmission(string(s.Method), string(kind))
	l.Warn().Err(err).Str("kind", string(kind)).Msg("account creation failed")
	return &SubmissionError{Kind: kind, Message: msg, Session: s, Err: err}
}

func (u *signupUC) failureMessage(kind adapter.AccountErrorKind, detail string) string {
	switch kind {
	case adapter.KindServiceUnavailable:
		return u.tr.T("signup.service_unavailable")
	case adapter.KindConflict:
		return u.tr.T("signup.conflict")
	}
	if detail == "" {
		detail = u.tr.T("signup.account_error_fallback")
	}
	return u.tr.T("signup.account_error", detail)
}
