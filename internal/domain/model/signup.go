package model

import (
	"fmt"
	"strings"
	"time"

	"tutor-onboarding/internal/domain"
)

// SignupStage is the resting state of a signup wizard session.
type SignupStage string

const (
	StageCredentials SignupStage = "credentials"
	StageSubject     SignupStage = "subject"
	StagePlan        SignupStage = "plan"
	StagePayment     SignupStage = "payment"
	StageSubmitting  SignupStage = "submitting"
	StageDone        SignupStage = "done"
)

// Message keys carried by validation errors; resolved by the translator.
const (
	MsgFillAllFields  = "signup.fill_all_fields"
	MsgSelectSubject  = "signup.select_subject"
	MsgSelectPlan     = "signup.select_plan"
	MsgUnknownSubject = "signup.unknown_subject"
	MsgUnknownPlan    = "signup.unknown_plan"
	MsgUnknownMethod  = "signup.unknown_payment_method"
)

// ValidationError blocks a wizard action. It never leaves the wizard as an
// account-service failure; callers show it inline next to the step.
type ValidationError struct {
	Step   int
	Field  string
	MsgKey string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("signup step %d: invalid %s", e.Step, e.Field)
}

// SignupForm accumulates the data collected over the three steps.
type SignupForm struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Username string   `json:"username"`
	Subject  Subject  `json:"subject"`
	Plan     PlanTier `json:"plan"`
}

// SignupFailure is the last account-creation failure shown to the user.
type SignupFailure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SignupSession is the wizard state for one visitor. It is transient and
// discarded once the session expires or the account has been created.
type SignupSession struct {
	ID             string         `json:"id"`
	Step           int            `json:"step"`
	Stage          SignupStage    `json:"stage"`
	Form           SignupForm     `json:"form"`
	PaymentVisible bool           `json:"payment_visible"`
	Submitting     bool           `json:"submitting"`
	Method         PaymentMethod  `json:"method,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	LastFailure    *SignupFailure `json:"last_failure,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func NewSignupSession(id string, now time.Time) (*SignupSession, error) {
	if id == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &SignupSession{
		ID:        id,
		Step:      1,
		Stage:     StageCredentials,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SignupSession) touch() { s.UpdatedAt = time.Now() }

func (s *SignupSession) require(stage SignupStage) error {
	if s.Stage == StageSubmitting {
		return domain.ErrSubmissionInFlight
	}
	if s.Stage != stage {
		return fmt.Errorf("%w: %s in stage %s", domain.ErrInvalidTransition, stage, s.Stage)
	}
	return nil
}

// SetCredentials edits the step 1 fields in place. It does not validate or advance.
func (s *SignupSession) SetCredentials(email, password, username string) error {
	if err := s.require(StageCredentials); err != nil {
		return err
	}
	s.Form.Email = email
	s.Form.Password = password
	s.Form.Username = username
	s.touch()
	return nil
}

// SelectSubject records the subject pick without advancing.
func (s *SignupSession) SelectSubject(subject Subject) error {
	if err := s.require(StageSubject); err != nil {
		return err
	}
	if !subject.Valid() {
		return &ValidationError{Step: 2, Field: "subject", MsgKey: MsgUnknownSubject}
	}
	s.Form.Subject = subject
	s.touch()
	return nil
}

// SelectPlan records the plan pick without advancing.
func (s *SignupSession) SelectPlan(plan PlanTier) error {
	if err := s.require(StagePlan); err != nil {
		return err
	}
	if !plan.Valid() {
		return &ValidationError{Step: 3, Field: "plan", MsgKey: MsgUnknownPlan}
	}
	s.Form.Plan = plan
	s.touch()
	return nil
}

// Advance moves one step forward when the current step validates. On a
// failed guard the session is left untouched.
func (s *SignupSession) Advance() error {
	switch s.Stage {
	case StageCredentials:
		if blank(s.Form.Email) || blank(s.Form.Password) || blank(s.Form.Username) {
			return &ValidationError{Step: 1, Field: "credentials", MsgKey: MsgFillAllFields}
		}
		s.Step, s.Stage = 2, StageSubject
	case StageSubject:
		if !s.Form.Subject.Valid() {
			return &ValidationError{Step: 2, Field: "subject", MsgKey: MsgSelectSubject}
		}
		s.Step, s.Stage = 3, StagePlan
	case StagePlan:
		if !s.Form.Plan.Valid() {
			return &ValidationError{Step: 3, Field: "plan", MsgKey: MsgSelectPlan}
		}
		s.Stage = StagePayment
		s.PaymentVisible = true
	case StageSubmitting:
		return domain.ErrSubmissionInFlight
	default:
		return fmt.Errorf("%w: advance in stage %s", domain.ErrInvalidTransition, s.Stage)
	}
	s.touch()
	return nil
}

// CancelPayment closes the payment chooser and returns to plan selection.
// Collected data is kept.
func (s *SignupSession) CancelPayment() error {
	if err := s.require(StagePayment); err != nil {
		return err
	}
	s.Stage = StagePlan
	s.PaymentVisible = false
	s.touch()
	return nil
}

// BeginSubmission marks the session as submitting. Only one submission may
// be in flight at a time.
func (s *SignupSession) BeginSubmission(method PaymentMethod) error {
	if err := s.require(StagePayment); err != nil {
		return err
	}
	if !method.Valid() {
		return &ValidationError{Step: 3, Field: "payment method", MsgKey: MsgUnknownMethod}
	}
	s.Stage = StageSubmitting
	s.Submitting = true
	s.Method = method
	s.LastFailure = nil
	s.touch()
	return nil
}

// CompleteSubmission is the terminal transition after the account exists.
func (s *SignupSession) CompleteSubmission(userID string) error {
	if s.Stage != StageSubmitting {
		return fmt.Errorf("%w: complete in stage %s", domain.ErrInvalidTransition, s.Stage)
	}
	s.Stage = StageDone
	s.Submitting = false
	s.PaymentVisible = false
	s.UserID = userID
	s.Form.Password = ""
	s.touch()
	return nil
}

// FailSubmission returns to the payment chooser so the user can retry.
func (s *SignupSession) FailSubmission(kind, message string) error {
	if s.Stage != StageSubmitting {
		return fmt.Errorf("%w: fail in stage %s", domain.ErrInvalidTransition, s.Stage)
	}
	s.Stage = StagePayment
	s.Submitting = false
	s.PaymentVisible = true
	s.LastFailure = &SignupFailure{Kind: kind, Message: message}
	s.touch()
	return nil
}

func (s *SignupSession) Done() bool { return s.Stage == StageDone }

func blank(v string) bool { return strings.TrimSpace(v) == "" }
