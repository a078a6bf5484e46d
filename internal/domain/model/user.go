package model

import (
	"strings"
	"time"

	"tutor-onboarding/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

// Subject is the academic domain a student studies.
type Subject string

const (
	SubjectBiology   Subject = "biology"
	SubjectPhysics   Subject = "physics"
	SubjectChemistry Subject = "chemistry"
)

// Subjects lists the closed set in display order.
var Subjects = []Subject{SubjectBiology, SubjectPhysics, SubjectChemistry}

func (s Subject) Valid() bool {
	switch s {
	case SubjectBiology, SubjectPhysics, SubjectChemistry:
		return true
	}
	return false
}

// PlanTier is the subscription tier controlling feature access.
type PlanTier string

const (
	PlanBasic   PlanTier = "basic"
	PlanPremium PlanTier = "premium"
	PlanPro     PlanTier = "pro"
)

var PlanTiers = []PlanTier{PlanBasic, PlanPremium, PlanPro}

func (p PlanTier) Valid() bool {
	switch p {
	case PlanBasic, PlanPremium, PlanPro:
		return true
	}
	return false
}

// Avatars is the set of profile glyphs a user may pick in settings.
var Avatars = []string{"👨‍🎓", "👩‍🎓", "🧑‍💻", "👨‍🔬", "👩‍🔬", "🧑‍🏫", "👨‍🏫", "👩‍🏫"}

func ValidAvatar(a string) bool {
	if a == "" {
		return true
	}
	for _, v := range Avatars {
		if v == a {
			return true
		}
	}
	return false
}

// User is the account record owned by the account service. The onboarding
// service only reads it after creation, except for settings updates.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	Username         string    `json:"username"`
	AvatarURL        string    `json:"avatar_url,omitempty"`
	Subject          Subject   `json:"subject"`
	SubscriptionPlan PlanTier  `json:"subscription_plan"`
	Progress         int       `json:"progress"`
	CreatedAt        time.Time `json:"created_at"`
}

func NewUser(id, email, username string, subject Subject, plan PlanTier) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if email == "" || username == "" {
		return nil, domain.ErrInvalidArgument
	}
	if !subject.Valid() || !plan.Valid() {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:               id,
		Email:            email,
		Username:         username,
		Subject:          subject,
		SubscriptionPlan: plan,
		Progress:         0,
		CreatedAt:        time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// SetProgress clamps p into [0,100].
func (u *User) SetProgress(p int) {
	switch {
	case p < 0:
		p = 0
	case p > 100:
		p = 100
	}
	u.Progress = p
}

// ValidEmail reports whether s is a bare address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}
