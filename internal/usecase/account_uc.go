package usecase

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/adapter"
	"tutor-onboarding/internal/domain/ports/repository"
	"tutor-onboarding/internal/infra/logging"
)

// Compile-time check
var _ AccountUseCase = (*accountUC)(nil)

// Settings validation message keys.
const (
	MsgSettingsRequired      = "settings.required"
	MsgSettingsInvalidEmail  = "settings.invalid_email"
	MsgSettingsInvalidAvatar = "settings.invalid_avatar"
)

// DashboardView is what a signed-in student sees after onboarding.
type DashboardView struct {
	User              *model.User `json:"user"`
	SubjectName       string      `json:"subject_name"`
	SubjectIcon       string      `json:"subject_icon"`
	PlanName          string      `json:"plan_name"`
	DashboardFeatures []string    `json:"dashboard_features"`
	Progress          int         `json:"progress"`
}

// SettingsInput is a full settings form submission.
type SettingsInput struct {
	Username  string
	Email     string
	Subject   model.Subject
	AvatarURL string
}

// AccountUseCase exposes the signed-in user's profile.
type AccountUseCase interface {
	Me(ctx context.Context, userID string) (*model.User, error)
	Dashboard(ctx context.Context, userID string) (*DashboardView, error)
	UpdateSettings(ctx context.Context, userID string, in SettingsInput) (*model.User, error)
}

type accountUC struct {
	accounts adapter.AccountService
	catalog  repository.PlanCatalog
	log      *zerolog.Logger
}

func NewAccountUseCase(accounts adapter.AccountService, catalog repository.PlanCatalog, logger *zerolog.Logger) *accountUC {
	return &accountUC{accounts: accounts, catalog: catalog, log: logger}
}

func (a *accountUC) Me(ctx context.Context, userID string) (*model.User, error) {
	defer logging.TraceDuration(a.log, "AccountUC.Me")()
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	return a.accounts.GetUser(ctx, userID)
}

func (a *accountUC) Dashboard(ctx context.Context, userID string) (*DashboardView, error) {
	defer logging.TraceDuration(a.log, "AccountUC.Dashboard")()
	u, err := a.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	view := &DashboardView{User: u, Progress: u.Progress}
	if subj, err := a.catalog.Subject(u.Subject); err == nil {
		view.SubjectName = subj.Name
		view.SubjectIcon = subj.Icon
	}
	if plan, err := a.catalog.Plan(u.SubscriptionPlan); err == nil {
		view.PlanName = plan.Name
		view.DashboardFeatures = plan.DashboardFeatures
	}
	return view, nil
}

func (a *accountUC) UpdateSettings(ctx context.Context, userID string, in SettingsInput) (*model.User, error) {
	defer logging.TraceDuration(a.log, "AccountUC.UpdateSettings")()
	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	switch {
	case in.Username == "" || in.Email == "":
		return nil, &model.ValidationError{Field: "settings", MsgKey: MsgSettingsRequired}
	case !model.ValidEmail(in.Email):
		return nil, &model.ValidationError{Field: "email", MsgKey: MsgSettingsInvalidEmail}
	case !in.Subject.Valid():
		return nil, &model.ValidationError{Field: "subject", MsgKey: model.MsgUnknownSubject}
	case !model.ValidAvatar(in.AvatarURL):
		return nil, &model.ValidationError{Field: "avatar", MsgKey: MsgSettingsInvalidAvatar}
	}

	u, err := a.accounts.UpdateUser(ctx, userID, adapter.ProfileUpdate{
		Username:  in.Username,
		Email:     in.Email,
		Subject:   in.Subject,
		AvatarURL: in.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	l := logging.With(logging.WithUserID(ctx, userID), a.log)
	l.Info().Msg("settings updated")
	return u, nil
}
