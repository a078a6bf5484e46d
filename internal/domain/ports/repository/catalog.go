package repository

import "tutor-onboarding/internal/domain/model"

// PlanCatalog is the read-only list of tiers and subjects offered.
type PlanCatalog interface {
	Plans() []*model.SubscriptionPlan
	Plan(id model.PlanTier) (*model.SubscriptionPlan, error)
	Subjects() []*model.SubjectInfo
	Subject(id model.Subject) (*model.SubjectInfo, error)
}
