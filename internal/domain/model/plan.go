package model

import "tutor-onboarding/internal/domain"

// SubscriptionPlan is a catalog entry for one tier.
type SubscriptionPlan struct {
	ID                PlanTier `json:"id" yaml:"id"`
	Name              string   `json:"name" yaml:"name"`
	PriceUSD          int      `json:"price" yaml:"price"`
	Features          []string `json:"features" yaml:"features"`
	DashboardFeatures []string `json:"dashboard_features" yaml:"dashboard_features"`
	Recommended       bool     `json:"recommended,omitempty" yaml:"recommended"`
}

func (p *SubscriptionPlan) Validate() error {
	if p == nil || !p.ID.Valid() || p.Name == "" || p.PriceUSD <= 0 {
		return domain.ErrInvalidArgument
	}
	return nil
}

// SubjectInfo is the display entry for a subject.
type SubjectInfo struct {
	ID   Subject `json:"id" yaml:"id"`
	Name string  `json:"name" yaml:"name"`
	Icon string  `json:"icon" yaml:"icon"`
}
