package usecase

import (
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/repository"
)

// PlanUseCase serves the read-only plan and subject catalog.
type PlanUseCase interface {
	List() []*model.SubscriptionPlan
	Get(id model.PlanTier) (*model.SubscriptionPlan, error)
	Subjects() []*model.SubjectInfo
}

var _ PlanUseCase = (*planUC)(nil)

type planUC struct {
	catalog repository.PlanCatalog
}

func NewPlanUseCase(catalog repository.PlanCatalog) *planUC {
	return &planUC{catalog: catalog}
}

func (p *planUC) List() []*model.SubscriptionPlan { return p.catalog.Plans() }

func (p *planUC) Get(id model.PlanTier) (*model.SubscriptionPlan, error) {
	return p.catalog.Plan(id)
}

func (p *planUC) Subjects() []*model.SubjectInfo { return p.catalog.Subjects() }
