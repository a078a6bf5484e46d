// Package catalog serves the plan and subject catalog compiled into the binary.
package catalog

import (
	_ "embed"
	"fmt"

	"tutor-onboarding/internal/domain"
	"tutor-onboarding/internal/domain/model"
	"tutor-onboarding/internal/domain/ports/repository"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var _ repository.PlanCatalog = (*Catalog)(nil)

type Catalog struct {
	plans    []*model.SubscriptionPlan
	subjects []*model.SubjectInfo
}

type catalogFile struct {
	Plans    []*model.SubscriptionPlan `yaml:"plans"`
	Subjects []*model.SubjectInfo      `yaml:"subjects"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) { return Parse(defaultCatalog) }

// Parse validates every entry against the closed enums and requires each
// tier and subject to appear exactly once.
func Parse(b []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seenPlans := map[model.PlanTier]bool{}
	for _, p := range f.Plans {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("catalog plan %q: %w", p.ID, err)
		}
		if seenPlans[p.ID] {
			return nil, fmt.Errorf("catalog plan %q listed twice", p.ID)
		}
		seenPlans[p.ID] = true
	}
	for _, tier := range model.PlanTiers {
		if !seenPlans[tier] {
			return nil, fmt.Errorf("catalog is missing plan %q", tier)
		}
	}
	seenSubjects := map[model.Subject]bool{}
	for _, s := range f.Subjects {
		if !s.ID.Valid() || s.Name == "" || seenSubjects[s.ID] {
			return nil, fmt.Errorf("catalog subject %q: %w", s.ID, domain.ErrInvalidArgument)
		}
		seenSubjects[s.ID] = true
	}
	for _, s := range model.Subjects {
		if !seenSubjects[s] {
			return nil, fmt.Errorf("catalog is missing subject %q", s)
		}
	}
	return &Catalog{plans: f.Plans, subjects: f.Subjects}, nil
}

func (c *Catalog) Plans() []*model.SubscriptionPlan { return c.plans }

func (c *Catalog) Plan(id model.PlanTier) (*model.SubscriptionPlan, error) {
	for _, p := range c.plans {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (c *Catalog) Subjects() []*model.SubjectInfo { return c.subjects }

func (c *Catalog) Subject(id model.Subject) (*model.SubjectInfo, error) {
	for _, s := range c.subjects {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrNotFound
}
