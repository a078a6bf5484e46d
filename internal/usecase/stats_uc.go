package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"tutor-onboarding/internal/domain/ports/repository"
	"tutor-onboarding/internal/infra/metrics"
)

// StatsJob publishes the registered-account count for the self-hosted
// provider. It satisfies scheduler.Job.
type StatsJob struct {
	users repository.UserRepository
	log   *zerolog.Logger
}

func NewStatsJob(users repository.UserRepository, logger *zerolog.Logger) *StatsJob {
	return &StatsJob{users: users, log: logger}
}

func (s *StatsJob) Name() string { return "account_stats" }

func (s *StatsJob) Run(ctx context.Context) error {
	n, err := s.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return err
	}
	metrics.SetRegisteredAccounts(n)
	s.log.Debug().Int("accounts", n).Msg("account stats refreshed")
	return nil
}
