package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Job is one unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler runs a Job every interval, once immediately on Start.
type Scheduler struct {
	interval time.Duration
	timeout  time.Duration
	job      Job
	log      *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler constructs a scheduler for job. If interval <= 0 it defaults to 1 minute.
func NewScheduler(interval time.Duration, job Job, logger *zerolog.Logger) *Scheduler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Scheduler{
		interval: interval,
		timeout:  30 * time.Second,
		job:      job,
		log:      logger,
		done:     make(chan struct{}),
	}
}

// Start begins the loop in a background goroutine; calling Start twice has no effect.
func (s *Scheduler) Start(parentCtx context.Context) {
	if s.ctx != nil {
		return
	}
	ctx, cancel := context.WithCancel(parentCtx)
	s.ctx = ctx
	s.cancel = cancel

	go s.loop()
}

func (s *Scheduler) loop() {
	ticker := time.NewTicker(s.interval)
	defer func() {
		ticker.Stop()
		close(s.done)
	}()

	s.log.Info().Str("job", s.job.Name()).Dur("interval", s.interval).Msg("scheduler started")
	s.runOnce()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	runCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	if err := s.job.Run(runCtx); err != nil && s.ctx.Err() == nil {
		s.log.Warn().Err(err).Str("job", s.job.Name()).Msg("scheduled job failed")
	}
}

// Stop cancels the loop and waits for it to finish. It is idempotent.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.ctx = nil
	s.cancel = nil
	s.done = make(chan struct{})
	s.log.Info().Str("job", s.job.Name()).Msg("scheduler stopped")
}
