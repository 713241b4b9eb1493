package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler triggers calibration runs on a cron spec.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	log    zerolog.Logger
}

// NewScheduler registers the runner under the given cron spec,
// e.g. "0 18 * * MON-FRI" for every weekday at 18:00.
func NewScheduler(spec string, runner *Runner, log zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), runner: runner, log: log}
	_, err := s.cron.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, fmt.Errorf("NewScheduler: bad cron spec %q: %w", spec, err)
	}
	return s, nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.log.Info().Str("group", s.runner.GroupName()).Msg("scheduler started")
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if _, err := s.runner.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("group", s.runner.GroupName()).Msg("scheduled calibration failed")
	}
}
