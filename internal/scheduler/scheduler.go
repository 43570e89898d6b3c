// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"fxvps/platform/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const sweepTimeout = 20 * time.Second

type Sweeper interface {
	Sweep(ctx context.Context) (service.SweepResult, error)
}

// Scheduler drives the VPS sweep on a cron schedule. Overlapping runs are
// skipped.
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	log     logrus.FieldLogger
	ctx     context.Context
}

func New(schedule string, sweeper Sweeper, log logrus.FieldLogger) (*Scheduler, error) {
	cronLog := cron.PrintfLogger(log)
	s := &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
		sweeper: sweeper,
		log:     log,
		ctx:     context.Background(),
	}

	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running jobs. Jobs inherit ctx for cancellation.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.log.WithField("jobs", len(s.cron.Entries())).Info("scheduler started")
}

// Stop prevents new runs and waits for a running job until ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) runSweep() {
	ctx, cancel := context.WithTimeout(s.ctx, sweepTimeout)
	defer cancel()

	start := time.Now()
	res, err := s.sweeper.Sweep(ctx)
	if err != nil {
		s.log.WithError(err).Error("vps sweep failed")
		return
	}
	if res.Restarted == 0 && res.Expired == 0 {
		return
	}
	s.log.WithFields(logrus.Fields{
		"restarted": res.Restarted,
		"expired":   res.Expired,
		"duration":  time.Since(start).String(),
	}).Info("vps sweep")
}
