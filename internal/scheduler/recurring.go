// Package scheduler runs the background jobs of the sales service.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Generator issues the invoices of recurring profiles that are due.
type Generator interface {
	GenerateDue(ctx context.Context) (int, error)
}

// Config selects when the recurring invoice job runs
type Config struct {
	Schedule string // standard 5-field cron spec
	TimeZone string
	Location *time.Location // overrides TimeZone when set
	Timeout  time.Duration
}

// Scheduler wraps a cron runner with the recurring invoice job
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// New registers the recurring invoice job. The job does not start until Start.
func New(cfg Config, gen Generator, log *zap.Logger) (*Scheduler, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 6 * * *"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}

	loc := cfg.Location
	if loc == nil {
		loc = LoadLocation(cfg.TimeZone, log)
	}
	c := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		RunOnce(ctx, gen, log)
	})
	if err != nil {
		return nil, fmt.Errorf("unable to schedule recurring invoices %q: %w", cfg.Schedule, err)
	}

	log.Info("recurring invoice scheduler configured",
		zap.String("schedule", cfg.Schedule), zap.String("timezone", loc.String()))
	return &Scheduler{cron: c, log: log}, nil
}

// LoadLocation resolves the schedule's time zone. The recurring invoice
// service must date its runs in the same zone the job fires in.
func LoadLocation(name string, log *zap.Logger) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Warn("invalid scheduler timezone, falling back to UTC",
			zap.String("timezone", name), zap.Error(err))
		return time.UTC
	}
	return loc
}

// RunOnce executes a single generation pass and logs its outcome.
func RunOnce(ctx context.Context, gen Generator, log *zap.Logger) int {
	start := time.Now()
	n, err := gen.GenerateDue(ctx)
	if err != nil {
		log.Error("recurring invoice job failed", zap.Error(err), zap.Int("generated", n))
		return n
	}
	log.Info("recurring invoice job completed",
		zap.Int("generated", n), zap.Duration("took", time.Since(start)))
	return n
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		s.log.Warn("recurring invoice job still running at shutdown")
	}
}
