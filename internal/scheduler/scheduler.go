package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Flusher is what the flush job calls. *state.State satisfies it.
type Flusher interface {
	Flush(ctx context.Context) error
	Dirty() bool
}

// Scheduler runs the deferred-flush job on a cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	flusher Flusher
	logger  *zap.Logger
	timeout time.Duration
}

// NewScheduler registers the flush job for schedule, a six-field cron
// expression with seconds (e.g. "*/30 * * * * *").
func NewScheduler(schedule string, flusher Flusher, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:    c,
		flusher: flusher,
		logger:  logger,
		timeout: 30 * time.Second,
	}

	if _, err := c.AddFunc(schedule, s.flush); err != nil {
		return nil, fmt.Errorf("register flush job %q: %w", schedule, err)
	}
	logger.Info("flush job registered", zap.String("schedule", schedule))
	return s, nil
}

// ValidateSchedule reports whether schedule parses with seconds precision.
func ValidateSchedule(schedule string) error {
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("parse schedule %q: %w", schedule, err)
	}
	return nil
}

func (s *Scheduler) flush() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("flush job panicked", zap.Any("panic", r))
		}
	}()

	if !s.flusher.Dirty() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.flusher.Flush(ctx); err != nil {
		// The state stays dirty; the next tick retries.
		s.logger.Error("scheduled flush failed", zap.Error(err))
		return
	}
	s.logger.Debug("scheduled flush complete", zap.Duration("took", time.Since(start)))
}

// Start runs the cron loop in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop waits for a running flush to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}
