// Package scheduler runs background jobs on fixed intervals.
package scheduler

import (
	"context"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/puntodeoro/internal/platform/logging"
)

// Job is one periodic task. Runs of the same job never overlap; a run that
// outlasts Interval delays the next one instead of stacking.
type Job struct {
	Name         string
	StartupDelay time.Duration
	Interval     time.Duration
	Timeout      time.Duration
	Run          func(ctx context.Context) error
}

type Scheduler struct {
	jobs   []Job
	logger *logging.Logger
}

func New(logger *logging.Logger, jobs ...Job) *Scheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Scheduler{jobs: jobs, logger: logger.Named("scheduler")}
}

// Run blocks until ctx is cancelled and every job loop has returned.
func (s *Scheduler) Run(ctx context.Context) {
	var wg conc.WaitGroup
	for _, job := range s.jobs {
		if job.Run == nil || job.Interval <= 0 {
			s.logger.Warn("skip invalid job", "job", job.Name)
			continue
		}
		wg.Go(func() {
			s.loop(ctx, job)
		})
	}
	wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	s.logger.Info("job scheduled", "job", job.Name, "startup_delay", job.StartupDelay, "interval", job.Interval)

	if !sleep(ctx, job.StartupDelay) {
		return
	}
	s.runOnce(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("job stopped", "job", job.Name)
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	defer func() {
		if rec := recover(); rec != nil {
			s.logger.ErrorContext(runCtx, "job panic recovered", "job", job.Name, "panic", rec)
		}
	}()

	started := time.Now()
	if err := job.Run(runCtx); err != nil {
		s.logger.WarnContext(runCtx, "job run failed", "job", job.Name, "error", err, "elapsed", time.Since(started))
		return
	}
	s.logger.DebugContext(runCtx, "job run finished", "job", job.Name, "elapsed", time.Since(started))
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
