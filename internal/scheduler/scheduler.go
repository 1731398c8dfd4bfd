// Package scheduler runs the periodic jobs: the due-rule pass and the
// requisites retention pass. Each job ticks on its own interval; a tick that
// fires while the previous run is still going is skipped, not queued.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	portssvc "github.com/paydesk/paydesk_backend/internal/core/ports/services"
)

// Job is one named periodic task. Run receives the tick instant so the task
// and its scheduling share a single reference time.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context, now time.Time) error

	mu sync.Mutex
}

// Scheduler drives a fixed set of jobs on independent tickers.
type Scheduler struct {
	jobs   []*Job
	logger *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a scheduler for the given jobs.
func New(logger *slog.Logger, jobs ...*Job) *Scheduler {
	return &Scheduler{
		jobs:   jobs,
		logger: logger.With(slog.String("component", "scheduler")),
	}
}

// NewDefault wires the standard job set: the due-rule pass and the
// requisites retention pass.
func NewDefault(logger *slog.Logger, services *portssvc.ServiceProvider, ruleInterval, pruneInterval time.Duration) *Scheduler {
	return New(logger,
		&Job{
			Name:     "run-due-rules",
			Interval: ruleInterval,
			Run: func(ctx context.Context, now time.Time) error {
				_, err := services.ExecutorSvc.RunDueRules(ctx, now)
				return err
			},
		},
		&Job{
			Name:     "prune-requisites-files",
			Interval: pruneInterval,
			Run: func(ctx context.Context, now time.Time) error {
				_, err := services.RetentionSvc.PruneRequisitesFiles(ctx, now)
				return err
			},
		},
	)
}

// Start launches one goroutine per job. Call Stop to shut them down.
func (s *Scheduler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.runJob(runCtx, job)
		s.logger.Info("Job scheduled",
			slog.String("job", job.Name),
			slog.String("interval", job.Interval.String()))
	}
}

// Stop cancels the jobs and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, job)
		}
	}
}

// runOnce executes one tick of the job. The per-job mutex guarantees a slow
// run is never overlapped by the next tick; the tick is dropped instead.
func (s *Scheduler) runOnce(ctx context.Context, job *Job) {
	if !job.mu.TryLock() {
		s.logger.Warn("Previous run still in progress, skipping tick",
			slog.String("job", job.Name))
		return
	}
	defer job.mu.Unlock()

	start := time.Now().UTC()
	if err := job.Run(ctx, start); err != nil {
		s.logger.Error("Job run failed",
			slog.String("job", job.Name),
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return
	}
	s.logger.Debug("Job run finished",
		slog.String("job", job.Name),
		slog.Duration("duration", time.Since(start)))
}
