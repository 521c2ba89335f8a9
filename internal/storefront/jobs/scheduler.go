// Package jobs runs the storefront's periodic maintenance on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/metrics"
)

// Job is one unit of housekeeping. Run reports how many records it touched.
type Job struct {
	Name string
	Run  func(ctx context.Context) (int, error)
}

// Scheduler fires every registered job on one cron schedule. Overlapping runs
// are skipped and a panicking job does not stop the others.
type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
}

// New parses schedule (standard five-field spec or descriptors such as
// "@every 15m") and registers jobs to run on it, each bounded by timeout.
func New(schedule string, timeout time.Duration, jobs ...Job) (*Scheduler, error) {
	logger := slogLogger{}
	s := &Scheduler{
		cron: cron.New(cron.WithLogger(logger), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		jobs:    jobs,
		timeout: timeout,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunAll(context.Background()) }); err != nil {
		return nil, fmt.Errorf("jobs: schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	slog.Info("housekeeping scheduler started", "jobs", len(s.jobs))
	s.cron.Start()
}

// Stop prevents new runs and waits for a running one to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		slog.Warn("housekeeping still running at shutdown")
	}
}

// RunAll runs every job once, in order. A failing job is logged and does not
// prevent the rest from running.
func (s *Scheduler) RunAll(ctx context.Context) {
	for _, job := range s.jobs {
		s.run(ctx, job)
	}
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := job.Run(ctx)
	metrics.RecordHousekeeping(job.Name, err == nil)
	if err != nil {
		slog.ErrorContext(ctx, "housekeeping job failed", "job", job.Name, "error", err)
		return
	}
	slog.DebugContext(ctx, "housekeeping job done", "job", job.Name, "affected", n, "duration", time.Since(start))
}

// slogLogger routes cron's own diagnostics to slog.
type slogLogger struct{}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
