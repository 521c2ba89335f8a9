// Package coordinator runs sagas: ordered steps whose side effects are undone
// in reverse order when a later step fails.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/ecommerce-storefront/internal/coordinator/sagalog"
)

// Step represents a single unit of work in the Saga.
// Each step must have a compensating action to undo its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator executes steps and records every transition in the saga log.
type Orchestrator struct {
	log    sagalog.Repository
	logger *slog.Logger
}

func NewOrchestrator(log sagalog.Repository, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{log: log, logger: logger}
}

// Run executes the steps sequentially under sagaID. If a step fails, every
// previously successful step is compensated (LIFO) and the step's error is
// returned wrapped with its name.
func (o *Orchestrator) Run(ctx context.Context, sagaID, payload string, steps ...Step) error {
	logger := o.logger.With("saga_id", sagaID)
	o.record(ctx, sagalog.NewEntry(ctx, sagaID, sagalog.StatusStarted, "", payload, nil))

	done := make([]Step, 0, len(steps))
	for _, step := range steps {
		logger.DebugContext(ctx, "executing saga step", "step", step.Name())
		if err := step.Execute(ctx); err != nil {
			logger.WarnContext(ctx, "saga step failed, compensating", "step", step.Name(), "error", err)
			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			o.record(ctx, sagalog.NewEntry(ctx, sagaID, sagalog.StatusCompensating, step.Name(), "", errs))

			errs = append(errs, o.rollback(ctx, logger, done)...)
			o.record(ctx, sagalog.NewEntry(ctx, sagaID, sagalog.StatusFailed, step.Name(), "", errs))
			return fmt.Errorf("%s: %w", step.Name(), err)
		}
		done = append(done, step)
		o.record(ctx, sagalog.NewEntry(ctx, sagaID, sagalog.StatusStepDone, step.Name(), "", nil))
	}

	o.record(ctx, sagalog.NewEntry(ctx, sagaID, sagalog.StatusCompleted, "", "", nil))
	logger.InfoContext(ctx, "saga completed")
	return nil
}

// rollback compensates steps in reverse order. Compensation runs on a context
// detached from cancellation so a client disconnect cannot leave stock held.
func (o *Orchestrator) rollback(ctx context.Context, logger *slog.Logger, steps []Step) []string {
	ctx = context.WithoutCancel(ctx)
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			logger.ErrorContext(ctx, "compensation failed", "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

func (o *Orchestrator) record(ctx context.Context, entry *sagalog.SagaLog) {
	if o.log == nil {
		return
	}
	if err := o.log.Save(context.WithoutCancel(ctx), entry); err != nil {
		o.logger.ErrorContext(ctx, "saga log write failed",
			"saga_id", entry.SagaID, "status", entry.Status, "error", err)
	}
}
