// Package sagalog is the append-only audit trail of saga executions. Each
// transition of a checkout saga becomes one row, tagged with the trace that
// produced it.
package sagalog

import (
	"context"
	"time"
)

// Status represents the lifecycle state of a saga execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// SagaLog is a single row in the saga_logs table.
type SagaLog struct {
	// SagaID is the order number, so log rows join with business data.
	SagaID      string
	Status      Status
	CurrentStep string

	// Payload is the JSON summary of the order that started the saga. Only the
	// STARTED row carries it.
	Payload string

	// ErrorMessages is a JSON array of step and compensation failures.
	ErrorMessages string

	TraceID   string
	SpanID    string
	UpdatedAt time.Time
}

// Repository persists saga log entries.
type Repository interface {
	// Save appends a row; entries are never updated.
	Save(ctx context.Context, entry *SagaLog) error
	// History returns every entry of a saga, oldest first.
	History(ctx context.Context, sagaID string) ([]SagaLog, error)
}
