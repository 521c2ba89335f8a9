package sagalog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo returns the ids of the span active in ctx, or empty
// strings when there is none.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds a SagaLog entry stamped with the trace in ctx.
//
//	entry := sagalog.NewEntry(ctx, order.Number, sagalog.StatusStepDone, "Inventory_Reservation_Step", "", nil)
func NewEntry(ctx context.Context, sagaID string, status Status, currentStep, payload string, errs []string) *SagaLog {
	ti := ExtractTraceInfo(ctx)

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &SagaLog{
		SagaID:        sagaID,
		Status:        status,
		CurrentStep:   currentStep,
		Payload:       payload,
		ErrorMessages: errJSON,
		TraceID:       ti.TraceID,
		SpanID:        ti.SpanID,
		UpdatedAt:     time.Now().UTC(),
	}
}
