package spanbridge

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// traceData is the identity and continuation data computed for one
// incoming span at start time. Ids are fixed-width lowercase hex.
type traceData struct {
	spanID        string
	traceID       string
	parentSpanID  string
	parentSampled *bool
	baggage       string
}

// extractTraceData renders the span's identifiers and reads optional
// continuation data from the ambient context. Missing ambient keys are the
// common case: spans with no incoming distributed-trace header.
func extractTraceData(s sdktrace.ReadOnlySpan, parent context.Context) traceData {
	sc := s.SpanContext()

	td := traceData{
		spanID:  sc.SpanID().String(),
		traceID: sc.TraceID().String(),
	}

	if p := s.Parent(); p.IsValid() {
		td.parentSpanID = p.SpanID().String()
	}

	if parent == nil {
		return td
	}

	if tc, ok := ContinuationFromContext(parent); ok {
		td.parentSampled = tc.ParentSampled
	}

	if baggage, ok := BaggageFromContext(parent); ok {
		td.baggage = baggage
	}

	return td
}
