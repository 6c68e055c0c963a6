package spanbridge

import (
	"context"
	"regexp"

	"go.opentelemetry.io/otel/propagation"
)

const (
	// TraceHeaderName carries distributed-trace continuation data in
	// "<32 hex trace id>-<16 hex span id>[-<0|1 sampled flag>]" form.
	TraceHeaderName = "bridge-trace"

	// BaggageHeaderName carries an opaque baggage payload. The bridge
	// passes it through verbatim and never parses it.
	BaggageHeaderName = "baggage"
)

var traceHeaderRe = regexp.MustCompile(`^([0-9a-f]{32})-([0-9a-f]{16})(?:-([01]))?$`)

// TraceContinuation is the trace-continuation triple an upstream service
// sends: the trace to continue, the span to parent under, and its
// sampling decision (nil when the upstream sent none).
type TraceContinuation struct {
	TraceID       string
	ParentSpanID  string
	ParentSampled *bool
}

type contextKey int

const (
	continuationContextKey contextKey = iota
	baggageContextKey
)

// ContextWithTraceContinuation returns a context carrying the continuation
// under the key the span processor reads.
func ContextWithTraceContinuation(ctx context.Context, tc TraceContinuation) context.Context {
	return context.WithValue(ctx, continuationContextKey, tc)
}

// ContextWithBaggage returns a context carrying the verbatim baggage
// payload.
func ContextWithBaggage(ctx context.Context, baggage string) context.Context {
	return context.WithValue(ctx, baggageContextKey, baggage)
}

// ContinuationFromContext reads the continuation stored by Extract, if any.
func ContinuationFromContext(ctx context.Context) (TraceContinuation, bool) {
	tc, ok := ctx.Value(continuationContextKey).(TraceContinuation)
	return tc, ok
}

// BaggageFromContext reads the baggage stored by Extract, if any.
func BaggageFromContext(ctx context.Context) (string, bool) {
	baggage, ok := ctx.Value(baggageContextKey).(string)
	return baggage, ok
}

// Propagator moves trace-continuation data between carriers and the
// ambient context. Absence of either header is a normal condition; a
// malformed trace header is ignored rather than surfaced.
type Propagator struct{}

var _ propagation.TextMapPropagator = Propagator{}

// Extract implements propagation.TextMapPropagator.
func (Propagator) Extract(ctx context.Context, carrier propagation.TextMapCarrier) context.Context {
	if tc, ok := parseTraceHeader(carrier.Get(TraceHeaderName)); ok {
		ctx = ContextWithTraceContinuation(ctx, tc)
	}

	if baggage := carrier.Get(BaggageHeaderName); baggage != "" {
		ctx = ContextWithBaggage(ctx, baggage)
	}

	return ctx
}

// Inject implements propagation.TextMapPropagator. It re-emits whatever
// continuation and baggage the context holds.
func (Propagator) Inject(ctx context.Context, carrier propagation.TextMapCarrier) {
	if tc, ok := ContinuationFromContext(ctx); ok {
		carrier.Set(TraceHeaderName, tc.headerValue())
	}

	if baggage, ok := BaggageFromContext(ctx); ok {
		carrier.Set(BaggageHeaderName, baggage)
	}
}

// Fields implements propagation.TextMapPropagator.
func (Propagator) Fields() []string {
	return []string{TraceHeaderName, BaggageHeaderName}
}

func parseTraceHeader(header string) (TraceContinuation, bool) {
	m := traceHeaderRe.FindStringSubmatch(header)
	if m == nil {
		return TraceContinuation{}, false
	}

	tc := TraceContinuation{TraceID: m[1], ParentSpanID: m[2]}
	if m[3] != "" {
		sampled := m[3] == "1"
		tc.ParentSampled = &sampled
	}

	return tc, true
}

func (tc TraceContinuation) headerValue() string {
	v := tc.TraceID + "-" + tc.ParentSpanID
	if tc.ParentSampled != nil {
		if *tc.ParentSampled {
			v += "-1"
		} else {
			v += "-0"
		}
	}
	return v
}
