// Package spanbridge rematerializes OpenTelemetry SDK spans as native
// tracer spans and transactions, preserving parent/child structure and
// distributed-trace continuity.
package spanbridge

import (
	"context"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/umang01-hash/spanbridge/tracer"
)

// otelContextName is the context block key transactions carry their raw
// OTel attributes under.
const otelContextName = "otel"

// liveSpan is the tagged variant stored in the live mapping: exactly one
// of txn and span is set, txn marking a trace root.
type liveSpan struct {
	txn  *tracer.Transaction
	span *tracer.Span
}

func (ls liveSpan) native() *tracer.Span {
	if ls.txn != nil {
		return &ls.txn.Span
	}
	return ls.span
}

// SpanProcessor bridges OTel span lifecycles onto the native tracer. One
// processor instance serves the whole process; register it on the
// TracerProvider with sdktrace.WithSpanProcessor.
type SpanProcessor struct {
	hub *tracer.Hub

	mu   sync.Mutex
	live map[string]liveSpan
}

var _ sdktrace.SpanProcessor = (*SpanProcessor)(nil)

// NewSpanProcessor creates a processor emitting onto the given hub.
func NewSpanProcessor(hub *tracer.Hub) *SpanProcessor {
	return &SpanProcessor{
		hub:  hub,
		live: make(map[string]liveSpan),
	}
}

// OnStart implements sdktrace.SpanProcessor. A span whose parent is live
// becomes a child of that parent's native span; anything else becomes a
// transaction, linked into the upstream trace when the parent context
// carries continuation data.
func (p *SpanProcessor) OnStart(parent context.Context, s sdktrace.ReadWriteSpan) {
	if p.hub == nil || p.hub.Client() == nil {
		return
	}

	td := extractTraceData(s, parent)

	// One critical section for lookup and insert, so a parent ending
	// concurrently cannot be popped between the two.
	p.mu.Lock()
	defer p.mu.Unlock()

	if td.parentSpanID != "" {
		if entry, ok := p.live[td.parentSpanID]; ok {
			child := entry.native().StartChild(td.spanID, s.Name(), s.StartTime())
			p.live[td.spanID] = liveSpan{span: child}
			return
		}
	}

	txn := p.hub.StartTransaction(tracer.TransactionOptions{
		Name:          s.Name(),
		SpanID:        td.spanID,
		ParentSpanID:  td.parentSpanID,
		TraceID:       td.traceID,
		ParentSampled: td.parentSampled,
		Baggage:       td.baggage,
		StartTime:     s.StartTime(),
	})
	p.live[td.spanID] = liveSpan{txn: txn}
}

// OnEnd implements sdktrace.SpanProcessor. An id with no live entry is a
// no-op, whatever the reason for its absence.
func (p *SpanProcessor) OnEnd(s sdktrace.ReadOnlySpan) {
	spanID := s.SpanContext().SpanID().String()

	p.mu.Lock()
	entry, ok := p.live[spanID]
	delete(p.live, spanID)
	p.mu.Unlock()

	if !ok {
		return
	}

	if entry.txn != nil {
		txn := entry.txn
		txn.Op = s.Name()
		txn.SetName(s.Name())
		txn.SetContext(otelContextName, otelContext(s))
		txn.Finish(s.EndTime())
		return
	}

	span := entry.span
	span.Op = s.Name()
	updateSpanWithOtelData(span, s)
	span.Finish(s.EndTime())
}

// Shutdown implements sdktrace.SpanProcessor.
func (p *SpanProcessor) Shutdown(ctx context.Context) error {
	return p.ForceFlush(ctx)
}

// ForceFlush implements sdktrace.SpanProcessor by draining the hub's
// client buffer.
func (p *SpanProcessor) ForceFlush(ctx context.Context) error {
	if p.hub == nil {
		return nil
	}

	client := p.hub.Client()
	if client == nil {
		return nil
	}

	if !client.Flush(ctx) {
		return ctx.Err()
	}
	return nil
}

func (p *SpanProcessor) liveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

func (p *SpanProcessor) lookup(spanID string) (liveSpan, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.live[spanID]
	return entry, ok
}
