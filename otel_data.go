package spanbridge

import (
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"

	"github.com/umang01-hash/spanbridge/tracer"
)

// updateSpanWithOtelData classifies a non-root span's attributes into an
// operation, description and status. Every attribute is copied onto the
// native span's data verbatim first; classification then recognizes the
// HTTP family before the DB family, one category per span.
func updateSpanWithOtelData(span *tracer.Span, s sdktrace.ReadOnlySpan) {
	attrs := make(map[attribute.Key]attribute.Value, len(s.Attributes()))
	for _, kv := range s.Attributes() {
		span.SetData(string(kv.Key), kv.Value.AsInterface())
		attrs[kv.Key] = kv.Value
	}

	op := s.Name()
	description := s.Name()

	if method, ok := attrs[semconv.HTTPMethodKey]; ok {
		op = "http." + strings.ToLower(method.Emit())
		description = method.Emit()

		if peer, ok := attrs[semconv.NetPeerNameKey]; ok {
			description += " " + peer.Emit()
		}

		if target, ok := attrs[semconv.HTTPTargetKey]; ok {
			description += " " + target.Emit()
		}

		if v, ok := attrs[semconv.HTTPStatusCodeKey]; ok {
			if code, ok := intValue(v); ok {
				span.SetHTTPStatus(code)
			}
		}
	} else if _, ok := attrs[semconv.DBSystemKey]; ok {
		op = "db"

		// The statement is taken verbatim; redaction is the
		// instrumentation's responsibility.
		if stmt, ok := attrs[semconv.DBStatementKey]; ok {
			description = stmt.Emit()
		}
	}

	span.Op = op
	span.Description = description
}

// otelContext builds the "otel" context block attached to transactions:
// the span's own attributes plus its resource attributes.
func otelContext(s sdktrace.ReadOnlySpan) map[string]any {
	ctx := map[string]any{}

	if attrs := s.Attributes(); len(attrs) > 0 {
		ctx["attributes"] = attributeMap(attrs)
	}

	if res := s.Resource(); res != nil {
		if attrs := res.Attributes(); len(attrs) > 0 {
			ctx["resource"] = attributeMap(attrs)
		}
	}

	return ctx
}

func attributeMap(attrs []attribute.KeyValue) map[string]any {
	m := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		m[string(kv.Key)] = kv.Value.AsInterface()
	}
	return m
}

func intValue(v attribute.Value) (int, bool) {
	switch v.Type() {
	case attribute.INT64:
		return int(v.AsInt64()), true
	case attribute.FLOAT64:
		return int(v.AsFloat64()), true
	case attribute.STRING:
		n, err := strconv.Atoi(v.AsString())
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
