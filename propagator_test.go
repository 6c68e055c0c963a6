package spanbridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
)

func TestPropagatorExtract(t *testing.T) {
	carrier := propagation.MapCarrier{
		TraceHeaderName: testTraceIDHex + "-" + testParentSpanIDHex + "-1",
	}

	ctx := Propagator{}.Extract(context.Background(), carrier)

	tc, ok := ContinuationFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, testTraceIDHex, tc.TraceID)
	assert.Equal(t, testParentSpanIDHex, tc.ParentSpanID)
	require.NotNil(t, tc.ParentSampled)
	assert.True(t, *tc.ParentSampled)

	_, ok = BaggageFromContext(ctx)
	assert.False(t, ok)
}

func TestPropagatorExtractWithoutSampledFlag(t *testing.T) {
	carrier := propagation.MapCarrier{
		TraceHeaderName: testTraceIDHex + "-" + testParentSpanIDHex,
	}

	ctx := Propagator{}.Extract(context.Background(), carrier)

	tc, ok := ContinuationFromContext(ctx)
	require.True(t, ok)
	assert.Nil(t, tc.ParentSampled)
}

func TestPropagatorExtractUnsampled(t *testing.T) {
	carrier := propagation.MapCarrier{
		TraceHeaderName: testTraceIDHex + "-" + testParentSpanIDHex + "-0",
	}

	ctx := Propagator{}.Extract(context.Background(), carrier)

	tc, ok := ContinuationFromContext(ctx)
	require.True(t, ok)
	require.NotNil(t, tc.ParentSampled)
	assert.False(t, *tc.ParentSampled)
}

func TestPropagatorExtractMalformed(t *testing.T) {
	for _, header := range []string{
		"",
		"garbage",
		"1234-5678",
		testTraceIDHex + "-" + testParentSpanIDHex + "-2",
		"XYZ4567890abcdef1234567890abcdef-" + testParentSpanIDHex,
	} {
		carrier := propagation.MapCarrier{TraceHeaderName: header}

		ctx := Propagator{}.Extract(context.Background(), carrier)

		_, ok := ContinuationFromContext(ctx)
		assert.False(t, ok, "header %q must not yield a continuation", header)
	}
}

func TestPropagatorExtractBaggage(t *testing.T) {
	carrier := propagation.MapCarrier{BaggageHeaderName: "user_id=Am%C3%A9lie"}

	ctx := Propagator{}.Extract(context.Background(), carrier)

	baggage, ok := BaggageFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "user_id=Am%C3%A9lie", baggage)
}

func TestPropagatorInjectRoundTrip(t *testing.T) {
	in := propagation.MapCarrier{
		TraceHeaderName:   testTraceIDHex + "-" + testParentSpanIDHex + "-1",
		BaggageHeaderName: "key=value",
	}

	ctx := Propagator{}.Extract(context.Background(), in)

	out := propagation.MapCarrier{}
	Propagator{}.Inject(ctx, out)

	assert.Equal(t, in[TraceHeaderName], out[TraceHeaderName])
	assert.Equal(t, in[BaggageHeaderName], out[BaggageHeaderName])
}

func TestPropagatorInjectEmptyContext(t *testing.T) {
	out := propagation.MapCarrier{}
	Propagator{}.Inject(context.Background(), out)

	assert.Empty(t, out)
}

func TestPropagatorFields(t *testing.T) {
	assert.ElementsMatch(t, []string{TraceHeaderName, BaggageHeaderName}, Propagator{}.Fields())
}
