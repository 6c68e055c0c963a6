package spanbridge

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func traceDataStub(t *testing.T, withParent bool) tracetest.SpanStub {
	t.Helper()

	stub := tracetest.SpanStub{
		Name: "sample span",
		SpanContext: trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: mustTraceID(t, testTraceIDHex),
			SpanID:  mustSpanID(t, testSpanIDHex),
		}),
		StartTime: time.Now(),
	}

	if withParent {
		stub.Parent = trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: mustTraceID(t, testTraceIDHex),
			SpanID:  mustSpanID(t, testParentSpanIDHex),
		})
	}

	return stub
}

func TestExtractTraceDataWithoutParent(t *testing.T) {
	td := extractTraceData(traceDataStub(t, false).Snapshot(), context.Background())

	assert.Equal(t, testSpanIDHex, td.spanID)
	assert.Equal(t, testTraceIDHex, td.traceID)
	assert.Empty(t, td.parentSpanID)
	assert.Nil(t, td.parentSampled)
	assert.Empty(t, td.baggage)
}

func TestExtractTraceDataWithParent(t *testing.T) {
	td := extractTraceData(traceDataStub(t, true).Snapshot(), context.Background())

	assert.Equal(t, testSpanIDHex, td.spanID)
	assert.Equal(t, testTraceIDHex, td.traceID)
	assert.Equal(t, testParentSpanIDHex, td.parentSpanID)
	assert.Nil(t, td.parentSampled)
	assert.Empty(t, td.baggage)
}

func TestExtractTraceDataWithContinuation(t *testing.T) {
	for _, sampled := range []bool{true, false} {
		s := sampled
		ctx := ContextWithTraceContinuation(context.Background(), TraceContinuation{
			TraceID:       testTraceIDHex,
			ParentSpanID:  testParentSpanIDHex,
			ParentSampled: &s,
		})

		td := extractTraceData(traceDataStub(t, true).Snapshot(), ctx)

		if assert.NotNil(t, td.parentSampled) {
			assert.Equal(t, sampled, *td.parentSampled)
		}
		assert.Empty(t, td.baggage)
	}
}

func TestExtractTraceDataWithBaggage(t *testing.T) {
	const baggage = "trace_id=771a43a4192642f0b136d5159a501700," +
		"public_key=49d0f7386ad645858ae85020e393bef3," +
		"sample_rate=0.01337,user_id=Am%C3%A9lie"

	ctx := ContextWithBaggage(context.Background(), baggage)

	td := extractTraceData(traceDataStub(t, true).Snapshot(), ctx)

	assert.Equal(t, baggage, td.baggage, "baggage is passed through verbatim")
}

func TestExtractTraceDataNilContext(t *testing.T) {
	//nolint:staticcheck // deliberately exercising the nil-context path
	td := extractTraceData(traceDataStub(t, false).Snapshot(), nil)

	assert.Equal(t, testSpanIDHex, td.spanID)
	assert.Nil(t, td.parentSampled)
}
