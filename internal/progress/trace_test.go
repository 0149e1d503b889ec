package progress

import (
	"context"
	"testing"

	"b3flip/pkg/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/log"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type staticTelemetry struct {
	tracer trace.Tracer
}

func (s staticTelemetry) GetTracer() trace.Tracer { return s.tracer }
func (s staticTelemetry) GetLogger() log.Logger   { return nil }

func newRecordingFactory() (*telemetry.TracerFactory, *tracetest.SpanRecorder) {
	spans := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	factory := telemetry.NewTracerFactory(telemetry.TracerFactoryParams{
		Telemetry: staticTelemetry{provider.Tracer("test")},
	})
	return factory, spans
}

func TestTraceRecorderSpanPerSession(t *testing.T) {
	factory, spans := newRecordingFactory()
	tracker := NewTracker()
	traces := NewTraceRecorder(context.Background(), factory, tracker)
	r := Multi(tracker, traces)

	r.OnBitflipStart(testNode(), StartRegular)
	assert.Empty(t, spans.Ended())
	r.OnBitflipStop(StopRegular)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	span := ended[0]
	assert.Equal(t, "bitflip session", span.Name())
	assert.Equal(t, codes.Ok, span.Status().Code)

	attrs := map[string]any{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.AsInterface()
	}
	assert.Equal(t, int64(16), attrs["fuzz.bitflip.bits"])
	assert.Equal(t, int64(2), attrs["fuzz.bitflip.types"])
	assert.Equal(t, int64(1), attrs["fuzz.bitflip.node"])
	assert.Equal(t, tracker.SessionID(), attrs["fuzz.bitflip.session"])

	events := span.Events()
	require.Len(t, events, 2)
	assert.Equal(t, "start", events[0].Name)
	assert.Equal(t, "stop", events[1].Name)

	_, dummy := traces.Tracer().(*telemetry.DummyTracer)
	assert.True(t, dummy)
}

func TestTraceRecorderEndsAbandonedSession(t *testing.T) {
	factory, spans := newRecordingFactory()
	r := NewTraceRecorder(context.Background(), factory, nil)

	r.OnBitflipStart(testNode(), StartRegular)
	r.OnBitflipStart(testNode(), StartRegular)

	ended := spans.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, codes.Error, ended[0].Status().Code)

	r.OnBitflipStop(StopRegular)
	r.OnBitflipStop(StopRegular)
	assert.Len(t, spans.Ended(), 2)
}

func TestTraceRecorderWithoutTelemetry(t *testing.T) {
	r := NewTraceRecorder(context.Background(), telemetry.NewTracerFactory(telemetry.TracerFactoryParams{}), nil)
	r.OnBitflipStart(testNode(), StartRegular)

	_, dummy := r.Tracer().(*telemetry.DummyTracer)
	assert.True(t, dummy)
	r.OnBitflipStop(StopRegular)
}
