package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestFactoryWithoutTelemetryReturnsDummy(t *testing.T) {
	factory := NewTracerFactory(TracerFactoryParams{})
	tracer := factory.NewTracer(context.Background(), "span")

	_, ok := tracer.(*DummyTracer)
	assert.True(t, ok)
	assert.Equal(t, "", tracer.Export())
}

func TestFactoryTracerRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	factory := NewTracerFactory(TracerFactoryParams{Telemetry: staticTelemetry{provider.Tracer("test")}})

	tracer := factory.NewTracer(context.Background(), "bitflip session").
		WithAttributes(NewSpanAttributes(Fuzzing).WithBitflipBits(16))
	tracer.Start()
	tracer.AddEvent("typed_phase", NewEventAttributes(map[string]string{"type": "uint16"}))
	tracer.WithAttributes(EmptySpanAttributes().WithBitflipGenerated(17))
	tracer.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "bitflip session", spans[0].Name())

	m := attrMap(spans[0].Attributes())
	assert.Equal(t, int64(16), m["fuzz.bitflip.bits"].AsInt64())
	assert.Equal(t, int64(17), m["fuzz.bitflip.generated"].AsInt64())
	assert.Equal(t, "bitflip session", m["crs.action.name"].AsString())
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "typed_phase", spans[0].Events()[0].Name)
}

func TestFromContext(t *testing.T) {
	_, ok := FromContext(context.Background()).(*DummyTracer)
	assert.True(t, ok)

	tracer := &DummyTracer{}
	ctx := context.WithValue(context.Background(), TracerKey{}, Tracer(tracer))
	assert.Same(t, tracer, FromContext(ctx))
}
