package progress

import (
	"context"

	"b3flip/internal/branching"
	"b3flip/pkg/telemetry"

	"go.opentelemetry.io/otel/codes"
)

// TraceRecorder opens one span per session.
type TraceRecorder struct {
	factory *telemetry.TracerFactory
	ids     SessionIDs
	ctx     context.Context

	tracer telemetry.Tracer
}

func NewTraceRecorder(ctx context.Context, factory *telemetry.TracerFactory, ids SessionIDs) *TraceRecorder {
	return &TraceRecorder{
		factory: factory,
		ids:     ids,
		ctx:     ctx,
	}
}

func (r *TraceRecorder) OnBitflipStart(node branching.Node, kind StartKind) {
	if r.tracer != nil {
		// the previous session was never stopped
		r.tracer.SetStatus(codes.Error, "session abandoned")
		r.tracer.End()
	}

	nodeID, bits, types := nodeInfo(node)
	attrs := telemetry.NewSpanAttributes(telemetry.DynamicAnalysis).
		WithBitflipBits(bits).
		WithBitflipTypes(types)
	if nodeID != nil {
		attrs.WithBitflipNode(*nodeID)
	}
	if r.ids != nil {
		attrs.WithBitflipSession(r.ids.SessionID())
	}

	r.tracer = r.factory.NewTracer(r.ctx, "bitflip session").WithAttributes(attrs)
	r.tracer.Start()
	r.tracer.AddEvent("start", telemetry.NewEventAttributes(map[string]string{"kind": kind.String()}))
}

func (r *TraceRecorder) OnBitflipStop(kind StopKind) {
	if r.tracer == nil {
		return
	}
	r.tracer.AddEvent("stop", telemetry.NewEventAttributes(map[string]string{"kind": kind.String()}))
	r.tracer.SetStatus(codes.Ok, "")
	r.tracer.End()
	r.tracer = nil
}

// Tracer returns the span of the running session, or a DummyTracer.
func (r *TraceRecorder) Tracer() telemetry.Tracer {
	if r == nil || r.tracer == nil {
		return &telemetry.DummyTracer{}
	}
	return r.tracer
}
