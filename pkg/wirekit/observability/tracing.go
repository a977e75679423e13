package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracer is the wirekit tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("wirekit")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartEmitSpan starts a span for a port emit and its propagation.
	StartEmitSpan(ctx context.Context, componentID, portID string) (context.Context, trace.Span)

	// StartActionsSpan starts a span for one action list execution.
	StartActionsSpan(ctx context.Context, actionCount int) (context.Context, trace.Span)

	// StartAutoWireSpan starts a span for one auto-wiring pass.
	StartAutoWireSpan(ctx context.Context, componentCount int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartEmitSpan starts a span for a port emit.
func (m *otelSpanManager) StartEmitSpan(ctx context.Context, componentID, portID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "wirekit.emit",
		trace.WithAttributes(
			attribute.String("component.id", componentID),
			attribute.String("port.id", portID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartActionsSpan starts a span for one action list execution.
func (m *otelSpanManager) StartActionsSpan(ctx context.Context, actionCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "wirekit.actions",
		trace.WithAttributes(
			attribute.Int("action.count", actionCount),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartAutoWireSpan starts a span for one auto-wiring pass.
func (m *otelSpanManager) StartAutoWireSpan(ctx context.Context, componentCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "wirekit.autowire",
		trace.WithAttributes(
			attribute.Int("component.count", componentCount),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
