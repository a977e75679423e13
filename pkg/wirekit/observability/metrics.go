package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records wirekit engine metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordConnection records a connection mutation ("created" or "removed").
	RecordConnection(ctx context.Context, op string)

	// RecordPropagation records one port emit with the number of edges reached.
	RecordPropagation(ctx context.Context, edges int, duration time.Duration)

	// RecordAction records one interpreted action step and its error status.
	RecordAction(ctx context.Context, kind string, err error)

	// RecordAutoWire records one auto-wiring pass.
	RecordAutoWire(ctx context.Context, candidates, created int, duration time.Duration)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	connectionOps      metric.Int64Counter
	propagationEdges   metric.Int64Counter
	propagationLatency metric.Float64Histogram
	actionExecutions   metric.Int64Counter
	actionErrors       metric.Int64Counter
	autowireCandidates metric.Int64Counter
	autowireCreated    metric.Int64Counter
	autowireLatency    metric.Float64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("wirekit")

	connectionOps, err := meter.Int64Counter("wirekit.connection.ops",
		metric.WithDescription("Number of connection mutations"),
	)
	if err != nil {
		return nil, err
	}

	propagationEdges, err := meter.Int64Counter("wirekit.propagation.edges",
		metric.WithDescription("Number of edges traversed by port emits"),
	)
	if err != nil {
		return nil, err
	}

	propagationLatency, err := meter.Float64Histogram("wirekit.propagation.latency_ms",
		metric.WithDescription("Port emit propagation latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	actionExecutions, err := meter.Int64Counter("wirekit.action.executions",
		metric.WithDescription("Number of interpreted action steps"),
	)
	if err != nil {
		return nil, err
	}

	actionErrors, err := meter.Int64Counter("wirekit.action.errors",
		metric.WithDescription("Number of failed action steps"),
	)
	if err != nil {
		return nil, err
	}

	autowireCandidates, err := meter.Int64Counter("wirekit.autowire.candidates",
		metric.WithDescription("Number of port pairs considered by the matcher"),
	)
	if err != nil {
		return nil, err
	}

	autowireCreated, err := meter.Int64Counter("wirekit.autowire.created",
		metric.WithDescription("Number of connections created by the matcher"),
	)
	if err != nil {
		return nil, err
	}

	autowireLatency, err := meter.Float64Histogram("wirekit.autowire.latency_ms",
		metric.WithDescription("Auto-wiring pass latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		connectionOps:      connectionOps,
		propagationEdges:   propagationEdges,
		propagationLatency: propagationLatency,
		actionExecutions:   actionExecutions,
		actionErrors:       actionErrors,
		autowireCandidates: autowireCandidates,
		autowireCreated:    autowireCreated,
		autowireLatency:    autowireLatency,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordConnection records a connection mutation.
func (m *otelMetrics) RecordConnection(ctx context.Context, op string) {
	m.connectionOps.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
	))
}

// RecordPropagation records one port emit.
func (m *otelMetrics) RecordPropagation(ctx context.Context, edges int, duration time.Duration) {
	m.propagationEdges.Add(ctx, int64(edges))
	m.propagationLatency.Record(ctx, float64(duration.Milliseconds()))
}

// RecordAction records one interpreted action step.
func (m *otelMetrics) RecordAction(ctx context.Context, kind string, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("kind", kind),
	}
	m.actionExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		m.actionErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// RecordAutoWire records one auto-wiring pass.
func (m *otelMetrics) RecordAutoWire(ctx context.Context, candidates, created int, duration time.Duration) {
	m.autowireCandidates.Add(ctx, int64(candidates))
	m.autowireCreated.Add(ctx, int64(created))
	m.autowireLatency.Record(ctx, float64(duration.Milliseconds()))
}
