// Package observability provides structured logging, metrics, and tracing
// for the wirekit engine.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"log/slog"
	"time"
)

// EnrichLogger adds engine context to a logger.
// Returns a new logger carrying an engine_id field, plus a component_id
// field when componentID is non-empty.
func EnrichLogger(logger *slog.Logger, engineID, componentID string) *slog.Logger {
	if logger == nil {
		return nil
	}
	attrs := []any{slog.String("engine_id", engineID)}
	if componentID != "" {
		attrs = append(attrs, slog.String("component_id", componentID))
	}
	return logger.With(attrs...)
}

// LogConnect logs connection creation.
func LogConnect(logger *slog.Logger, connID, srcComp, srcPort, dstComp, dstPort string) {
	if logger == nil {
		return
	}
	logger.Debug("connection created",
		slog.String("connection_id", connID),
		slog.String("source", srcComp+"."+srcPort),
		slog.String("target", dstComp+"."+dstPort),
	)
}

// LogConnectionRemoved logs connection removal.
func LogConnectionRemoved(logger *slog.Logger, connID string) {
	if logger == nil {
		return
	}
	logger.Debug("connection removed",
		slog.String("connection_id", connID),
	)
}

// LogValidationFailure logs the specific reason a candidate wiring was rejected.
func LogValidationFailure(logger *slog.Logger, srcComp, srcPort, dstComp, dstPort, reason string) {
	if logger == nil {
		return
	}
	logger.Warn("connection rejected",
		slog.String("source", srcComp+"."+srcPort),
		slog.String("target", dstComp+"."+dstPort),
		slog.String("reason", reason),
	)
}

// LogTransformFailure logs a failed connection transform. The original
// value passes through unchanged, so this is warn-level, not error.
func LogTransformFailure(logger *slog.Logger, connID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("transform failed, passing value through",
		slog.String("connection_id", connID),
		slog.String("error", err.Error()),
	)
}

// LogActionError logs a failed action step. Sibling actions still run.
func LogActionError(logger *slog.Logger, kind string, index int, err error) {
	if logger == nil {
		return
	}
	logger.Error("action failed",
		slog.String("action", kind),
		slog.Int("index", index),
		slog.String("error", err.Error()),
	)
}

// LogUnknownVariant logs an unrecognized action or condition shape.
func LogUnknownVariant(logger *slog.Logger, what, kind string) {
	if logger == nil {
		return
	}
	logger.Warn("unknown variant",
		slog.String("category", what),
		slog.String("kind", kind),
	)
}

// LogAutoWire logs one auto-wiring pass.
func LogAutoWire(logger *slog.Logger, components, candidates, created int, durationMs float64) {
	if logger == nil {
		return
	}
	logger.Info("auto-wiring completed",
		slog.Int("components", components),
		slog.Int("candidate_pairs", candidates),
		slog.Int("connections_created", created),
		slog.Float64("duration_ms", durationMs),
	)
}

// LogEmit logs a value emitted on a component port.
func LogEmit(logger *slog.Logger, componentID, portID string, edges int) {
	if logger == nil {
		return
	}
	logger.Debug("port emit",
		slog.String("component_id", componentID),
		slog.String("port_id", portID),
		slog.Int("edges", edges),
	)
}

// TimedOperation measures the duration of an operation.
// Returns a function that, when called, returns the elapsed time in milliseconds.
func TimedOperation() func() float64 {
	start := time.Now()
	return func() float64 {
		return float64(time.Since(start).Milliseconds())
	}
}
