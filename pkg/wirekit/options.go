package wirekit

import (
	"log/slog"

	"github.com/randalmurphal/wirekit/pkg/wirekit/config"
	"github.com/randalmurphal/wirekit/pkg/wirekit/connection"
	"github.com/randalmurphal/wirekit/pkg/wirekit/schedule"
	"github.com/randalmurphal/wirekit/pkg/wirekit/store"
)

// LegacyRunner bridges legacy code-string event handlers to the host.
// The engine never evaluates code strings itself; a host that still has
// them supplies a runner, and without one they log a deprecation notice
// and do nothing.
type LegacyRunner func(componentID, event, code string, data any)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSessionID fixes the engine's session ID instead of generating one.
// Layout snapshots are keyed by session ID.
func WithSessionID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.id = id
			e.idFixed = true
		}
	}
}

// WithConfig applies engine settings from a loaded configuration, usually
// a YAML or JSON file read with config.FromFile. Recognized keys:
//
//	session   string            fixes the session ID
//	maxDepth  int               bounds expression resolution depth
//	store     string            SQLite path for the layout store; the
//	                            engine owns it and closes it on Close
//	matcher   section           auto-wiring scorer rules:
//	  pairs     [][source, target] keyword pairs on port names
//	  stopWords [word]             dropped when tokenizing descriptions
//
// Explicit options win over config values regardless of order.
func WithConfig(cfg config.Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
		e.hasConfig = true
	}
}

// WithMetrics enables OpenTelemetry metrics recording.
func WithMetrics(enabled bool) Option {
	return func(e *Engine) {
		e.metricsEnabled = enabled
	}
}

// WithTracing enables OpenTelemetry span creation.
func WithTracing(enabled bool) Option {
	return func(e *Engine) {
		e.tracingEnabled = enabled
	}
}

// WithStore sets the layout snapshot store. The caller retains ownership
// and closes the store itself.
func WithStore(s store.Store) Option {
	return func(e *Engine) {
		e.store = s
	}
}

// WithScheduler replaces the timer scheduler. Tests inject fakes here.
func WithScheduler(s schedule.Scheduler) Option {
	return func(e *Engine) {
		if s != nil {
			e.scheduler = s
		}
	}
}

// WithScorer replaces the auto-wiring compatibility scorer.
func WithScorer(s connection.Scorer) Option {
	return func(e *Engine) {
		e.scorer = s
	}
}

// WithMaxDepth bounds expression resolution depth in the interpreter.
func WithMaxDepth(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxDepth = n
		}
	}
}

// WithLegacyRunner installs a bridge for legacy code-string handlers.
func WithLegacyRunner(r LegacyRunner) Option {
	return func(e *Engine) {
		e.legacy = r
	}
}
