// Package schedule abstracts the host's timer facility. The only
// suspension point in the engine is a scheduled action list; everything
// else runs synchronously on the calling turn.
package schedule

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle is an opaque cancellable reference to a pending timer.
type Handle interface {
	// ID returns the timer's unique identifier.
	ID() string

	// Cancel stops the timer. It returns false if the callback already
	// fired or the timer was cancelled before.
	Cancel() bool
}

// Scheduler schedules callbacks to run after a delay.
type Scheduler interface {
	// After runs fn once after the delay and returns a cancellable handle.
	// There is no ordering guarantee between pending timers beyond their
	// respective delays.
	After(delay time.Duration, fn func()) Handle

	// StopAll cancels every pending timer.
	StopAll()
}

// TimerScheduler is the default Scheduler backed by time.AfterFunc.
// Pending timers are tracked so StopAll can cancel outstanding work when
// the engine shuts down.
type TimerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	logger *slog.Logger
}

// NewTimerScheduler creates a scheduler. A nil logger defaults to
// slog.Default().
func NewTimerScheduler(logger *slog.Logger) *TimerScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimerScheduler{
		timers: make(map[string]*time.Timer),
		logger: logger,
	}
}

// After implements Scheduler.
func (s *TimerScheduler) After(delay time.Duration, fn func()) Handle {
	id := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	timer := time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		fn()
	})
	s.timers[id] = timer

	return &timerHandle{id: id, scheduler: s}
}

// StopAll implements Scheduler.
func (s *TimerScheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
	s.logger.Debug("all pending timers stopped")
}

// Pending returns the number of timers that have not fired or been cancelled.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// timerHandle is the Handle for a TimerScheduler timer.
type timerHandle struct {
	id        string
	scheduler *TimerScheduler
}

// ID implements Handle.
func (h *timerHandle) ID() string { return h.id }

// Cancel implements Handle.
func (h *timerHandle) Cancel() bool {
	h.scheduler.mu.Lock()
	defer h.scheduler.mu.Unlock()
	timer, ok := h.scheduler.timers[h.id]
	if !ok {
		return false
	}
	delete(h.scheduler.timers, h.id)
	return timer.Stop()
}
