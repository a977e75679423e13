package action

import (
	"strings"
	"time"

	"github.com/randalmurphal/wirekit/pkg/wirekit/schedule"
)

// fakeTarget is an in-memory Target for interpreter tests.
type fakeTarget struct {
	value   any
	styles  map[string]any
	classes map[string]bool
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		styles:  make(map[string]any),
		classes: make(map[string]bool),
	}
}

func (t *fakeTarget) Value() any                          { return t.value }
func (t *fakeTarget) SetValue(v any)                      { t.value = v }
func (t *fakeTarget) SetStyle(property string, value any) { t.styles[property] = value }
func (t *fakeTarget) AddClass(name string)                { t.classes[name] = true }
func (t *fakeTarget) RemoveClass(name string)             { delete(t.classes, name) }

// fakeAccess resolves selectors against a fixed target map.
type fakeAccess map[string]*fakeTarget

func (a fakeAccess) Lookup(selector string) (Target, bool) {
	t, ok := a[strings.TrimPrefix(selector, "#")]
	if !ok {
		return nil, false
	}
	return t, true
}

// fakeScheduler records scheduled callbacks so tests can fire them
// deterministically.
type fakeScheduler struct {
	delays    []time.Duration
	callbacks []func()
}

func (s *fakeScheduler) After(delay time.Duration, fn func()) schedule.Handle {
	s.delays = append(s.delays, delay)
	s.callbacks = append(s.callbacks, fn)
	return &fakeHandle{id: "timer"}
}

func (s *fakeScheduler) StopAll() {}

// fire runs all pending callbacks.
func (s *fakeScheduler) fire() {
	pending := s.callbacks
	s.callbacks = nil
	for _, fn := range pending {
		fn()
	}
}

type fakeHandle struct {
	id        string
	cancelled bool
}

func (h *fakeHandle) ID() string { return h.id }
func (h *fakeHandle) Cancel() bool {
	if h.cancelled {
		return false
	}
	h.cancelled = true
	return true
}
