package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
)

func TestRegistry_GetUnknownReturnsNil(t *testing.T) {
	reg := New(nil)
	assert.Nil(t, reg.Get("ghost"))
	assert.Nil(t, reg.Get("#ghost"))
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := New(nil)
	inst := component.NewInstance("btn", "button")
	reg.Register(inst)

	assert.Same(t, inst, reg.Get("btn"))
	// Selector normalization: "#btn" and "btn" are equivalent.
	assert.Same(t, inst, reg.Get("#btn"))
	assert.True(t, reg.Has("#btn"))
}

func TestRegistry_LastWriteWins(t *testing.T) {
	reg := New(nil)
	first := component.NewInstance("x", "button")
	second := component.NewInstance("x", "display")

	reg.Register(first)
	reg.Register(second)

	assert.Same(t, second, reg.Get("x"))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistry_UnregisterUnknownIsNoop(t *testing.T) {
	reg := New(nil)
	assert.False(t, reg.Unregister("ghost"))
}

func TestRegistry_UnregisterRunsHooks(t *testing.T) {
	reg := New(nil)
	reg.Register(component.NewInstance("a", "button"))

	var removed []string
	reg.OnUnregister(func(id string) { removed = append(removed, id) })

	require.True(t, reg.Unregister("a"))
	assert.Equal(t, []string{"a"}, removed)
	assert.Nil(t, reg.Get("a"))

	// Hooks do not run for unknown IDs.
	removed = nil
	assert.False(t, reg.Unregister("a"))
	assert.Empty(t, removed)
}

func TestRegistry_EventHandlers(t *testing.T) {
	reg := New(nil)
	reg.Register(component.NewInstance("btn", "button"))

	var calls []string
	added := reg.RegisterEventHandler("btn", "click", "h1", func(any) { calls = append(calls, "h1") })
	assert.True(t, added)

	// Same name registers at most once.
	added = reg.RegisterEventHandler("btn", "click", "h1", func(any) { calls = append(calls, "h1-replaced") })
	assert.False(t, added)

	reg.RegisterEventHandler("btn", "click", "h2", func(any) { calls = append(calls, "h2") })

	handlers := reg.HandlersFor("btn", "click")
	require.Len(t, handlers, 2)
	for _, h := range handlers {
		h(nil)
	}
	// Deterministic name order; h1 was replaced by the second registration.
	assert.Equal(t, []string{"h1-replaced", "h2"}, calls)
}

func TestRegistry_UnregisterEventHandlers(t *testing.T) {
	reg := New(nil)
	reg.RegisterEventHandler("btn", "click", "h", func(any) {})
	reg.RegisterEventHandler("btn", "hover", "h", func(any) {})

	reg.UnregisterEventHandlers("btn", "click")
	assert.Empty(t, reg.HandlersFor("btn", "click"))
	assert.Len(t, reg.HandlersFor("btn", "hover"), 1)

	reg.UnregisterEventHandlers("btn", "")
	assert.Empty(t, reg.HandlersFor("btn", "hover"))
}

func TestRegistry_UnregisterDropsHandlers(t *testing.T) {
	reg := New(nil)
	reg.Register(component.NewInstance("btn", "button"))
	reg.RegisterEventHandler("btn", "click", "h", func(any) {})

	reg.Unregister("btn")
	assert.Empty(t, reg.HandlersFor("btn", "click"))
}

func TestRegistry_Query(t *testing.T) {
	reg := New(nil)
	b1 := component.NewInstance("b1", "button")
	b2 := component.NewInstance("b2", "button")
	d := component.NewInstance("d", "display")
	d.AddClass("wide")
	b2.AddClass("wide")
	reg.Register(b1)
	reg.Register(b2)
	reg.Register(d)

	byID := reg.Query("#d")
	require.Len(t, byID, 1)
	assert.Same(t, d, byID[0])

	byClass := reg.Query(".wide")
	require.Len(t, byClass, 2)
	assert.Equal(t, "b2", byClass[0].ID)
	assert.Equal(t, "d", byClass[1].ID)

	byKind := reg.Query("button")
	require.Len(t, byKind, 2)
	assert.Equal(t, "b1", byKind[0].ID)

	assert.Empty(t, reg.Query("#missing"))
	assert.Empty(t, reg.Query(".missing"))
}

func TestRegistry_ReentrantUnregisterFromHook(t *testing.T) {
	// A hook may mutate the registry while Unregister is running.
	reg := New(nil)
	reg.Register(component.NewInstance("a", "x"))
	reg.Register(component.NewInstance("b", "x"))

	reg.OnUnregister(func(id string) {
		if id == "a" {
			reg.Unregister("b")
		}
	})

	require.True(t, reg.Unregister("a"))
	assert.Equal(t, 0, reg.Len())
}

func TestRegistry_Reset(t *testing.T) {
	reg := New(nil)
	reg.Register(component.NewInstance("a", "x"))
	reg.RegisterEventHandler("a", "click", "h", func(any) {})

	reg.Reset()
	assert.Equal(t, 0, reg.Len())
	assert.Empty(t, reg.HandlersFor("a", "click"))
}

func TestNormalizeSelector(t *testing.T) {
	assert.Equal(t, "abc", NormalizeSelector("#abc"))
	assert.Equal(t, "abc", NormalizeSelector("abc"))
	assert.Equal(t, "", NormalizeSelector("#"))
}
