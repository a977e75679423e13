package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/wirekit/pkg/wirekit/store"
)

// storeFactory creates a store instance for testing.
type storeFactory func(t *testing.T) store.Store

// sampleSnapshot builds a snapshot with JSON-stable value types so the
// round trip compares equal across both store implementations.
func sampleSnapshot(display string) *store.Snapshot {
	return &store.Snapshot{
		Components: []store.ComponentSnapshot{
			{ID: "display", Kind: "text-display", Value: display, Classes: []string{"lit"}},
			{ID: "panel", Kind: "panel",
				Properties: map[string]any{"label": "calc"},
				Children:   []string{"display"}},
		},
		Edges: []store.EdgeSnapshot{
			{SourceComponent: "digit-7", SourcePort: "digit",
				TargetComponent: "display", TargetPort: "display", Transform: "toString"},
		},
		Behaviors: []store.AttachmentSnapshot{
			{ComponentID: "display", Behavior: "toggle",
				Options: map[string]any{"states": []any{"off", "on"}}},
		},
	}
}

// storeContractTest runs contract tests against any Store implementation.
func storeContractTest(t *testing.T, name string, factory storeFactory) {
	t.Run(name+"/Save_and_Load", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Save("session-1", "main", sampleSnapshot("0")))

		loaded, err := s.Load("session-1", "main")
		require.NoError(t, err)
		assert.False(t, loaded.SavedAt.IsZero())

		require.Len(t, loaded.Components, 2)
		assert.Equal(t, "display", loaded.Components[0].ID)
		assert.Equal(t, "text-display", loaded.Components[0].Kind)
		assert.Equal(t, "0", loaded.Components[0].Value)
		assert.Equal(t, []string{"lit"}, loaded.Components[0].Classes)
		assert.Equal(t, map[string]any{"label": "calc"}, loaded.Components[1].Properties)
		assert.Equal(t, []string{"display"}, loaded.Components[1].Children)

		require.Len(t, loaded.Edges, 1)
		assert.Equal(t, "digit-7", loaded.Edges[0].SourceComponent)
		assert.Equal(t, "toString", loaded.Edges[0].Transform)

		require.Len(t, loaded.Behaviors, 1)
		assert.Equal(t, "toggle", loaded.Behaviors[0].Behavior)
		assert.Equal(t, map[string]any{"states": []any{"off", "on"}}, loaded.Behaviors[0].Options)
	})

	t.Run(name+"/Load_NotFound", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		_, err := s.Load("session-nonexistent", "layout-nonexistent")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run(name+"/Save_Overwrite", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Save("session-1", "main", sampleSnapshot("first")))
		require.NoError(t, s.Save("session-1", "main", &store.Snapshot{
			Components: []store.ComponentSnapshot{{ID: "display", Kind: "text-display", Value: "second"}},
		}))

		loaded, err := s.Load("session-1", "main")
		require.NoError(t, err)
		require.Len(t, loaded.Components, 1)
		assert.Equal(t, "second", loaded.Components[0].Value)
		// Rows from the overwritten version do not linger.
		assert.Empty(t, loaded.Edges)
		assert.Empty(t, loaded.Behaviors)

		infos, err := s.List("session-1")
		require.NoError(t, err)
		require.Len(t, infos, 1)
	})

	t.Run(name+"/List_Empty", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		infos, err := s.List("session-nonexistent")
		require.NoError(t, err)
		assert.Empty(t, infos)
	})

	t.Run(name+"/List_OrderAndCounts", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Save("session-1", "draft", sampleSnapshot("0")))
		require.NoError(t, s.Save("session-1", "final", &store.Snapshot{
			Components: []store.ComponentSnapshot{{ID: "solo", Kind: "display"}},
		}))
		// Re-saving keeps a layout's position in the listing.
		require.NoError(t, s.Save("session-1", "draft", sampleSnapshot("7")))

		infos, err := s.List("session-1")
		require.NoError(t, err)
		require.Len(t, infos, 2)

		assert.Equal(t, "draft", infos[0].Name)
		assert.Equal(t, 2, infos[0].Components)
		assert.Equal(t, 1, infos[0].Edges)
		assert.Equal(t, 1, infos[0].Behaviors)
		assert.False(t, infos[0].SavedAt.IsZero())

		assert.Equal(t, "final", infos[1].Name)
		assert.Equal(t, 1, infos[1].Components)
		assert.Equal(t, 0, infos[1].Edges)
		assert.Equal(t, 0, infos[1].Behaviors)
	})

	t.Run(name+"/Delete", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Save("session-1", "main", sampleSnapshot("0")))
		require.NoError(t, s.Delete("session-1", "main"))

		_, err := s.Load("session-1", "main")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run(name+"/Delete_Nonexistent", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		assert.NoError(t, s.Delete("session-nonexistent", "layout-nonexistent"))
	})

	t.Run(name+"/DeleteSession", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Save("session-1", "a", sampleSnapshot("a")))
		require.NoError(t, s.Save("session-1", "b", sampleSnapshot("b")))
		require.NoError(t, s.Save("session-2", "a", sampleSnapshot("other")))

		require.NoError(t, s.DeleteSession("session-1"))

		infos, err := s.List("session-1")
		require.NoError(t, err)
		assert.Empty(t, infos)

		// Other sessions are untouched
		infos, err = s.List("session-2")
		require.NoError(t, err)
		assert.Len(t, infos, 1)
	})

	t.Run(name+"/DeleteSession_Nonexistent", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		assert.NoError(t, s.DeleteSession("session-nonexistent"))
	})

	t.Run(name+"/MultipleSessions", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		require.NoError(t, s.Save("session-1", "main", sampleSnapshot("s1-main")))
		require.NoError(t, s.Save("session-1", "alt", sampleSnapshot("s1-alt")))
		require.NoError(t, s.Save("session-2", "main", sampleSnapshot("s2-main")))

		loaded, err := s.Load("session-1", "main")
		require.NoError(t, err)
		assert.Equal(t, "s1-main", loaded.Components[0].Value)

		loaded, err = s.Load("session-2", "main")
		require.NoError(t, err)
		assert.Equal(t, "s2-main", loaded.Components[0].Value)

		infos1, _ := s.List("session-1")
		infos2, _ := s.List("session-2")
		assert.Len(t, infos1, 2)
		assert.Len(t, infos2, 1)
	})

	t.Run(name+"/SnapshotIsolation", func(t *testing.T) {
		s := factory(t)
		defer s.Close()

		snap := sampleSnapshot("original")
		require.NoError(t, s.Save("session-1", "main", snap))

		// Mutating the saved snapshot afterwards must not leak into the
		// stored copy, and mutating a loaded snapshot must not corrupt a
		// later load.
		snap.Components[0].Value = "mutated"
		snap.Components[1].Properties["label"] = "mutated"

		first, err := s.Load("session-1", "main")
		require.NoError(t, err)
		assert.Equal(t, "original", first.Components[0].Value)
		assert.Equal(t, "calc", first.Components[1].Properties["label"])

		first.Components[0].Value = "scribbled"
		second, err := s.Load("session-1", "main")
		require.NoError(t, err)
		assert.Equal(t, "original", second.Components[0].Value)
	})

	t.Run(name+"/Close_ThenError", func(t *testing.T) {
		s := factory(t)
		require.NoError(t, s.Close())

		err := s.Save("session-1", "main", sampleSnapshot("0"))
		assert.ErrorIs(t, err, store.ErrStoreClosed)

		_, err = s.Load("session-1", "main")
		assert.ErrorIs(t, err, store.ErrStoreClosed)

		_, err = s.List("session-1")
		assert.ErrorIs(t, err, store.ErrStoreClosed)
	})
}

// TestMemoryStore runs contract tests against MemoryStore.
func TestMemoryStore(t *testing.T) {
	factory := func(t *testing.T) store.Store {
		return store.NewMemoryStore()
	}
	storeContractTest(t, "MemoryStore", factory)
}

// TestSQLiteStore runs contract tests against SQLiteStore.
func TestSQLiteStore(t *testing.T) {
	factory := func(t *testing.T) store.Store {
		s, err := store.NewSQLiteStore(":memory:")
		require.NoError(t, err)
		return s
	}
	storeContractTest(t, "SQLiteStore", factory)
}

func TestMemoryStore_Len(t *testing.T) {
	s := store.NewMemoryStore()
	defer s.Close()

	require.NoError(t, s.Save("session-1", "a", sampleSnapshot("a")))
	require.NoError(t, s.Save("session-2", "b", sampleSnapshot("b")))
	assert.Equal(t, 2, s.Len())
}

func TestSQLiteStore_FileBacked(t *testing.T) {
	path := t.TempDir() + "/layouts.db"

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Save("session-1", "main", sampleSnapshot("persisted")))
	require.NoError(t, s.Close())

	// Reopening the file sees the saved snapshot.
	s, err = store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s.Close()

	loaded, err := s.Load("session-1", "main")
	require.NoError(t, err)
	require.Len(t, loaded.Components, 2)
	assert.Equal(t, "persisted", loaded.Components[0].Value)
	require.Len(t, loaded.Edges, 1)
	assert.Equal(t, "toString", loaded.Edges[0].Transform)
}
