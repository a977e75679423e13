package store

import (
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory snapshot store for testing and ephemeral
// sessions. Data is lost when the process exits.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]*memoryEntry // sessionID -> name -> entry
	closed   bool
}

// memoryEntry holds a cloned snapshot plus its first-save order.
type memoryEntry struct {
	snap *Snapshot
	seq  int
}

// NewMemoryStore creates a new in-memory snapshot store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]map[string]*memoryEntry),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(sessionID, name string, snap *Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	session := m.sessions[sessionID]
	if session == nil {
		session = make(map[string]*memoryEntry)
		m.sessions[sessionID] = session
	}

	stored := snap.Clone()
	stored.SavedAt = time.Now().UTC()

	if existing, ok := session[name]; ok {
		// An overwrite keeps its position in List order.
		existing.snap = stored
		return nil
	}

	seq := 1
	for _, entry := range session {
		if entry.seq >= seq {
			seq = entry.seq + 1
		}
	}
	session[name] = &memoryEntry{snap: stored, seq: seq}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(sessionID, name string) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	entry, ok := m.sessions[sessionID][name]
	if !ok {
		return nil, ErrNotFound
	}
	return entry.snap.Clone(), nil
}

// List implements Store.
func (m *MemoryStore) List(sessionID string) ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}

	type ordered struct {
		info Info
		seq  int
	}
	entries := make([]ordered, 0, len(session))
	for name, entry := range session {
		entries = append(entries, ordered{
			info: Info{
				SessionID:  sessionID,
				Name:       name,
				SavedAt:    entry.snap.SavedAt,
				Components: len(entry.snap.Components),
				Edges:      len(entry.snap.Edges),
				Behaviors:  len(entry.snap.Behaviors),
			},
			seq: entry.seq,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	infos := make([]Info, len(entries))
	for i, e := range entries {
		infos[i] = e.info
	}
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(sessionID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	if session, ok := m.sessions[sessionID]; ok {
		delete(session, name)
	}
	return nil
}

// DeleteSession implements Store.
func (m *MemoryStore) DeleteSession(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.sessions, sessionID)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.sessions = nil
	return nil
}

// Len returns the total number of snapshots across all sessions.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, session := range m.sessions {
		count += len(session)
	}
	return count
}
