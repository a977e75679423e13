// Package store provides persistent layout snapshot storage. A snapshot
// captures the wiring of a session (component instances, connections, and
// behavior attachments) so a layout can be rebuilt later.
package store

import (
	"errors"
	"time"
)

// Store persists layout snapshots. Snapshots are stored structurally, not
// as opaque payloads, so implementations can report content metadata
// without materializing the full snapshot.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a snapshot under a name within a session, stamping its
	// save time. Overwrites if (sessionID, name) already exists; the
	// layout keeps its original position in List order.
	Save(sessionID, name string, snap *Snapshot) error

	// Load retrieves a snapshot. The returned snapshot is the caller's to
	// mutate. Returns ErrNotFound if the snapshot doesn't exist.
	Load(sessionID, name string) (*Snapshot, error)

	// List returns metadata for all snapshots in a session, ordered by
	// first save. Returns empty slice (not error) if the session has no
	// snapshots.
	List(sessionID string) ([]Info, error)

	// Delete removes a specific snapshot.
	// Returns nil if the snapshot doesn't exist.
	Delete(sessionID, name string) error

	// DeleteSession removes all snapshots for a session.
	// Returns nil if the session has no snapshots.
	DeleteSession(sessionID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info summarizes a stored snapshot without loading it.
type Info struct {
	SessionID string
	Name      string
	SavedAt   time.Time

	// Content counts, taken from the snapshot structure at save time.
	Components int
	Edges      int
	Behaviors  int
}

// Sentinel errors for snapshot operations.
var (
	// ErrNotFound indicates a snapshot doesn't exist.
	ErrNotFound = errors.New("snapshot not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("snapshot store closed")
)
