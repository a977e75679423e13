package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// schemaVersion is stamped into PRAGMA user_version. Opening a database
// written by a newer schema fails rather than misreading it.
const schemaVersion = 1

// SQLiteStore persists snapshots to SQLite, one row per layout plus child
// tables for its components, edges, and behavior attachments.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite snapshot store.
// The path should be a file path (e.g., "./layouts.db") or ":memory:" for testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		db.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	if version > schemaVersion {
		db.Close()
		return nil, fmt.Errorf("layout schema version %d is newer than supported version %d", version, schemaVersion)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS layouts (
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			seq INTEGER NOT NULL,
			saved_at TEXT NOT NULL,
			PRIMARY KEY (session_id, name)
		)`,
		`CREATE TABLE IF NOT EXISTS layout_components (
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			component_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			value TEXT,
			properties TEXT,
			classes TEXT,
			children TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS layout_edges (
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			source_component TEXT NOT NULL,
			source_port TEXT NOT NULL,
			target_component TEXT NOT NULL,
			target_port TEXT NOT NULL,
			transform TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS layout_attachments (
			session_id TEXT NOT NULL,
			name TEXT NOT NULL,
			position INTEGER NOT NULL,
			component_id TEXT NOT NULL,
			behavior TEXT NOT NULL,
			options TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_layout_components ON layout_components(session_id, name)`,
		`CREATE INDEX IF NOT EXISTS idx_layout_edges ON layout_edges(session_id, name)`,
		`CREATE INDEX IF NOT EXISTS idx_layout_attachments ON layout_attachments(session_id, name)`,
		fmt.Sprintf("PRAGMA user_version = %d", schemaVersion),
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Save implements Store. The layout row and all child rows are replaced
// in one transaction; a failed save leaves the previous layout intact.
func (s *SQLiteStore) Save(sessionID, name string, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	savedAt := time.Now().UTC()

	// An overwrite keeps its seq, so List order is first-save order.
	if _, err := tx.Exec(`
		INSERT INTO layouts (session_id, name, seq, saved_at)
		VALUES (
			?, ?,
			COALESCE((SELECT MAX(seq) FROM layouts WHERE session_id = ?), 0) + 1,
			?
		)
		ON CONFLICT(session_id, name) DO UPDATE SET
			saved_at = excluded.saved_at
	`, sessionID, name, sessionID, savedAt.Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("save layout: %w", err)
	}

	for _, table := range []string{"layout_components", "layout_edges", "layout_attachments"} {
		if _, err := tx.Exec(
			"DELETE FROM "+table+" WHERE session_id = ? AND name = ?",
			sessionID, name); err != nil {
			return fmt.Errorf("replace layout rows: %w", err)
		}
	}

	for i, cs := range snap.Components {
		value, err := encodeColumn(cs.Value)
		if err != nil {
			return fmt.Errorf("encode component %s value: %w", cs.ID, err)
		}
		properties, err := encodeColumn(nonEmptyMap(cs.Properties))
		if err != nil {
			return fmt.Errorf("encode component %s properties: %w", cs.ID, err)
		}
		classes, err := encodeColumn(nonEmptyStrings(cs.Classes))
		if err != nil {
			return fmt.Errorf("encode component %s classes: %w", cs.ID, err)
		}
		children, err := encodeColumn(nonEmptyStrings(cs.Children))
		if err != nil {
			return fmt.Errorf("encode component %s children: %w", cs.ID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO layout_components
				(session_id, name, position, component_id, kind, value, properties, classes, children)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, sessionID, name, i, cs.ID, cs.Kind, value, properties, classes, children); err != nil {
			return fmt.Errorf("save component %s: %w", cs.ID, err)
		}
	}

	for i, edge := range snap.Edges {
		if _, err := tx.Exec(`
			INSERT INTO layout_edges
				(session_id, name, position, source_component, source_port, target_component, target_port, transform)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, sessionID, name, i, edge.SourceComponent, edge.SourcePort,
			edge.TargetComponent, edge.TargetPort, edge.Transform); err != nil {
			return fmt.Errorf("save edge: %w", err)
		}
	}

	for i, att := range snap.Behaviors {
		options, err := encodeColumn(nonEmptyMap(att.Options))
		if err != nil {
			return fmt.Errorf("encode attachment options for %s: %w", att.ComponentID, err)
		}
		if _, err := tx.Exec(`
			INSERT INTO layout_attachments
				(session_id, name, position, component_id, behavior, options)
			VALUES (?, ?, ?, ?, ?, ?)
		`, sessionID, name, i, att.ComponentID, att.Behavior, options); err != nil {
			return fmt.Errorf("save attachment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load implements Store.
func (s *SQLiteStore) Load(sessionID, name string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	var savedAt string
	err := s.db.QueryRow(`
		SELECT saved_at FROM layouts
		WHERE session_id = ? AND name = ?
	`, sessionID, name).Scan(&savedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}

	snap := &Snapshot{}
	snap.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)

	if err := s.loadComponents(sessionID, name, snap); err != nil {
		return nil, err
	}
	if err := s.loadEdges(sessionID, name, snap); err != nil {
		return nil, err
	}
	if err := s.loadAttachments(sessionID, name, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteStore) loadComponents(sessionID, name string, snap *Snapshot) error {
	rows, err := s.db.Query(`
		SELECT component_id, kind, value, properties, classes, children
		FROM layout_components
		WHERE session_id = ? AND name = ?
		ORDER BY position
	`, sessionID, name)
	if err != nil {
		return fmt.Errorf("load components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cs ComponentSnapshot
		var value, properties, classes, children sql.NullString
		if err := rows.Scan(&cs.ID, &cs.Kind, &value, &properties, &classes, &children); err != nil {
			return fmt.Errorf("scan component: %w", err)
		}
		if err := decodeColumn(value, &cs.Value); err != nil {
			return fmt.Errorf("decode component %s value: %w", cs.ID, err)
		}
		if err := decodeColumn(properties, &cs.Properties); err != nil {
			return fmt.Errorf("decode component %s properties: %w", cs.ID, err)
		}
		if err := decodeColumn(classes, &cs.Classes); err != nil {
			return fmt.Errorf("decode component %s classes: %w", cs.ID, err)
		}
		if err := decodeColumn(children, &cs.Children); err != nil {
			return fmt.Errorf("decode component %s children: %w", cs.ID, err)
		}
		snap.Components = append(snap.Components, cs)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadEdges(sessionID, name string, snap *Snapshot) error {
	rows, err := s.db.Query(`
		SELECT source_component, source_port, target_component, target_port, transform
		FROM layout_edges
		WHERE session_id = ? AND name = ?
		ORDER BY position
	`, sessionID, name)
	if err != nil {
		return fmt.Errorf("load edges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var edge EdgeSnapshot
		if err := rows.Scan(&edge.SourceComponent, &edge.SourcePort,
			&edge.TargetComponent, &edge.TargetPort, &edge.Transform); err != nil {
			return fmt.Errorf("scan edge: %w", err)
		}
		snap.Edges = append(snap.Edges, edge)
	}
	return rows.Err()
}

func (s *SQLiteStore) loadAttachments(sessionID, name string, snap *Snapshot) error {
	rows, err := s.db.Query(`
		SELECT component_id, behavior, options
		FROM layout_attachments
		WHERE session_id = ? AND name = ?
		ORDER BY position
	`, sessionID, name)
	if err != nil {
		return fmt.Errorf("load attachments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var att AttachmentSnapshot
		var options sql.NullString
		if err := rows.Scan(&att.ComponentID, &att.Behavior, &options); err != nil {
			return fmt.Errorf("scan attachment: %w", err)
		}
		if err := decodeColumn(options, &att.Options); err != nil {
			return fmt.Errorf("decode attachment options for %s: %w", att.ComponentID, err)
		}
		snap.Behaviors = append(snap.Behaviors, att)
	}
	return rows.Err()
}

// List implements Store. Counts come from the child tables, not from
// decoding snapshots.
func (s *SQLiteStore) List(sessionID string) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.Query(`
		SELECT l.name, l.saved_at,
			(SELECT COUNT(*) FROM layout_components c WHERE c.session_id = l.session_id AND c.name = l.name),
			(SELECT COUNT(*) FROM layout_edges e WHERE e.session_id = l.session_id AND e.name = l.name),
			(SELECT COUNT(*) FROM layout_attachments a WHERE a.session_id = l.session_id AND a.name = l.name)
		FROM layouts l
		WHERE l.session_id = ?
		ORDER BY l.seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var infos []Info
	for rows.Next() {
		var info Info
		var savedAt string
		if err := rows.Scan(&info.Name, &savedAt, &info.Components, &info.Edges, &info.Behaviors); err != nil {
			return nil, fmt.Errorf("scan layout info: %w", err)
		}
		info.SessionID = sessionID
		info.SavedAt, _ = time.Parse(time.RFC3339Nano, savedAt)
		infos = append(infos, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate layouts: %w", err)
	}

	return infos, nil
}

// Delete implements Store.
func (s *SQLiteStore) Delete(sessionID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	return s.deleteWhere("session_id = ? AND name = ?", sessionID, name)
}

// DeleteSession implements Store.
func (s *SQLiteStore) DeleteSession(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	return s.deleteWhere("session_id = ?", sessionID)
}

func (s *SQLiteStore) deleteWhere(where string, args ...any) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"layouts", "layout_components", "layout_edges", "layout_attachments"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE "+where, args...); err != nil {
			return fmt.Errorf("delete layout rows: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

// encodeColumn marshals a column value to JSON text, mapping nil to NULL.
func encodeColumn(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// decodeColumn unmarshals a JSON text column, leaving dst untouched for
// NULL columns.
func decodeColumn(col sql.NullString, dst any) error {
	if !col.Valid || col.String == "" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), dst)
}

func nonEmptyMap(m map[string]any) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

func nonEmptyStrings(s []string) any {
	if len(s) == 0 {
		return nil
	}
	return s
}
