// Package connection maintains the directed graph of typed edges between
// component ports, owns the type-compatibility matrix, and hosts the
// heuristic auto-wiring matcher.
//
// The graph primitives are deliberately two-tier: Connect trusts its caller
// and never validates, while ValidateConnection performs the direction and
// type checks. Validated wiring paths call ValidateConnection first; code
// that already knows a wiring is sound (the matcher, snapshot restore)
// calls Connect directly.
package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/wirekit/pkg/wirekit/component"
	"github.com/randalmurphal/wirekit/pkg/wirekit/observability"
)

// TransformFunc is a pure value mapper attached to an edge. A transform
// that returns an error (or panics) is fail-open: the original value passes
// through unchanged.
type TransformFunc func(value any) (any, error)

// Connection is a directed, optionally value-transforming edge between two
// ports on two component instances. Many edges may share an endpoint; there
// is no uniqueness constraint on fan-in or fan-out.
type Connection struct {
	ID              string
	SourceComponent string
	SourcePort      string
	TargetComponent string
	TargetPort      string
	Transform       TransformFunc

	// seq orders edges by creation. Propagation visits edges in this
	// order, which makes fan-in last-applied-wins by creation order.
	seq uint64
}

// PortSource resolves the published port schema for a live component.
// The engine implements it by combining the component registry (instance
// kind) with the schema registry (per-kind capabilities).
type PortSource interface {
	// Port returns one port of a component by port ID.
	Port(componentID, portID string) (component.Port, bool)

	// Ports returns all ports of a component.
	Ports(componentID string) ([]component.Port, bool)
}

// DeliverFunc receives a propagated value at a connection target.
type DeliverFunc func(targetComponent, targetPort string, value any)

// Manager owns the connection graph. All methods are safe for concurrent
// use; iteration always works on snapshots so handlers reached during
// propagation may mutate the graph reentrantly.
type Manager struct {
	mu       sync.RWMutex
	conns    map[string]*Connection
	outgoing map[string][]string // componentID -> connection IDs, creation order
	incoming map[string][]string
	nextSeq  uint64

	ports   PortSource
	deliver DeliverFunc
	scorer  Scorer
	logger  *slog.Logger
	metrics observability.MetricsRecorder
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec observability.MetricsRecorder) Option {
	return func(m *Manager) {
		if rec != nil {
			m.metrics = rec
		}
	}
}

// WithScorer replaces the auto-wiring compatibility scorer.
func WithScorer(s Scorer) Option {
	return func(m *Manager) {
		if s != nil {
			m.scorer = s
		}
	}
}

// NewManager creates a connection manager reading port schemas from ports.
func NewManager(ports PortSource, opts ...Option) *Manager {
	m := &Manager{
		conns:    make(map[string]*Connection),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		ports:    ports,
		scorer:   DefaultScorer(),
		logger:   slog.Default(),
		metrics:  observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// SetDeliver installs the delivery sink invoked by Propagate.
func (m *Manager) SetDeliver(fn DeliverFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliver = fn
}

// Connect creates an edge unconditionally. It performs no direction or
// type validation; callers that need checked wiring must call
// ValidateConnection first.
func (m *Manager) Connect(srcComp, srcPort, dstComp, dstPort string, transform TransformFunc) *Connection {
	conn := &Connection{
		ID:              uuid.New().String(),
		SourceComponent: srcComp,
		SourcePort:      srcPort,
		TargetComponent: dstComp,
		TargetPort:      dstPort,
		Transform:       transform,
	}

	m.mu.Lock()
	m.nextSeq++
	conn.seq = m.nextSeq
	m.conns[conn.ID] = conn
	m.outgoing[srcComp] = append(m.outgoing[srcComp], conn.ID)
	m.incoming[dstComp] = append(m.incoming[dstComp], conn.ID)
	m.mu.Unlock()

	observability.LogConnect(m.logger, conn.ID, srcComp, srcPort, dstComp, dstPort)
	m.metrics.RecordConnection(context.Background(), "created")
	return conn
}

// ValidateConnection checks that the source port can send, the target port
// can receive, and the two data types are matrix-compatible. It returns
// false and logs the specific mismatch when any check fails.
func (m *Manager) ValidateConnection(srcComp, srcPort, dstComp, dstPort string) bool {
	sp, ok := m.ports.Port(srcComp, srcPort)
	if !ok {
		observability.LogValidationFailure(m.logger, srcComp, srcPort, dstComp, dstPort,
			"unknown source port")
		return false
	}
	dp, ok := m.ports.Port(dstComp, dstPort)
	if !ok {
		observability.LogValidationFailure(m.logger, srcComp, srcPort, dstComp, dstPort,
			"unknown target port")
		return false
	}
	if !sp.Direction.CanSend() {
		observability.LogValidationFailure(m.logger, srcComp, srcPort, dstComp, dstPort,
			fmt.Sprintf("source direction %s cannot send", sp.Direction))
		return false
	}
	if !dp.Direction.CanReceive() {
		observability.LogValidationFailure(m.logger, srcComp, srcPort, dstComp, dstPort,
			fmt.Sprintf("target direction %s cannot receive", dp.Direction))
		return false
	}
	if !Compatible(sp.DataType, dp.DataType) {
		observability.LogValidationFailure(m.logger, srcComp, srcPort, dstComp, dstPort,
			fmt.Sprintf("incompatible types %s->%s", sp.DataType, dp.DataType))
		return false
	}
	return true
}

// Connection returns the edge with the given ID.
func (m *Manager) Connection(id string) (*Connection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	conn, ok := m.conns[id]
	return conn, ok
}

// RemoveConnection deletes an edge and updates both endpoint indices.
// It is idempotent: removing an unknown ID returns false and never panics.
func (m *Manager) RemoveConnection(id string) bool {
	m.mu.Lock()
	conn, ok := m.conns[id]
	if !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.conns, id)
	m.outgoing[conn.SourceComponent] = removeID(m.outgoing[conn.SourceComponent], id)
	m.incoming[conn.TargetComponent] = removeID(m.incoming[conn.TargetComponent], id)
	m.mu.Unlock()

	observability.LogConnectionRemoved(m.logger, id)
	m.metrics.RecordConnection(context.Background(), "removed")
	return true
}

// RemoveForComponent deletes every edge where the component is an endpoint
// and returns the number removed. The registry's unregister cascade calls
// this; the contract is binding, not optional cleanup.
func (m *Manager) RemoveForComponent(componentID string) int {
	ids := make(map[string]struct{})
	m.mu.RLock()
	for _, id := range m.outgoing[componentID] {
		ids[id] = struct{}{}
	}
	for _, id := range m.incoming[componentID] {
		ids[id] = struct{}{}
	}
	m.mu.RUnlock()

	removed := 0
	for id := range ids {
		if m.RemoveConnection(id) {
			removed++
		}
	}
	return removed
}

// OutgoingConnections returns the edges whose source is the component,
// in creation order.
func (m *Manager) OutgoingConnections(componentID string) []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(m.outgoing[componentID])
}

// IncomingConnections returns the edges whose target is the component,
// in creation order.
func (m *Manager) IncomingConnections(componentID string) []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(m.incoming[componentID])
}

// ConnectionsForComponent returns every edge touching the component,
// outgoing first, deduplicated for self-edges.
func (m *Manager) ConnectionsForComponent(componentID string) []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := make(map[string]struct{})
	var out []*Connection
	for _, conn := range m.collect(m.outgoing[componentID]) {
		seen[conn.ID] = struct{}{}
		out = append(out, conn)
	}
	for _, conn := range m.collect(m.incoming[componentID]) {
		if _, dup := seen[conn.ID]; !dup {
			out = append(out, conn)
		}
	}
	return out
}

// collect resolves connection IDs to edges. Callers hold m.mu.
func (m *Manager) collect(ids []string) []*Connection {
	out := make([]*Connection, 0, len(ids))
	for _, id := range ids {
		if conn, ok := m.conns[id]; ok {
			out = append(out, conn)
		}
	}
	return out
}

// TransformValue applies the edge's transform to a value. A transform that
// errors or panics is caught and logged, and the original value is
// returned unchanged.
func (m *Manager) TransformValue(conn *Connection, value any) (result any) {
	if conn == nil || conn.Transform == nil {
		return value
	}
	result = value
	defer func() {
		if r := recover(); r != nil {
			observability.LogTransformFailure(m.logger, conn.ID,
				fmt.Errorf("transform panic: %v", r))
			result = value
		}
	}()
	transformed, err := conn.Transform(value)
	if err != nil {
		observability.LogTransformFailure(m.logger, conn.ID, err)
		return value
	}
	return transformed
}

// Propagate pushes a value across every outgoing edge of (component, port),
// applying transforms, delivering to targets in edge creation order.
// It returns the number of edges delivered.
//
// The edge set is snapshotted before delivery: a handler reached through
// the delivery sink may connect or disconnect edges without disturbing the
// iteration in progress.
func (m *Manager) Propagate(ctx context.Context, srcComp, srcPort string, value any) int {
	start := time.Now()

	m.mu.RLock()
	var edges []*Connection
	for _, id := range m.outgoing[srcComp] {
		if conn, ok := m.conns[id]; ok && conn.SourcePort == srcPort {
			edges = append(edges, conn)
		}
	}
	deliver := m.deliver
	m.mu.RUnlock()

	if deliver == nil {
		return 0
	}

	for _, conn := range edges {
		deliver(conn.TargetComponent, conn.TargetPort, m.TransformValue(conn, value))
	}

	observability.LogEmit(m.logger, srcComp, srcPort, len(edges))
	m.metrics.RecordPropagation(ctx, len(edges), time.Since(start))
	return len(edges)
}

// Len returns the number of edges in the graph.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// All returns every edge in creation order. Used by layout snapshots.
func (m *Manager) All() []*Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Connection, 0, len(m.conns))
	for _, conn := range m.conns {
		out = append(out, conn)
	}
	sortBySeq(out)
	return out
}

// Reset removes all edges.
func (m *Manager) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns = make(map[string]*Connection)
	m.outgoing = make(map[string][]string)
	m.incoming = make(map[string][]string)
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

func sortBySeq(conns []*Connection) {
	sort.Slice(conns, func(i, j int) bool { return conns[i].seq < conns[j].seq })
}
