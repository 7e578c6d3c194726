package vectorindex

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Status is the availability state of the vector index.
type Status string

const (
	StatusUnconfigured Status = "unconfigured"
	StatusInitializing Status = "initializing"
	StatusReady        Status = "ready"
	StatusFailed       Status = "failed"
)

// Manager tracks the availability of an Index. Transitions are one-way:
// Unconfigured stays Unconfigured, Initializing resolves to Ready or
// Failed, and Failed is terminal.
type Manager struct {
	mu     sync.RWMutex
	index  Index
	status Status
	logger *slog.Logger
}

// NewManager wraps an index. A nil index yields an Unconfigured manager
// whose operations all report ErrUnavailable.
func NewManager(index Index) *Manager {
	status := StatusInitializing
	if index == nil {
		status = StatusUnconfigured
	}
	return &Manager{
		index:  index,
		status: status,
		logger: slog.Default().With("component", "vector-index"),
	}
}

// Initialize probes the index and settles the manager into Ready or
// Failed. A no-op for unconfigured managers and for managers already
// settled.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != StatusInitializing {
		return
	}

	if err := m.index.Ping(ctx); err != nil {
		m.status = StatusFailed
		m.logger.Warn("vector index unreachable, semantic search disabled", "error", err)
		return
	}

	m.status = StatusReady
	m.logger.Info("vector index ready")
}

// Status returns the current availability state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Acquire returns the index when it is Ready, or ErrUnavailable with the
// current state otherwise.
func (m *Manager) Acquire() (Index, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.status != StatusReady {
		return nil, fmt.Errorf("%w: index is %s", ErrUnavailable, m.status)
	}
	return m.index, nil
}

// Stats reports the index contents, or a zero count with the availability
// state when the index cannot be reached.
func (m *Manager) Stats(ctx context.Context) Stats {
	idx, err := m.Acquire()
	if err != nil {
		return Stats{Status: string(m.Status())}
	}

	count, err := idx.Count(ctx)
	if err != nil {
		m.logger.Warn("vector index count failed", "error", err)
		return Stats{Status: string(StatusReady)}
	}
	return Stats{Vectors: count, Status: string(StatusReady)}
}

// Close closes the underlying index, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index == nil {
		return nil
	}
	return m.index.Close()
}
