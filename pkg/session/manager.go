// Package session manages the set of live debug sessions owned by a
// tether daemon.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/probelab/tether"
	"github.com/probelab/tether/internal/logging"
	"github.com/probelab/tether/pkg/ports"
)

// ErrNotFound is returned when no live session has the requested ID.
var ErrNotFound = errors.New("no such session")

// ErrExists is returned when opening a session whose ID is already live.
var ErrExists = errors.New("session already exists")

// Factory builds a new session for an ID. The manager calls it while
// holding the manager lock, so factories must not call back into the
// manager.
type Factory func(id string) (*tether.Session, error)

// Manager owns the live sessions of a daemon and fronts their journals.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*tether.Session

	journal ports.JournalStore
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithJournal lets the manager list and read historical session
// journals alongside the live set.
func WithJournal(store ports.JournalStore) Option {
	return func(m *Manager) { m.journal = store }
}

// WithLogger configures a logger for manager events.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates an empty session manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*tether.Session),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open creates, starts, and registers a new session under id.
func (m *Manager) Open(id string, factory Factory) (*tether.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, live := m.sessions[id]; live {
		return nil, fmt.Errorf("%w: %q", ErrExists, id)
	}

	s, err := factory(id)
	if err != nil {
		return nil, fmt.Errorf("creating session %q: %w", id, err)
	}
	if err := s.Start(); err != nil {
		return nil, fmt.Errorf("starting session %q: %w", id, err)
	}

	m.sessions[id] = s
	m.logger.Info("session opened", "session_id", id)
	return s, nil
}

// Get returns the live session with the given ID.
func (m *Manager) Get(id string) (*tether.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s, nil
}

// Close shuts a session down and removes it from the live set.
func (m *Manager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down session %q: %w", id, err)
	}
	m.logger.Info("session closed", "session_id", id)
	return nil
}

// CloseAll shuts down every live session, returning the first error.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var firstErr error
	for _, id := range ids {
		if err := m.Close(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// List returns the IDs of all live sessions, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Journal returns the recorded command trace for a session, live or
// historical. Without a journal store it always reports not found.
func (m *Manager) Journal(ctx context.Context, id string) ([]ports.Record, error) {
	if m.journal == nil {
		return nil, ports.ErrSessionNotFound
	}
	return m.journal.Load(ctx, id)
}
