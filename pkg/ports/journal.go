package ports

import (
	"context"
	"errors"
	"time"
)

// ErrSessionNotFound is returned by journal stores when no journal exists
// for the requested session.
var ErrSessionNotFound = errors.New("session not found")

// Record is one journaled command: the submitted line, what it produced,
// and when it was dispatched. Error holds the dispatch error text, empty
// on success.
type Record struct {
	Seq    int       `json:"seq"`
	Line   string    `json:"line"`
	Output string    `json:"output,omitempty"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

// JournalStore persists per-session command traces. Append is called from
// the session loop after every dispatch; implementations must tolerate
// being the slowest component in the loop (keep writes cheap or buffered).
type JournalStore interface {
	// Append adds a record to the session's journal, creating it if needed.
	Append(ctx context.Context, sessionID string, rec Record) error

	// Load returns the full journal for a session in append order.
	// Returns ErrSessionNotFound if the session has no journal.
	Load(ctx context.Context, sessionID string) ([]Record, error)

	// Delete removes a session's journal. Deleting a missing journal is not
	// an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all sessions with a journal.
	List(ctx context.Context) ([]string, error)
}
