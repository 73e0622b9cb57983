package runner

import (
	"log/slog"
	"time"

	"github.com/probelab/tether/internal/telemetry"
	"github.com/probelab/tether/pkg/dispatch"
	"github.com/probelab/tether/pkg/ports"
)

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithDispatcher replaces the default dispatcher.
func WithDispatcher(d *dispatch.Dispatcher) Option {
	return func(r *Runner) { r.dispatcher = d }
}

// WithQueueCapacity bounds the submission queue (default 64). Capacity
// must be at least 1.
func WithQueueCapacity(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.queueCap = n
		}
	}
}

// WithJournal records every dispatched command to store under sessionID.
func WithJournal(store ports.JournalStore, sessionID string) Option {
	return func(r *Runner) {
		r.journal = store
		r.sessionID = sessionID
	}
}

// WithMetrics attaches process telemetry.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithIdleWait bounds how long one loop iteration waits for a queued
// command before servicing target events again (default 50ms).
func WithIdleWait(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.idleWait = d
		}
	}
}

// WithPollTimeout bounds each TargetBackend.PollEvents call
// (default 100ms).
func WithPollTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.pollTimeout = d
		}
	}
}

// WithDrainTimeout bounds the Draining phase during shutdown
// (default 2s).
func WithDrainTimeout(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.drainTimeout = d
		}
	}
}
