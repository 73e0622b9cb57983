// Package dispatch parses command lines and routes them through a
// session's command registry.
package dispatch

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/probelab/tether/internal/telemetry"
	"github.com/probelab/tether/pkg/command"
)

// Dispatcher resolves and executes command lines against a command
// context. It is stateless apart from its logger and metrics, and must
// only be driven from the session's runner goroutine (registry reads are
// unsynchronized).
type Dispatcher struct {
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the dispatch logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithMetrics attaches dispatch telemetry.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d
}

// Dispatch tokenizes line, resolves it against the session registry,
// verifies the mode requirement, and invokes the handler. The handler's
// textual output is returned; handler failures come back wrapped in
// *HandlerError and never abort anything beyond this one command.
func (d *Dispatcher) Dispatch(ctx context.Context, session *command.Context, line string) (string, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return "", ErrEmptyCommand
	}

	resolved, err := session.Registry().Resolve(tokens)
	if err != nil {
		d.count("unknown")
		return "", err
	}
	name := strings.Join(resolved.Path, " ")

	if mode := session.Mode(); !resolved.Mode.Allows(mode) {
		d.count("mode_violation")
		return "", &ModeViolationError{Command: name, Need: resolved.Mode, Have: mode}
	}

	inv := command.NewInvocation(ctx, session, resolved.Args)
	start := time.Now()
	err = resolved.Handler.Execute(inv)
	if d.metrics != nil {
		d.metrics.ObserveHandler(name, time.Since(start))
	}

	if err != nil {
		d.count("handler_error")
		d.logger.Warn("command failed", "command", name, "err", err)
		return inv.Output(), &HandlerError{Command: resolved.Path, Err: err}
	}

	d.count("ok")
	d.logger.Debug("command dispatched", "command", name, "args", len(resolved.Args))
	return inv.Output(), nil
}

func (d *Dispatcher) count(outcome string) {
	if d.metrics != nil {
		d.metrics.CountDispatch(outcome)
	}
}
