package tether

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/probelab/tether/internal/logging"
	"github.com/probelab/tether/internal/telemetry"
	"github.com/probelab/tether/pkg/command"
	"github.com/probelab/tether/pkg/ports"
	"github.com/probelab/tether/pkg/runner"
)

// Session is the high-level entry point: one debug session from creation
// to teardown. It wires a command context, registry, dispatcher, and
// session runner together behind a small surface.
type Session struct {
	id     string
	ctx    *command.Context
	runner *runner.Runner
	logger *slog.Logger
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	logger      *slog.Logger
	interp      ports.Interpreter
	backend     ports.TargetBackend
	journal     ports.JournalStore
	metrics     *telemetry.Metrics
	runnerOpts  []runner.Option
	commandSets []commandSet
}

type commandSet struct {
	prefix []string
	regs   []command.Registration
}

// WithLogger sets the structured logger for the session and its loop.
func WithLogger(logger *slog.Logger) Option {
	return func(c *sessionConfig) { c.logger = logger }
}

// WithInterpreter attaches the script interpreter capability.
func WithInterpreter(interp ports.Interpreter) Option {
	return func(c *sessionConfig) { c.interp = interp }
}

// WithTargetBackend attaches the hardware target backend polled by the
// session loop.
func WithTargetBackend(backend ports.TargetBackend) Option {
	return func(c *sessionConfig) { c.backend = backend }
}

// WithJournal records every dispatched command to the given store.
func WithJournal(store ports.JournalStore) Option {
	return func(c *sessionConfig) { c.journal = store }
}

// WithMetrics attaches prometheus telemetry to the dispatcher and loop.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *sessionConfig) { c.metrics = m }
}

// WithQueueCapacity bounds the submission queue.
func WithQueueCapacity(n int) Option {
	return func(c *sessionConfig) {
		c.runnerOpts = append(c.runnerOpts, runner.WithQueueCapacity(n))
	}
}

// WithPollTimeout bounds each target event poll.
func WithPollTimeout(d time.Duration) Option {
	return func(c *sessionConfig) {
		c.runnerOpts = append(c.runnerOpts, runner.WithPollTimeout(d))
	}
}

// WithDrainTimeout bounds the draining phase during shutdown.
func WithDrainTimeout(d time.Duration) Option {
	return func(c *sessionConfig) {
		c.runnerOpts = append(c.runnerOpts, runner.WithDrainTimeout(d))
	}
}

// WithCommands registers additional command trees beneath prefix at
// construction time (target-specific trees may still be registered later
// through Context().Registry() on the loop goroutine, or before Start).
func WithCommands(prefix []string, regs ...command.Registration) Option {
	return func(c *sessionConfig) {
		c.commandSets = append(c.commandSets, commandSet{prefix: prefix, regs: regs})
	}
}

// New creates a session with the built-in commands installed and any
// extra command sets registered. The session starts in config mode.
func New(id string, opts ...Option) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}

	cfg := &sessionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logging.NewNop()
	}
	logger := cfg.logger.With("session_id", id)

	cmdCtx := command.NewContext(
		command.WithInterpreter(cfg.interp),
		command.WithTargetBackend(cfg.backend),
		command.WithLogger(logger),
	)
	for _, set := range cfg.commandSets {
		if err := cmdCtx.Registry().Register(set.prefix, set.regs); err != nil {
			return nil, fmt.Errorf("registering commands: %w", err)
		}
	}

	runnerOpts := append([]runner.Option{
		runner.WithLogger(logger),
		runner.WithMetrics(cfg.metrics),
	}, cfg.runnerOpts...)
	if cfg.journal != nil {
		runnerOpts = append(runnerOpts, runner.WithJournal(cfg.journal, id))
	}

	return &Session{
		id:     id,
		ctx:    cmdCtx,
		runner: runner.New(cmdCtx, runnerOpts...),
		logger: logger,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Context returns the session's command context. Registry mutation after
// Start must happen on the loop goroutine (i.e. from a handler).
func (s *Session) Context() *command.Context { return s.ctx }

// Start launches the session processing loop.
func (s *Session) Start() error { return s.runner.Start() }

// State returns the loop lifecycle phase.
func (s *Session) State() runner.State { return s.runner.State() }

// Done is closed when the loop has stopped.
func (s *Session) Done() <-chan struct{} { return s.runner.Done() }

// Err returns the fatal error that stopped the loop, if any.
func (s *Session) Err() error { return s.runner.Err() }

// Submit queues a command line without blocking; a full queue fails with
// runner.ErrQueueFull.
func (s *Session) Submit(ctx context.Context, line string) (*runner.Future, error) {
	return s.runner.Submit(ctx, line)
}

// SubmitWait queues a command line, blocking under backpressure until
// ctx is cancelled.
func (s *Session) SubmitWait(ctx context.Context, line string) (*runner.Future, error) {
	return s.runner.SubmitWait(ctx, line)
}

// Execute submits a command line and waits for its result.
func (s *Session) Execute(ctx context.Context, line string) (string, error) {
	fut, err := s.runner.SubmitWait(ctx, line)
	if err != nil {
		return "", err
	}
	return fut.Wait(ctx)
}

// Shutdown requests a cooperative stop and waits for the loop to finish
// draining.
func (s *Session) Shutdown(ctx context.Context) error {
	return s.runner.Shutdown(ctx)
}
