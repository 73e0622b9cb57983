package command

import (
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/probelab/tether/pkg/ports"
)

// Context is the per-session command state: the registry root, the
// interpreter capability, the target backend, and the current mode.
// A Context is created once per session and borrowed by the session
// runner for the lifetime of its loop. No handler executes outside a
// valid Context.
type Context struct {
	registry *Registry
	interp   ports.Interpreter
	backend  ports.TargetBackend
	logger   *slog.Logger

	mode     atomic.Uint32
	shutdown atomic.Bool
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithInterpreter attaches the script interpreter capability.
func WithInterpreter(interp ports.Interpreter) ContextOption {
	return func(c *Context) { c.interp = interp }
}

// WithTargetBackend attaches the hardware target backend.
func WithTargetBackend(backend ports.TargetBackend) ContextOption {
	return func(c *Context) { c.backend = backend }
}

// WithLogger sets the logger used by built-in commands.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *Context) { c.logger = logger }
}

// NewContext creates a session command context in ModeConfig with the
// built-in commands installed.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{registry: NewRegistry()}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c.mode.Store(uint32(ModeConfig))

	// Builtins are registered at construction; a failure here is a
	// programming error in the builtin table itself.
	if err := c.registry.Register(nil, builtins()); err != nil {
		panic("command: builtin registration failed: " + err.Error())
	}
	return c
}

// Registry returns the command registry root.
func (c *Context) Registry() *Registry { return c.registry }

// Interpreter returns the attached interpreter, or nil.
func (c *Context) Interpreter() ports.Interpreter { return c.interp }

// Mode returns the context's current mode.
func (c *Context) Mode() Mode { return Mode(c.mode.Load()) }

// SetMode switches the context mode. ModeAny is a registration
// requirement, not a context state, and is rejected.
func (c *Context) SetMode(m Mode) error {
	if m != ModeConfig && m != ModeExec {
		return errInvalidMode(m)
	}
	c.mode.Store(uint32(m))
	return nil
}

// CurrentTarget returns the target currently attached to the session's
// backend. The second return is false when no backend is configured or
// no target is attached.
func (c *Context) CurrentTarget() (ports.TargetRef, bool) {
	if c.backend == nil {
		return ports.TargetRef{}, false
	}
	return c.backend.CurrentTarget()
}

// Backend returns the attached target backend, or nil.
func (c *Context) Backend() ports.TargetBackend { return c.backend }

// Logger returns the context logger.
func (c *Context) Logger() *slog.Logger { return c.logger }

// RequestShutdown raises the session's shutdown flag. It is safe to call
// from any goroutine; the runner observes it at the next loop iteration.
func (c *Context) RequestShutdown() { c.shutdown.Store(true) }

// ShutdownRequested reports whether shutdown has been requested.
func (c *Context) ShutdownRequested() bool { return c.shutdown.Load() }

type errInvalidMode Mode

func (e errInvalidMode) Error() string {
	return "invalid context mode: " + Mode(e).String()
}
