package runner

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/probelab/tether/internal/logging"
	"github.com/probelab/tether/internal/telemetry"
	"github.com/probelab/tether/pkg/command"
	"github.com/probelab/tether/pkg/dispatch"
	"github.com/probelab/tether/pkg/ports"
)

// State is the runner lifecycle phase.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateDraining
	StateStopped
)

// String returns the lifecycle phase name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type submission struct {
	ctx    context.Context
	line   string
	future *Future
}

// Runner drives the session processing loop on a dedicated goroutine.
// It borrows the command context for the loop's lifetime; the context's
// owner must not tear it down before the runner reports Stopped.
type Runner struct {
	session    *command.Context
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
	metrics    *telemetry.Metrics
	journal    ports.JournalStore
	sessionID  string

	queueCap     int
	idleWait     time.Duration
	pollTimeout  time.Duration
	drainTimeout time.Duration

	// mu serializes enqueue against the Running->Draining transition so
	// no submission can slip in behind the drain sweep. Sends under the
	// read lock are always non-blocking.
	mu    sync.RWMutex
	queue chan *submission
	wake  chan struct{}
	state     atomic.Int32
	done      chan struct{}
	closeDone sync.Once

	seq     int
	stopErr atomic.Value // error
}

// New creates a runner in StateIdle, borrowing session for the lifetime
// of the loop.
func New(session *command.Context, opts ...Option) *Runner {
	r := &Runner{
		session:      session,
		queueCap:     64,
		idleWait:     50 * time.Millisecond,
		pollTimeout:  100 * time.Millisecond,
		drainTimeout: 2 * time.Second,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	if r.dispatcher == nil {
		r.dispatcher = dispatch.New(dispatch.WithLogger(r.logger), dispatch.WithMetrics(r.metrics))
	}
	r.queue = make(chan *submission, r.queueCap)
	return r
}

// State returns the current lifecycle phase.
func (r *Runner) State() State { return State(r.state.Load()) }

// Done is closed when the runner reaches Stopped.
func (r *Runner) Done() <-chan struct{} { return r.done }

// Err returns the fatal error that stopped the loop, or nil after a
// clean shutdown.
func (r *Runner) Err() error {
	if err, ok := r.stopErr.Load().(error); ok {
		return err
	}
	return nil
}

// Start moves the runner from Idle to Running and launches the loop
// goroutine.
func (r *Runner) Start() error {
	if !r.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyStarted
	}
	r.logger.Info("session loop starting", "queue_capacity", r.queueCap)
	go r.loop()
	return nil
}

// Submit queues a command line with the fail-fast backpressure policy:
// a full queue returns ErrQueueFull immediately. The returned Future is
// resolved once the loop has dispatched (or rejected) the command.
func (r *Runner) Submit(ctx context.Context, line string) (*Future, error) {
	sub := &submission{ctx: orBackground(ctx), line: line, future: newFuture()}
	if err := r.enqueue(sub); err != nil {
		return nil, err
	}
	return sub.future, nil
}

// SubmitWait queues a command line, blocking while the queue is full
// until ctx is cancelled or the session shuts down.
func (r *Runner) SubmitWait(ctx context.Context, line string) (*Future, error) {
	ctx = orBackground(ctx)
	sub := &submission{ctx: ctx, line: line, future: newFuture()}
	for {
		err := r.enqueue(sub)
		if err != ErrQueueFull {
			if err != nil {
				return nil, err
			}
			return sub.future, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-r.done:
			return nil, dispatch.ErrShuttingDown
		case <-time.After(5 * time.Millisecond):
		}
	}
}

// enqueue performs a non-blocking send under the read lock so the drain
// transition (which holds the write lock) can never race a submission.
func (r *Runner) enqueue(sub *submission) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.State() != StateRunning {
		return dispatch.ErrShuttingDown
	}
	select {
	case r.queue <- sub:
		r.reportDepth()
		return nil
	default:
		return ErrQueueFull
	}
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// Shutdown requests a cooperative stop and waits for the loop to reach
// Stopped, bounded by ctx and the configured drain timeout.
func (r *Runner) Shutdown(ctx context.Context) error {
	// A runner that never started has nothing to drain.
	if r.state.CompareAndSwap(int32(StateIdle), int32(StateStopped)) {
		r.closeDone.Do(func() { close(r.done) })
		return nil
	}

	r.session.RequestShutdown()
	select {
	case r.wake <- struct{}{}:
	default:
	}

	select {
	case <-r.done:
		return r.Err()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(r.drainTimeout + r.pollTimeout):
		return context.DeadlineExceeded
	}
}

func (r *Runner) loop() {
	for {
		if err := r.checkContext(); err != nil {
			r.fail(err)
			return
		}

		select {
		case sub := <-r.queue:
			r.reportDepth()
			r.serve(sub)
		case <-r.wake:
		case <-time.After(r.idleWait):
		}

		r.serviceEvents()

		if r.session.ShutdownRequested() {
			r.drain()
			return
		}
	}
}

// serve dispatches one queued command and resolves its future.
func (r *Runner) serve(sub *submission) {
	if err := sub.ctx.Err(); err != nil {
		sub.future.resolve(Result{Err: err})
		return
	}

	out, err := r.dispatcher.Dispatch(sub.ctx, r.session, sub.line)
	r.record(sub.line, out, err)
	sub.future.resolve(Result{Output: out, Err: err})
}

// serviceEvents drains pending hardware events with a bounded timeout.
// Backend failures are logged and skipped; they never stop the loop.
func (r *Runner) serviceEvents() {
	backend := r.session.Backend()
	if backend == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.pollTimeout)
	defer cancel()

	events, err := backend.PollEvents(ctx)
	if err != nil {
		r.logger.Warn("target event poll failed", "err", err)
		return
	}
	for _, ev := range events {
		if r.metrics != nil {
			r.metrics.CountTargetEvent(string(ev.Kind))
		}
		r.logger.Debug("target event", "target", ev.Target, "kind", ev.Kind, "detail", ev.Detail)
	}
}

// drain finishes the shutdown sequence: remaining queued commands are
// rejected, pending hardware events are flushed once, and the runner
// transitions to Stopped.
func (r *Runner) drain() {
	r.mu.Lock()
	r.state.Store(int32(StateDraining))
	r.mu.Unlock()
	r.logger.Info("session loop draining")

	for {
		select {
		case sub := <-r.queue:
			sub.future.resolve(Result{Err: dispatch.ErrShuttingDown})
		default:
			r.serviceEvents()
			r.stop(nil)
			return
		}
	}
}

// fail stops the loop on an unrecoverable error, broadcasting it to
// every pending submitter.
func (r *Runner) fail(cause error) {
	fatal := &FatalError{Err: cause}
	r.logger.Error("session loop failed", "err", cause)
	r.mu.Lock()
	r.state.Store(int32(StateDraining))
	r.mu.Unlock()
	for {
		select {
		case sub := <-r.queue:
			sub.future.resolve(Result{Err: fatal})
		default:
			r.stop(fatal)
			return
		}
	}
}

func (r *Runner) stop(err error) {
	if err != nil {
		r.stopErr.Store(err)
	}
	r.state.Store(int32(StateStopped))
	r.reportDepth()
	r.closeDone.Do(func() { close(r.done) })
	r.logger.Info("session loop stopped")
}

// checkContext guards against the context being torn down while the
// loop still runs. This is the only fatal condition the loop detects on
// its own.
func (r *Runner) checkContext() error {
	if r.session == nil || r.session.Registry() == nil {
		return ErrContextCorruption
	}
	return nil
}

func (r *Runner) record(line, out string, dispatchErr error) {
	if r.journal == nil {
		return
	}
	rec := ports.Record{
		Seq:    r.seq,
		Line:   line,
		Output: out,
		At:     time.Now().UTC(),
	}
	if dispatchErr != nil {
		rec.Error = dispatchErr.Error()
	}
	r.seq++

	ctx, cancel := context.WithTimeout(context.Background(), r.pollTimeout)
	defer cancel()
	if err := r.journal.Append(ctx, r.sessionID, rec); err != nil {
		r.logger.Warn("journal append failed", "session_id", r.sessionID, "err", err)
	}
}

func (r *Runner) reportDepth() {
	if r.metrics != nil {
		r.metrics.SetQueueDepth(len(r.queue))
	}
}
