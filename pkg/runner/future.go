package runner

import (
	"context"
	"sync"
)

// Result is the outcome of one dispatched command.
type Result struct {
	Output string
	Err    error
}

// Future is the submitter's handle on a queued command. It is resolved
// exactly once, when the command has been dispatched, rejected, or the
// session died.
type Future struct {
	once sync.Once
	done chan struct{}
	res  Result
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(res Result) {
	f.once.Do(func() {
		f.res = res
		close(f.done)
	})
}

// Done is closed when the future has been resolved.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the command has been processed or ctx is cancelled.
func (f *Future) Wait(ctx context.Context) (string, error) {
	select {
	case <-f.done:
		return f.res.Output, f.res.Err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Result returns the resolved result. It must only be called after Done
// is closed.
func (f *Future) Result() Result { return f.res }
