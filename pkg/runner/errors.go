package runner

import (
	"errors"
	"fmt"
)

// ErrQueueFull is returned by Submit when the submission queue is at
// capacity and the fail-fast backpressure policy is in effect.
var ErrQueueFull = errors.New("submission queue full")

// ErrAlreadyStarted is returned by Start on a runner that has left Idle.
var ErrAlreadyStarted = errors.New("runner already started")

// ErrContextCorruption marks an unrecoverable command-context failure.
var ErrContextCorruption = errors.New("command context corrupted")

// FatalError stops the loop and is broadcast to all pending submitters
// before teardown.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal session error: %v", e.Err)
}

// Unwrap exposes the underlying cause.
func (e *FatalError) Unwrap() error { return e.Err }
