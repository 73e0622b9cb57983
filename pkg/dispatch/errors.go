package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/probelab/tether/pkg/command"
)

// ErrEmptyCommand is returned when tokenization yields zero tokens.
var ErrEmptyCommand = errors.New("empty command")

// ErrShuttingDown is returned to submitters whose commands are rejected
// because the session is draining or stopped.
var ErrShuttingDown = errors.New("session shutting down")

// ModeViolationError reports a command dispatched in a mode its
// registration does not allow.
type ModeViolationError struct {
	Command string
	Need    command.Mode
	Have    command.Mode
}

func (e *ModeViolationError) Error() string {
	return fmt.Sprintf("command %q is not available in %s mode (requires %s)",
		e.Command, e.Have, e.Need)
}

// HandlerError wraps a failure produced by a command handler. The
// dispatcher never aborts on handler errors; the submitter decides
// whether to stop a batch.
type HandlerError struct {
	Command []string
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("command %q failed: %v", strings.Join(e.Command, " "), e.Err)
}

// Unwrap exposes the handler's underlying error.
func (e *HandlerError) Unwrap() error { return e.Err }
