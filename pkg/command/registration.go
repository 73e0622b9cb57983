package command

import (
	"context"
	"fmt"
	"strings"
)

// Handler executes a resolved command. Long-running handlers should watch
// inv.Ctx(): in-flight cancellation is cooperative, never forced.
type Handler interface {
	Execute(inv *Invocation) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(inv *Invocation) error

// Execute implements Handler.
func (f HandlerFunc) Execute(inv *Invocation) error { return f(inv) }

// Registration is an immutable command descriptor. A registration may
// carry a handler, child commands, or both; a node with children and a
// handler accepts trailing tokens as arguments when no child matches.
type Registration struct {
	// Name is the command word, unique among its siblings.
	Name string

	// Handler executes the command. May be nil for pure group nodes.
	Handler Handler

	// Help is a one-line description shown by the help command.
	Help string

	// Usage describes the argument syntax, e.g. "sleep <ms>".
	Usage string

	// Mode is the mode requirement checked at dispatch time.
	Mode Mode

	// Children are sub-commands registered beneath this one.
	Children []Registration
}

// End is the zero Registration. Static command tables may terminate with
// it, mirroring the sentinel termination of C-style registration arrays;
// Register stops consuming the slice when it is reached.
var End Registration

// isEnd reports whether r is the table terminator.
func (r Registration) isEnd() bool {
	return r.Name == "" && r.Handler == nil && len(r.Children) == 0
}

// Invocation carries everything a handler needs: the session context,
// the argument tokens left over after resolution, and an output buffer.
type Invocation struct {
	session *Context
	args    []string
	ctx     context.Context
	out     strings.Builder
}

// NewInvocation builds an invocation for a handler call. The dispatcher
// is the usual caller; tests construct invocations directly.
func NewInvocation(ctx context.Context, session *Context, args []string) *Invocation {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Invocation{session: session, args: args, ctx: ctx}
}

// Ctx returns the cancellation context for this invocation.
func (inv *Invocation) Ctx() context.Context { return inv.ctx }

// Session returns the command context the invocation runs against.
func (inv *Invocation) Session() *Context { return inv.session }

// Args returns the argument tokens (never nil).
func (inv *Invocation) Args() []string {
	if inv.args == nil {
		return []string{}
	}
	return inv.args
}

// Print appends to the invocation's textual output.
func (inv *Invocation) Print(s string) { inv.out.WriteString(s) }

// Printf appends formatted text to the invocation's output, always
// terminated with a newline.
func (inv *Invocation) Printf(format string, args ...any) {
	inv.out.WriteString(strings.TrimRight(fmt.Sprintf(format, args...), "\n"))
	inv.out.WriteByte('\n')
}

// Output returns everything the handler printed.
func (inv *Invocation) Output() string { return inv.out.String() }
