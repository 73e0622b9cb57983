package ports

import "context"

// Interpreter evaluates scripted command bodies. The core treats it as an
// opaque capability: handlers hand it a script and receive textual output.
// Implementations typically wrap an embedded scripting runtime or a remote
// evaluation service.
type Interpreter interface {
	Evaluate(ctx context.Context, script string) (string, error)
}

// InterpreterFunc adapts a plain function to the Interpreter interface.
type InterpreterFunc func(ctx context.Context, script string) (string, error)

// Evaluate implements Interpreter.
func (f InterpreterFunc) Evaluate(ctx context.Context, script string) (string, error) {
	return f(ctx, script)
}
