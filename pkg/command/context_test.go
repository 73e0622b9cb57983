package command

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/tether/pkg/ports"
)

type staticBackend struct {
	ref ports.TargetRef
}

func (b *staticBackend) PollEvents(ctx context.Context) ([]ports.HardwareEvent, error) {
	return nil, nil
}

func (b *staticBackend) CurrentTarget() (ports.TargetRef, bool) {
	return b.ref, b.ref.Name != ""
}

// exec resolves and runs a builtin directly, without the dispatcher.
func exec(t *testing.T, c *Context, tokens ...string) (string, error) {
	t.Helper()
	res, err := c.Registry().Resolve(tokens)
	require.NoError(t, err)
	inv := NewInvocation(context.Background(), c, res.Args)
	err = res.Handler.Execute(inv)
	return inv.Output(), err
}

func run(t *testing.T, c *Context, tokens ...string) string {
	t.Helper()
	res, err := c.Registry().Resolve(tokens)
	require.NoError(t, err)
	inv := NewInvocation(context.Background(), c, res.Args)
	require.NoError(t, res.Handler.Execute(inv))
	return inv.Output()
}

func TestNewContext_StartsInConfigMode(t *testing.T) {
	c := NewContext()
	assert.Equal(t, ModeConfig, c.Mode())
	assert.False(t, c.ShutdownRequested())
}

func TestContext_SetMode(t *testing.T) {
	c := NewContext()
	require.NoError(t, c.SetMode(ModeExec))
	assert.Equal(t, ModeExec, c.Mode())

	assert.Error(t, c.SetMode(ModeAny), "ModeAny is not a context state")
}

func TestContext_CurrentTargetWithoutBackend(t *testing.T) {
	c := NewContext()
	_, ok := c.CurrentTarget()
	assert.False(t, ok)
}

func TestBuiltin_Echo(t *testing.T) {
	c := NewContext()
	out := run(t, c, "echo", "hello", "target")
	assert.Equal(t, "hello target\n", out)
}

func TestBuiltin_HelpListsCommands(t *testing.T) {
	c := NewContext()
	out := run(t, c, "help")
	for _, name := range []string{"help", "echo", "init", "exit", "shutdown"} {
		assert.Contains(t, out, name)
	}
}

func TestBuiltin_HelpTopic(t *testing.T) {
	c := NewContext()
	out := run(t, c, "help", "sleep")
	assert.Contains(t, out, "sleep <ms>")

	_, err := exec(t, c, "help", "nosuch")
	assert.Error(t, err)
}

func TestBuiltin_InitSwitchesToExec(t *testing.T) {
	c := NewContext()
	run(t, c, "init")
	assert.Equal(t, ModeExec, c.Mode())
}

func TestBuiltin_ModeReportsCurrent(t *testing.T) {
	c := NewContext()
	assert.Equal(t, "config\n", run(t, c, "mode"))
	require.NoError(t, c.SetMode(ModeExec))
	assert.Equal(t, "exec\n", run(t, c, "mode"))
}

func TestBuiltin_ScriptDelegatesToInterpreter(t *testing.T) {
	interp := ports.InterpreterFunc(func(ctx context.Context, script string) (string, error) {
		if strings.Contains(script, "boom") {
			return "", fmt.Errorf("syntax error")
		}
		return "evaluated: " + script, nil
	})
	c := NewContext(WithInterpreter(interp))

	out := run(t, c, "script", "set", "x", "1")
	assert.Equal(t, "evaluated: set x 1\n", out)

	_, err := exec(t, c, "script", "boom")
	assert.ErrorContains(t, err, "syntax error")
}

func TestBuiltin_ScriptWithoutInterpreter(t *testing.T) {
	c := NewContext()
	_, err := exec(t, c, "script", "anything")
	assert.ErrorContains(t, err, "no interpreter")
}

func TestBuiltin_Target(t *testing.T) {
	c := NewContext(WithTargetBackend(&staticBackend{
		ref: ports.TargetRef{Name: "stm32f4.cpu", State: "halted"},
	}))
	out := run(t, c, "target")
	assert.Equal(t, "stm32f4.cpu (halted)\n", out)
}

func TestBuiltin_ExitRequestsShutdown(t *testing.T) {
	c := NewContext()
	run(t, c, "exit")
	assert.True(t, c.ShutdownRequested())

	c2 := NewContext()
	run(t, c2, "shutdown")
	assert.True(t, c2.ShutdownRequested())
}

func TestBuiltin_SleepRespectsCancellation(t *testing.T) {
	c := NewContext()
	res, err := c.Registry().Resolve([]string{"sleep", "10000"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inv := NewInvocation(ctx, c, res.Args)
	assert.ErrorIs(t, res.Handler.Execute(inv), context.Canceled)
}

func TestBuiltin_SleepRejectsBadArgs(t *testing.T) {
	c := NewContext()
	_, err := exec(t, c, "sleep", "soon")
	assert.Error(t, err)
	_, err = exec(t, c, "sleep")
	assert.Error(t, err)
}
