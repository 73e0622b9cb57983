package command

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(inv *Invocation) error { return nil }

func tree() []Registration {
	return []Registration{
		{
			Name:    "flash",
			Handler: HandlerFunc(noop),
			Help:    "flash operations",
			Children: []Registration{
				{Name: "erase", Handler: HandlerFunc(noop), Help: "erase a bank"},
				{Name: "write", Handler: HandlerFunc(noop), Help: "write an image"},
				End,
			},
		},
		{
			Name: "transport",
			Children: []Registration{
				{Name: "select", Handler: HandlerFunc(noop)},
			},
		},
		End,
		// Anything after the terminator must be ignored.
		{Name: "ghost", Handler: HandlerFunc(noop)},
	}
}

func TestRegistry_ResolveLeaves(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(nil, tree()))

	for _, path := range [][]string{
		{"flash"},
		{"flash", "erase"},
		{"flash", "write"},
		{"transport", "select"},
	} {
		res, err := r.Resolve(path)
		require.NoError(t, err, "path %v", path)
		assert.Equal(t, path, res.Path)
		assert.NotNil(t, res.Handler)
		assert.Empty(t, res.Args)
	}
}

func TestRegistry_ResolveLongestMatchWins(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(nil, tree()))

	// "flash erase 0" resolves the child and leaves "0" as an argument.
	res, err := r.Resolve([]string{"flash", "erase", "0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"flash", "erase"}, res.Path)
	assert.Equal(t, []string{"0"}, res.Args)

	// "flash verify ..." has no matching child; the parent handler takes
	// the remaining tokens as arguments.
	res, err = r.Resolve([]string{"flash", "verify", "image.bin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"flash"}, res.Path)
	assert.Equal(t, []string{"verify", "image.bin"}, res.Args)
}

func TestRegistry_ResolveUnknown(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(nil, tree()))

	_, err := r.Resolve([]string{"bogus"})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	// A group node without a handler is not executable on its own.
	_, err = r.Resolve([]string{"transport"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRegistry_TerminatorStopsGhostEntries(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(nil, tree()))

	_, err := r.Resolve([]string{"ghost"})
	assert.ErrorIs(t, err, ErrUnknownCommand)
}

func TestRegistry_DuplicateNameLeavesTreeUnchanged(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(nil, tree()))

	err := r.Register(nil, []Registration{
		{Name: "itm", Handler: HandlerFunc(noop)},
		{Name: "flash", Handler: HandlerFunc(noop)},
	})
	require.ErrorIs(t, err, ErrDuplicateName)

	// The failed batch must not have registered its first entry either.
	_, err = r.Resolve([]string{"itm"})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	// And the original tree is intact.
	_, err = r.Resolve([]string{"flash", "erase"})
	assert.NoError(t, err)
}

func TestRegistry_DuplicateWithinBatch(t *testing.T) {
	r := NewRegistry()
	err := r.Register(nil, []Registration{
		{Name: "dap", Handler: HandlerFunc(noop)},
		{Name: "dap", Handler: HandlerFunc(noop)},
	})
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRegistry_RegisterUnderPrefix(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(nil, tree()))

	require.NoError(t, r.Register([]string{"flash"}, []Registration{
		{Name: "verify_bank", Handler: HandlerFunc(noop)},
	}))

	res, err := r.Resolve([]string{"flash", "verify_bank", "0"})
	require.NoError(t, err)
	assert.Equal(t, []string{"flash", "verify_bank"}, res.Path)
	assert.Equal(t, []string{"0"}, res.Args)

	err = r.Register([]string{"nonexistent"}, []Registration{
		{Name: "x", Handler: HandlerFunc(noop)},
	})
	assert.ErrorIs(t, err, ErrUnknownPrefix)
}

func TestRegistry_Unregister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(nil, tree()))

	require.NoError(t, r.Unregister([]string{"flash"}))

	_, err := r.Resolve([]string{"flash", "erase"})
	assert.ErrorIs(t, err, ErrUnknownCommand)

	err = r.Unregister([]string{"flash"})
	assert.ErrorIs(t, err, ErrUnknownPrefix)
}

func TestRegistry_InvalidRegistration(t *testing.T) {
	r := NewRegistry()

	err := r.Register(nil, []Registration{
		{Name: "broken"},
	})
	assert.ErrorIs(t, err, ErrInvalidRegistration)

	err = r.Register(nil, []Registration{
		{Handler: HandlerFunc(noop)},
	})
	assert.True(t, errors.Is(err, ErrInvalidRegistration), "nameless entry with handler is not a terminator")
}

func TestRegistry_WalkOrder(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(nil, tree()))

	var paths [][]string
	r.Walk(func(path []string, reg Registration) {
		paths = append(paths, path)
	})
	require.NotEmpty(t, paths)
	assert.Equal(t, []string{"flash"}, paths[0], "walk visits insertion order, parents first")
	assert.Equal(t, []string{"flash", "erase"}, paths[1])
}
