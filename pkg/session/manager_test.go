package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probelab/tether"
	filejournal "github.com/probelab/tether/internal/journal/file"
	"github.com/probelab/tether/pkg/ports"
	"github.com/probelab/tether/pkg/runner"
)

func newManager(t *testing.T, opts ...Option) *Manager {
	t.Helper()
	m := NewManager(opts...)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = m.CloseAll(ctx)
	})
	return m
}

func plainFactory(id string) (*tether.Session, error) {
	return tether.New(id)
}

func TestManager_OpenAndGet(t *testing.T) {
	m := newManager(t)

	s, err := m.Open("bench-1", plainFactory)
	require.NoError(t, err)
	assert.Equal(t, "bench-1", s.ID())
	assert.Equal(t, runner.StateRunning, s.State())

	got, err := m.Get("bench-1")
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("bench-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_OpenDuplicate(t *testing.T) {
	m := newManager(t)

	_, err := m.Open("bench-1", plainFactory)
	require.NoError(t, err)
	_, err = m.Open("bench-1", plainFactory)
	assert.ErrorIs(t, err, ErrExists)
}

func TestManager_OpenFactoryFailure(t *testing.T) {
	m := newManager(t)

	boom := errors.New("probe not connected")
	_, err := m.Open("bench-1", func(id string) (*tether.Session, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, m.List())
}

func TestManager_Close(t *testing.T) {
	m := newManager(t)

	s, err := m.Open("bench-1", plainFactory)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Close(ctx, "bench-1"))
	assert.Equal(t, runner.StateStopped, s.State())

	_, err = m.Get("bench-1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Close(ctx, "bench-1"), ErrNotFound)
}

func TestManager_ListSorted(t *testing.T) {
	m := newManager(t)

	for _, id := range []string{"zeta", "alpha", "mid"} {
		_, err := m.Open(id, plainFactory)
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, m.List())
}

func TestManager_CloseAll(t *testing.T) {
	m := newManager(t)

	s1, err := m.Open("bench-1", plainFactory)
	require.NoError(t, err)
	s2, err := m.Open("bench-2", plainFactory)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	require.NoError(t, m.CloseAll(ctx))
	assert.Equal(t, runner.StateStopped, s1.State())
	assert.Equal(t, runner.StateStopped, s2.State())
	assert.Empty(t, m.List())
}

func TestManager_JournalOutlivesSession(t *testing.T) {
	store := filejournal.New(t.TempDir())
	m := newManager(t, WithJournal(store))

	s, err := m.Open("bench-1", func(id string) (*tether.Session, error) {
		return tether.New(id, tether.WithJournal(store))
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err = s.Execute(ctx, "echo recorded")
	require.NoError(t, err)
	require.NoError(t, m.Close(ctx, "bench-1"))

	recs, err := m.Journal(ctx, "bench-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "echo recorded", recs[0].Line)
	assert.Equal(t, "recorded\n", recs[0].Output)
}

func TestManager_JournalWithoutStore(t *testing.T) {
	m := newManager(t)
	_, err := m.Journal(context.Background(), "anything")
	assert.ErrorIs(t, err, ports.ErrSessionNotFound)
}
