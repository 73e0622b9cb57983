package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunJournalStoreContract runs a suite of tests verifying that a
// JournalStore implementation adheres to the interface contract.
func RunJournalStoreContract(t *testing.T, store JournalStore) {
	ctx := context.Background()
	sessionID := "contract-session-" + time.Now().Format("20060102150405")

	t.Run("Append and Load", func(t *testing.T) {
		recs := []Record{
			{Seq: 0, Line: "reset halt", Output: "target halted", At: time.Now().UTC()},
			{Seq: 1, Line: "bogus", Error: `unknown command: "bogus"`, At: time.Now().UTC()},
		}
		for _, rec := range recs {
			require.NoError(t, store.Append(ctx, sessionID, rec))
		}

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		require.Len(t, loaded, 2)
		assert.Equal(t, "reset halt", loaded[0].Line)
		assert.Equal(t, "target halted", loaded[0].Output)
		assert.Equal(t, 1, loaded[1].Seq)
		assert.NotEmpty(t, loaded[1].Error)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "missing-"+sessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Append(ctx, sessionID, Record{Seq: 2, Line: "halt"}))

		require.NoError(t, store.Delete(ctx, sessionID))

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		// Deleting again must be a no-op, not an error.
		assert.NoError(t, store.Delete(ctx, sessionID))
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Append(ctx, id1, Record{Line: "version"}))
		require.NoError(t, store.Append(ctx, id2, Record{Line: "version"}))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
