//go:build integration

package db_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

func randomEntry(seq uint64) types.ChangeLogEntry {
	return types.ChangeLogEntry{
		Seq:       seq,
		Type:      types.ChangeTokensTransferred,
		Timestamp: time.UnixMilli(gofakeit.Int64() % 1e12).UTC(),
		Actor:     gofakeit.Username(),
		Attributes: map[string]string{
			"from":   gofakeit.Username(),
			"to":     gofakeit.Username(),
			"amount": gofakeit.Numerify("#########"),
		},
	}
}

func TestChangeLog(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("empty", func(t *testing.T) {
		entries, err := testDB.GetChangeLogEntries(ctx, 0, 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
	t.Run("save and read in order", func(t *testing.T) {
		var saved []types.ChangeLogEntry
		// insert out of order, reads must still come back sorted by seq
		for _, seq := range []uint64{3, 1, 2, 5, 4} {
			entry := randomEntry(seq)
			require.NoError(t, testDB.SaveChangeLogEntry(ctx, entry))
			saved = append(saved, entry)
		}

		entries, err := testDB.GetChangeLogEntries(ctx, 0, 0)
		require.NoError(t, err)
		require.Len(t, entries, 5)
		for i, entry := range entries {
			assert.Equal(t, uint64(i+1), entry.Seq)
		}
		assert.Equal(t, saved[0], entries[2])

		entries, err = testDB.GetChangeLogEntries(ctx, 2, 2)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, uint64(3), entries[0].Seq)
		assert.Equal(t, uint64(4), entries[1].Seq)
	})
	t.Run("duplicate", func(t *testing.T) {
		err := testDB.SaveChangeLogEntry(ctx, randomEntry(1))
		require.Error(t, err)
		assert.True(t, db.IsDuplicateKeyError(err))
	})
}
