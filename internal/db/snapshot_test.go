//go:build integration

package db_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db"
	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
)

func TestSnapshots(t *testing.T) {
	ctx := t.Context()
	t.Cleanup(func() {
		resetDatabase(t)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := testDB.GetLatestSnapshot(ctx)
		require.Error(t, err)
		assert.True(t, db.IsNotFoundError(err))
	})
	t.Run("latest wins", func(t *testing.T) {
		for _, seq := range []uint64{10, 30, 20} {
			err := testDB.SaveSnapshot(ctx, &model.SnapshotDocument{
				LastSeq: seq,
				TakenAt: gofakeit.Int64(),
				Payload: gofakeit.Sentence(5),
			})
			require.NoError(t, err)
		}

		latest, err := testDB.GetLatestSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(30), latest.LastSeq)
	})
	t.Run("duplicate", func(t *testing.T) {
		err := testDB.SaveSnapshot(ctx, &model.SnapshotDocument{LastSeq: 10})
		require.Error(t, err)
		assert.True(t, db.IsDuplicateKeyError(err))
	})
	t.Run("prune", func(t *testing.T) {
		_, err := testDB.PruneSnapshots(ctx, 0)
		require.Error(t, err)

		deleted, err := testDB.PruneSnapshots(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		deleted, err = testDB.PruneSnapshots(ctx, 5)
		require.NoError(t, err)
		assert.Zero(t, deleted)

		latest, err := testDB.GetLatestSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(30), latest.LastSeq)
	})
}
