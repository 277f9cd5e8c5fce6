package db

import (
	"context"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	// SaveChangeLogEntry returns DuplicateKeyError if entry.Seq is already stored.
	SaveChangeLogEntry(ctx context.Context, entry types.ChangeLogEntry) error
	// GetChangeLogEntries returns up to limit entries with seq > after in
	// ascending order. limit 0 means no limit.
	GetChangeLogEntries(ctx context.Context, after uint64, limit int64) ([]types.ChangeLogEntry, error)

	// GetLastProcessedSeq returns 0 if nothing was processed yet.
	GetLastProcessedSeq(ctx context.Context) (uint64, error)
	UpdateLastProcessedSeq(ctx context.Context, seq uint64) error

	SaveSnapshot(ctx context.Context, snapshot *model.SnapshotDocument) error
	// GetLatestSnapshot returns NotFoundError if no snapshot exists.
	GetLatestSnapshot(ctx context.Context) (*model.SnapshotDocument, error)
	// PruneSnapshots deletes all but the newest keep snapshots.
	PruneSnapshots(ctx context.Context, keep int64) (int64, error)

	UpsertOverallStats(ctx context.Context, stats *model.OverallStatsDocument) error
	GetOverallStats(ctx context.Context) (*model.OverallStatsDocument, error)
}
