package db

import (
	"context"
	"time"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/metrics"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

type DbWithMetrics struct {
	db DbInterface
}

var _ DbInterface = (*DbWithMetrics)(nil)

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) SaveChangeLogEntry(ctx context.Context, entry types.ChangeLogEntry) error {
	return d.run("SaveChangeLogEntry", func() error {
		return d.db.SaveChangeLogEntry(ctx, entry)
	})
}

func (d *DbWithMetrics) GetChangeLogEntries(ctx context.Context, after uint64, limit int64) (result []types.ChangeLogEntry, err error) {
	//nolint:errcheck
	d.run("GetChangeLogEntries", func() error {
		result, err = d.db.GetChangeLogEntries(ctx, after, limit)
		return err
	})
	return
}

func (d *DbWithMetrics) GetLastProcessedSeq(ctx context.Context) (result uint64, err error) {
	//nolint:errcheck
	d.run("GetLastProcessedSeq", func() error {
		result, err = d.db.GetLastProcessedSeq(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) UpdateLastProcessedSeq(ctx context.Context, seq uint64) error {
	return d.run("UpdateLastProcessedSeq", func() error {
		return d.db.UpdateLastProcessedSeq(ctx, seq)
	})
}

func (d *DbWithMetrics) SaveSnapshot(ctx context.Context, snapshot *model.SnapshotDocument) error {
	return d.run("SaveSnapshot", func() error {
		return d.db.SaveSnapshot(ctx, snapshot)
	})
}

func (d *DbWithMetrics) GetLatestSnapshot(ctx context.Context) (result *model.SnapshotDocument, err error) {
	//nolint:errcheck
	d.run("GetLatestSnapshot", func() error {
		result, err = d.db.GetLatestSnapshot(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) PruneSnapshots(ctx context.Context, keep int64) (result int64, err error) {
	//nolint:errcheck
	d.run("PruneSnapshots", func() error {
		result, err = d.db.PruneSnapshots(ctx, keep)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertOverallStats(ctx context.Context, stats *model.OverallStatsDocument) error {
	return d.run("UpsertOverallStats", func() error {
		return d.db.UpsertOverallStats(ctx, stats)
	})
}

func (d *DbWithMetrics) GetOverallStats(ctx context.Context) (result *model.OverallStatsDocument, err error) {
	//nolint:errcheck
	d.run("GetOverallStats", func() error {
		result, err = d.db.GetOverallStats(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
