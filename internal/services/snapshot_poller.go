package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db"
	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
	"github.com/carbonpledge-labs/token-economy-engine/internal/utils/poller"
)

func (s *Service) StartSnapshotPoller(ctx context.Context) {
	snapshotPoller := poller.NewPoller(
		"snapshot",
		s.cfg.Poller.SnapshotInterval,
		s.takeSnapshot,
	)
	go snapshotPoller.Start(ctx)
}

// takeSnapshot stores the engine state unless nothing changed since the last
// snapshot, then prunes old snapshots.
func (s *Service) takeSnapshot(ctx context.Context) error {
	// flush first so the stored change log is never behind the snapshot
	if err := s.flushChanges(ctx); err != nil {
		return err
	}

	s.snapshotMu.Lock()
	defer s.snapshotMu.Unlock()

	state := s.engine.Export()
	if s.snapshotTaken && state.LastSeq == s.lastSnapshotSeq {
		log.Ctx(ctx).Debug().Uint64("last_seq", state.LastSeq).Msg("No changes since last snapshot")
		return nil
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	err = s.db.SaveSnapshot(ctx, &model.SnapshotDocument{
		LastSeq: state.LastSeq,
		TakenAt: state.TakenAt.UnixMilli(),
		Payload: string(payload),
	})
	if err != nil && !db.IsDuplicateKeyError(err) {
		return fmt.Errorf("failed to save snapshot %d: %w", state.LastSeq, err)
	}
	s.lastSnapshotSeq = state.LastSeq
	s.snapshotTaken = true

	pruned, err := s.db.PruneSnapshots(ctx, s.cfg.Poller.SnapshotsToKeep)
	if err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	log.Ctx(ctx).Info().
		Uint64("last_seq", state.LastSeq).
		Int("size_bytes", len(payload)).
		Int64("pruned", pruned).
		Msg("Snapshot stored")
	return nil
}
