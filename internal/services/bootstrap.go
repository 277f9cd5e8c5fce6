package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db"
	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
	"github.com/carbonpledge-labs/token-economy-engine/internal/engine"
	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/metrics"
)

const (
	bootstrapMaxRetries    = 10
	bootstrapRetryInterval = time.Second
)

// bootstrap restores the latest snapshot (when enabled) and lines the change
// processor up with what is already stored.
func (s *Service) bootstrap(ctx context.Context) error {
	if s.cfg.Engine.RestoreFromSnapshot {
		if err := s.restoreLatestSnapshot(ctx); err != nil {
			return err
		}
	}

	stored, err := retry.DoWithData(
		func() (uint64, error) { return s.db.GetLastProcessedSeq(ctx) },
		s.bootstrapRetryOptions(ctx)...,
	)
	if err != nil {
		return fmt.Errorf("failed to get last processed seq: %w", err)
	}

	engineSeq := s.engine.LastSeq()
	if stored > engineSeq {
		return fmt.Errorf(
			"stored change log is ahead of the engine state (stored seq %d, engine seq %d): "+
				"changes after the latest snapshot cannot be recovered",
			stored, engineSeq,
		)
	}
	if stored < engineSeq {
		metrics.AddChangeLogGap(engineSeq - stored)
		log.Ctx(ctx).Warn().
			Uint64("stored_seq", stored).
			Uint64("engine_seq", engineSeq).
			Msg("Snapshot contains changes that were never stored, they will not be published")
	}

	s.lastProcessedSeq = engineSeq
	metrics.RecordLastProcessedSeq(engineSeq)
	return nil
}

func (s *Service) restoreLatestSnapshot(ctx context.Context) error {
	snapshot, err := retry.DoWithData(
		func() (*model.SnapshotDocument, error) { return s.db.GetLatestSnapshot(ctx) },
		append(s.bootstrapRetryOptions(ctx), retry.RetryIf(func(err error) bool {
			return !db.IsNotFoundError(err)
		}))...,
	)
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Ctx(ctx).Info().Msg("No snapshot found, starting with an empty economy")
			return nil
		}
		return fmt.Errorf("failed to load latest snapshot: %w", err)
	}

	var state engine.State
	if err := json.Unmarshal([]byte(snapshot.Payload), &state); err != nil {
		return fmt.Errorf("failed to decode snapshot %d: %w", snapshot.LastSeq, err)
	}
	if err := s.engine.Restore(ctx, state); err != nil {
		return fmt.Errorf("failed to restore snapshot %d: %w", snapshot.LastSeq, err)
	}

	s.lastSnapshotSeq = state.LastSeq
	s.snapshotTaken = true
	return nil
}

func (s *Service) bootstrapRetryOptions(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(bootstrapMaxRetries),
		retry.Delay(bootstrapRetryInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Uint("attempt", n+1).
				Uint("max_attempts", bootstrapMaxRetries).
				Err(err).
				Msg("Bootstrap step failed, retrying")
		}),
	}
}
