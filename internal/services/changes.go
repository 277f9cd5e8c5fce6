package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db"
	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/metrics"
	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/tracing"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

const (
	// changeProcessorFallbackInterval bounds how long a missed signal can delay processing
	changeProcessorFallbackInterval = 5 * time.Second
	changeProcessorRetryInterval    = 2 * time.Second
)

// Notify is called by the engine under its write lock, so it only wakes the
// processor.
func (s *Service) Notify(_ []types.ChangeLogEntry) {
	select {
	case s.changeSignal <- struct{}{}:
	default:
	}
}

// StartChangeProcessor persists and publishes engine changes until ctx is done.
func (s *Service) StartChangeProcessor(ctx context.Context) {
	ticker := time.NewTicker(changeProcessorFallbackInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Change processor stopped due to context cancellation")
			return
		case <-s.changeSignal:
		case <-ticker.C:
		}

		processCtx := tracing.InjectTraceID(ctx)
		if err := s.flushChanges(processCtx); err != nil {
			log.Ctx(processCtx).Error().Err(err).Msg("Failed to process changes")
			select {
			case <-ctx.Done():
				return
			case <-time.After(changeProcessorRetryInterval):
			}
			s.Notify(nil)
		}
	}
}

// flushChanges processes every change committed so far.
func (s *Service) flushChanges(ctx context.Context) error {
	s.processMu.Lock()
	defer s.processMu.Unlock()

	for {
		entries := s.engine.ChangesSince(s.lastProcessedSeq, s.cfg.Poller.ChangeBatchSize)
		if len(entries) == 0 {
			return nil
		}

		if first := entries[0].Seq; first > s.lastProcessedSeq+1 {
			missing := first - s.lastProcessedSeq - 1
			metrics.AddChangeLogGap(missing)
			log.Ctx(ctx).Error().
				Uint64("last_processed_seq", s.lastProcessedSeq).
				Uint64("next_available_seq", first).
				Uint64("missing", missing).
				Msg("Change log entries dropped by retention before they were processed")
		}

		for _, entry := range entries {
			if err := s.processChange(ctx, entry); err != nil {
				return err
			}
		}
	}
}

func (s *Service) processChange(ctx context.Context, entry types.ChangeLogEntry) (err error) {
	startTime := time.Now()
	defer func() {
		metrics.RecordChangeProcessingDuration(time.Since(startTime), entry.Type.String(), 0, err != nil)
	}()

	if err := s.db.SaveChangeLogEntry(ctx, entry); err != nil {
		// already stored by a run that stopped before recording its progress
		if !db.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to save change %d: %w", entry.Seq, err)
		}
		log.Ctx(ctx).Warn().Uint64("seq", entry.Seq).Msg("Change already stored, publishing again")
	}

	if err := s.queueManager.PublishChange(ctx, entry); err != nil {
		return err
	}

	if err := s.db.UpdateLastProcessedSeq(ctx, entry.Seq); err != nil {
		return fmt.Errorf("failed to update last processed seq to %d: %w", entry.Seq, err)
	}
	s.lastProcessedSeq = entry.Seq
	metrics.RecordLastProcessedSeq(entry.Seq)

	log.Ctx(ctx).Debug().
		Uint64("seq", entry.Seq).
		Stringer("type", entry.Type).
		Msg("Change processed")
	return nil
}
