package queue

import (
	"context"
	"fmt"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/consumer"
	"github.com/carbonpledge-labs/token-economy-engine/internal/config"
	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/metrics"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

type QueueManager struct {
	publisher consumer.EventPublisher
	cfg       *config.QueueConfig
}

func NewQueueManager(cfg *config.QueueConfig, publisher consumer.EventPublisher) (*QueueManager, error) {
	if err := publisher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start publisher: %w", err)
	}
	return &QueueManager{
		publisher: publisher,
		cfg:       cfg,
	}, nil
}

// PublishChange publishes entry, retrying with backoff up to the configured attempts.
func (qm *QueueManager) PublishChange(ctx context.Context, entry types.ChangeLogEntry) error {
	ev := consumer.NewChangeEvent(entry)

	err := retry.Do(
		func() error {
			publishCtx, cancel := context.WithTimeout(ctx, qm.cfg.PublishTimeout)
			defer cancel()
			return qm.publisher.Publish(publishCtx, ev)
		},
		retry.Context(ctx),
		retry.Attempts(qm.cfg.MsgMaxRetryAttempts),
		retry.Delay(qm.cfg.RetryInterval),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Ctx(ctx).Warn().
				Uint("attempt", n+1).
				Uint("max_attempts", qm.cfg.MsgMaxRetryAttempts).
				Uint64("seq", entry.Seq).
				Err(err).
				Msg("Failed to publish change, retrying")
		}),
	)
	if err != nil {
		metrics.RecordQueueSendError()
		return fmt.Errorf("failed to publish change %d (%s): %w", entry.Seq, entry.Type, err)
	}
	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")
	if err := qm.publisher.Stop(); err != nil {
		log.Error().Err(err).Msg("Failed to stop publisher")
	}
}
