package services

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/internal/config"
	"github.com/carbonpledge-labs/token-economy-engine/internal/db"
	"github.com/carbonpledge-labs/token-economy-engine/internal/engine"
	"github.com/carbonpledge-labs/token-economy-engine/internal/queue"
)

// Service hosts the engine: it restores state on start-up, persists and
// publishes every change, and runs the periodic pollers.
type Service struct {
	cfg          *config.Config
	db           db.DbInterface
	engine       *engine.Engine
	queueManager *queue.QueueManager

	// changeSignal wakes the change processor; capacity 1 so Notify never blocks
	changeSignal chan struct{}

	processMu        sync.Mutex
	lastProcessedSeq uint64

	snapshotMu      sync.Mutex
	lastSnapshotSeq uint64
	snapshotTaken   bool
}

func NewService(
	cfg *config.Config,
	db db.DbInterface,
	eng *engine.Engine,
	qm *queue.QueueManager,
) *Service {
	return &Service{
		cfg:          cfg,
		db:           db,
		engine:       eng,
		queueManager: qm,
		changeSignal: make(chan struct{}, 1),
	}
}

// StartEngineSync restores the engine and starts all background workers. It
// returns once the engine is ready to accept operations.
func (s *Service) StartEngineSync(ctx context.Context) error {
	if err := s.bootstrap(ctx); err != nil {
		return err
	}
	s.engine.Subscribe(s)

	go s.StartChangeProcessor(ctx)
	s.StartDeadlineChecker(ctx)
	s.StartSnapshotPoller(ctx)
	s.StartStatsPoller(ctx)

	log.Ctx(ctx).Info().
		Uint64("last_seq", s.engine.LastSeq()).
		Msg("Engine sync started")
	return nil
}

// Shutdown flushes pending changes and stores a final snapshot.
func (s *Service) Shutdown(ctx context.Context) error {
	if err := s.flushChanges(ctx); err != nil {
		return err
	}
	return s.takeSnapshot(ctx)
}
