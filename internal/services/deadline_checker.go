package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/metrics"
	"github.com/carbonpledge-labs/token-economy-engine/internal/utils/poller"
)

func (s *Service) StartDeadlineChecker(ctx context.Context) {
	deadlineCheckerPoller := poller.NewPoller(
		"deadline_checker",
		s.cfg.Poller.DeadlineCheckInterval,
		s.checkDeadlines,
	)
	go deadlineCheckerPoller.Start(ctx)
}

// checkDeadlines moves every active campaign past its deadline and below its
// goal to Failed.
func (s *Service) checkDeadlines(ctx context.Context) error {
	s.sweepDeadlines(ctx)
	return nil
}

func (s *Service) sweepDeadlines(ctx context.Context) []uint64 {
	failed := s.engine.CheckDeadlines(ctx)
	if len(failed) == 0 {
		return nil
	}

	metrics.AddFailedCampaigns(len(failed))
	log.Ctx(ctx).Info().
		Uints64("campaign_ids", failed).
		Msg("Campaigns failed after their deadline")
	return failed
}

// CheckDeadlinesOnce restores the engine, sweeps deadlines once and stores the
// outcome. Nothing else may be writing to the same database meanwhile.
func (s *Service) CheckDeadlinesOnce(ctx context.Context) ([]uint64, error) {
	if err := s.bootstrap(ctx); err != nil {
		return nil, err
	}
	failed := s.sweepDeadlines(ctx)
	if err := s.Shutdown(ctx); err != nil {
		return nil, err
	}
	return failed, nil
}
