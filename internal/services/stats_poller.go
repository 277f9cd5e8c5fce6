package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/internal/db/model"
	"github.com/carbonpledge-labs/token-economy-engine/internal/engine"
	"github.com/carbonpledge-labs/token-economy-engine/internal/observability/metrics"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
	"github.com/carbonpledge-labs/token-economy-engine/internal/utils/poller"
)

// StartStatsPoller starts the stats polling service
func (s *Service) StartStatsPoller(ctx context.Context) {
	statsPoller := poller.NewPoller(
		"stats",
		s.cfg.Poller.StatsInterval,
		s.calculateAndUpdateStats,
	)
	go statsPoller.Start(ctx)
}

// calculateAndUpdateStats records economy gauges, checks the engine
// invariants and stores the overall stats document.
func (s *Service) calculateAndUpdateStats(ctx context.Context) error {
	log := log.Ctx(ctx)

	if err := s.engine.CheckInvariants(); err != nil {
		metrics.IncInvariantViolation()
		log.Error().Err(err).Msg("Engine invariant violated")
	}

	stats := s.engine.Stats()
	recordStatsMetrics(stats)

	if err := s.db.UpsertOverallStats(ctx, overallStatsDocument(stats)); err != nil {
		return fmt.Errorf("failed to upsert overall stats: %w", err)
	}

	log.Debug().
		Str("total_supply", stats.TotalSupply.String()).
		Str("total_staked", stats.TotalStaked.String()).
		Uint64("last_seq", stats.LastSeq).
		Msg("Updated overall stats")
	return nil
}

func recordStatsMetrics(stats engine.Stats) {
	metrics.RecordTokenAmount("supply", types.ToTokensFloat(stats.TotalSupply))
	metrics.RecordTokenAmount("staked", types.ToTokensFloat(stats.TotalStaked))
	metrics.RecordTokenAmount("escrow", types.ToTokensFloat(stats.EscrowedFunds))
	metrics.RecordTokenAmount("reward_pool", types.ToTokensFloat(stats.RewardPool))

	for _, status := range []types.CampaignStatus{
		types.CampaignActive,
		types.CampaignSuccessful,
		types.CampaignFailed,
		types.CampaignCanceled,
	} {
		metrics.RecordCampaigns(status.String(), stats.Campaigns[status])
	}
	metrics.RecordEmissions(stats.TotalEmissionsTracked, stats.TotalEmissionsOffset)
}

func overallStatsDocument(stats engine.Stats) *model.OverallStatsDocument {
	campaigns := make(map[string]int, len(stats.Campaigns))
	for status, count := range stats.Campaigns {
		campaigns[status.String()] = count
	}
	return &model.OverallStatsDocument{
		TotalSupply:           stats.TotalSupply.String(),
		MaxSupply:             stats.MaxSupply.String(),
		TotalStaked:           stats.TotalStaked.String(),
		RewardPool:            stats.RewardPool.String(),
		EscrowedFunds:         stats.EscrowedFunds.String(),
		Accounts:              stats.Accounts,
		Campaigns:             campaigns,
		Pledges:               stats.Pledges,
		OffsetProjects:        stats.OffsetProjects,
		Offsets:               stats.Offsets,
		VerifiedOffsets:       stats.VerifiedOffsets,
		TotalEmissionsTracked: stats.TotalEmissionsTracked,
		TotalEmissionsOffset:  stats.TotalEmissionsOffset,
		LastSeq:               stats.LastSeq,
	}
}
