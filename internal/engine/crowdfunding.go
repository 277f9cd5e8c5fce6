package engine

import (
	"context"
	"strconv"
	"time"

	"github.com/carbonpledge-labs/token-economy-engine/internal/crowdfunding"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

func id(v uint64) string { return strconv.FormatUint(v, 10) }

func (e *Engine) CreateCampaign(ctx context.Context, caller string, req crowdfunding.CampaignRequest) (crowdfunding.Campaign, error) {
	now := e.begin()
	defer e.end()

	if err := checkCaller(caller); err != nil {
		return crowdfunding.Campaign{}, failed(ctx, "create campaign", err)
	}
	c, err := e.crowdfunding.CreateCampaign(caller, req, now)
	if err != nil {
		return crowdfunding.Campaign{}, failed(ctx, "create campaign", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeCampaignCreated,
		"campaignId", id(c.ID), "creator", c.Creator, "title", c.Title,
		"fundingGoal", c.FundingGoal.String(), "deadline", c.Deadline.UTC().Format(time.RFC3339)))
	return c, nil
}

func (e *Engine) AddRewardTier(ctx context.Context, caller string, campaignID uint64, req crowdfunding.TierRequest) (crowdfunding.RewardTier, error) {
	now := e.begin()
	defer e.end()

	tier, err := e.crowdfunding.AddRewardTier(campaignID, caller, req)
	if err != nil {
		return crowdfunding.RewardTier{}, failed(ctx, "add reward tier", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeRewardTierAdded,
		"campaignId", id(campaignID), "tierId", id(tier.ID), "minimumAmount", tier.MinimumAmount.String(),
		"tokenAmount", tier.TokenAmount.String(), "limit", id(tier.Limit), "tierType", tier.TierType.String()))
	return tier, nil
}

// Pledge escrows a backer's contribution. A pledge that reaches the funding
// goal records the campaign's success in the same batch.
func (e *Engine) Pledge(ctx context.Context, caller string, campaignID uint64, req crowdfunding.PledgeRequest) (crowdfunding.Pledge, error) {
	now := e.begin()
	defer e.end()

	if err := checkCaller(caller); err != nil {
		return crowdfunding.Pledge{}, failed(ctx, "pledge", err)
	}
	before, err := e.crowdfunding.GetCampaign(campaignID)
	if err != nil {
		return crowdfunding.Pledge{}, failed(ctx, "pledge", err)
	}
	p, c, err := e.crowdfunding.Pledge(campaignID, caller, req, now)
	if err != nil {
		return crowdfunding.Pledge{}, failed(ctx, "pledge", err)
	}

	changes := []change{newChange(types.ChangePledgeMade,
		"campaignId", id(campaignID), "pledgeId", id(p.ID), "backer", p.Backer,
		"amount", p.Amount.String(), "rewardTierId", id(p.RewardTierID),
		"totalFunds", c.TotalFunds.String())}
	if before.Status != c.Status && c.Status == types.CampaignSuccessful {
		changes = append(changes, newChange(types.ChangeCampaignSuccessful,
			"campaignId", id(campaignID), "totalFunds", c.TotalFunds.String()))
	}
	e.record(ctx, caller, now, changes...)
	return p, nil
}

func (e *Engine) CancelCampaign(ctx context.Context, caller string, campaignID uint64) (crowdfunding.Campaign, error) {
	now := e.begin()
	defer e.end()

	c, err := e.crowdfunding.CancelCampaign(campaignID, caller)
	if err != nil {
		return crowdfunding.Campaign{}, failed(ctx, "cancel campaign", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeCampaignCanceled, "campaignId", id(campaignID)))
	return c, nil
}

func (e *Engine) ClaimFunds(ctx context.Context, caller string, campaignID uint64) (crowdfunding.ClaimResult, error) {
	now := e.begin()
	defer e.end()

	res, err := e.crowdfunding.ClaimFunds(campaignID, caller)
	if err != nil {
		return crowdfunding.ClaimResult{}, failed(ctx, "claim funds", err)
	}
	changes := []change{newChange(types.ChangeFundsClaimed,
		"campaignId", id(campaignID), "payout", res.Payout.String(), "fee", res.Fee.String(),
		"feeCollector", e.crowdfunding.FeeCollector())}
	for _, pledgeID := range res.Completed {
		changes = append(changes, newChange(types.ChangePledgeStatusUpdated,
			"pledgeId", id(pledgeID), "status", types.PledgeCompleted.String()))
	}
	e.record(ctx, caller, now, changes...)
	return res, nil
}

func (e *Engine) RequestRefund(ctx context.Context, caller string, pledgeID uint64) (crowdfunding.Pledge, error) {
	now := e.begin()
	defer e.end()

	p, err := e.crowdfunding.RequestRefund(pledgeID, caller)
	if err != nil {
		return crowdfunding.Pledge{}, failed(ctx, "request refund", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeRefundIssued,
		"campaignId", id(p.CampaignID), "pledgeId", id(p.ID), "backer", p.Backer, "amount", p.Amount.String()))
	return p, nil
}

func (e *Engine) UpdatePledgeStatus(ctx context.Context, caller string, pledgeID uint64, status types.PledgeStatus) (crowdfunding.Pledge, error) {
	now := e.begin()
	defer e.end()

	// a missing pledge is reported by the update itself
	before, _ := e.crowdfunding.GetPledge(pledgeID)
	p, err := e.crowdfunding.UpdatePledgeStatus(pledgeID, status, caller)
	if err != nil {
		return crowdfunding.Pledge{}, failed(ctx, "update pledge status", err)
	}
	if before.Status != p.Status {
		e.record(ctx, caller, now, newChange(types.ChangePledgeStatusUpdated,
			"pledgeId", id(pledgeID), "status", p.Status.String()))
	}
	return p, nil
}

func (e *Engine) ClaimPledgeReward(ctx context.Context, caller string, pledgeID uint64) (crowdfunding.Pledge, error) {
	now := e.begin()
	defer e.end()

	p, err := e.crowdfunding.ClaimPledgeReward(pledgeID, caller)
	if err != nil {
		return crowdfunding.Pledge{}, failed(ctx, "claim pledge reward", err)
	}
	e.record(ctx, caller, now,
		newChange(types.ChangePledgeRewardClaimed,
			"pledgeId", id(p.ID), "backer", p.Backer, "amount", p.RewardAmount.String()),
		newChange(types.ChangeTokensMinted,
			"to", p.Backer, "amount", p.RewardAmount.String(), "totalSupply", e.ledger.TotalSupply().String()),
	)
	return p, nil
}

// CheckDeadlines fails every active campaign whose deadline has passed and
// returns the ids it moved.
func (e *Engine) CheckDeadlines(ctx context.Context) []uint64 {
	now := e.begin()
	defer e.end()

	failedIDs := e.crowdfunding.CheckDeadlines(now)
	changes := make([]change, 0, len(failedIDs))
	for _, campaignID := range failedIDs {
		changes = append(changes, newChange(types.ChangeCampaignFailed, "campaignId", id(campaignID)))
	}
	e.record(ctx, "", now, changes...)
	return failedIDs
}

func (e *Engine) UpdatePlatformFee(ctx context.Context, caller string, bps uint32) error {
	now := e.begin()
	defer e.end()

	if err := e.crowdfunding.UpdatePlatformFee(bps, caller); err != nil {
		return failed(ctx, "update platform fee", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangePlatformFeeUpdated, "bps", strconv.FormatUint(uint64(bps), 10)))
	return nil
}

func (e *Engine) UpdateFeeCollector(ctx context.Context, caller, account string) error {
	now := e.begin()
	defer e.end()

	if err := e.crowdfunding.UpdateFeeCollector(account, caller); err != nil {
		return failed(ctx, "update fee collector", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeFeeCollectorUpdated, "feeCollector", account))
	return nil
}

func (e *Engine) GetCampaign(campaignID uint64) (crowdfunding.Campaign, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.crowdfunding.GetCampaign(campaignID)
}

func (e *Engine) GetCampaigns() []crowdfunding.Campaign {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.crowdfunding.GetCampaigns()
}

func (e *Engine) GetRewardTiers(campaignID uint64) ([]crowdfunding.RewardTier, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.crowdfunding.GetRewardTiers(campaignID)
}

func (e *Engine) GetPledge(pledgeID uint64) (crowdfunding.Pledge, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.crowdfunding.GetPledge(pledgeID)
}

func (e *Engine) GetCampaignPledges(campaignID uint64) ([]crowdfunding.Pledge, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.crowdfunding.GetCampaignPledges(campaignID)
}

func (e *Engine) GetBackerPledges(backer string) []crowdfunding.Pledge {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.crowdfunding.GetBackerPledges(backer)
}
