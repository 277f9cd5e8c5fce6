// Package crowdfunding runs goal-based campaigns: backers pledge into escrow,
// a campaign that reaches its goal pays its creator minus the platform fee,
// and a campaign that fails or is canceled refunds its backers.
package crowdfunding

import (
	"sort"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
	"github.com/carbonpledge-labs/token-economy-engine/internal/utils"
)

type Market struct {
	ledger         *ledger.Ledger
	auth           types.Authorizer
	escrowAccount  string
	feeCollector   string
	platformFeeBps uint32

	campaigns         []*Campaign
	tiers             map[uint64][]*RewardTier
	pledges           []*Pledge
	pledgesByCampaign map[uint64][]uint64
	pledgesByBacker   map[string][]uint64
}

func NewMarket(
	l *ledger.Ledger, auth types.Authorizer, escrowAccount, feeCollector string, platformFeeBps uint32,
) (*Market, error) {
	if err := types.ValidateFeeBps(platformFeeBps, MaxPlatformFeeBps); err != nil {
		return nil, err
	}
	if err := types.ValidatePayoutAccount(feeCollector, "fee collector"); err != nil {
		return nil, err
	}
	return &Market{
		ledger:            l,
		auth:              auth,
		escrowAccount:     escrowAccount,
		feeCollector:      feeCollector,
		platformFeeBps:    platformFeeBps,
		tiers:             make(map[uint64][]*RewardTier),
		pledgesByCampaign: make(map[uint64][]uint64),
		pledgesByBacker:   make(map[string][]uint64),
	}, nil
}

func (m *Market) CreateCampaign(creator string, req CampaignRequest, now time.Time) (Campaign, error) {
	if creator == "" {
		return Campaign{}, types.Errorf(types.InvalidArgument, "creator must be set")
	}
	if req.FundingGoal.IsNil() || !req.FundingGoal.IsPositive() {
		return Campaign{}, types.Errorf(types.InvalidAmount, "funding goal must be positive")
	}
	if req.DurationDays < MinDurationDays || req.DurationDays > MaxDurationDays {
		return Campaign{}, types.Errorf(types.InvalidDuration,
			"campaign duration must be between %d and %d days, got %d", MinDurationDays, MaxDurationDays, req.DurationDays)
	}

	c := &Campaign{
		ID:          uint64(len(m.campaigns)) + 1,
		Creator:     creator,
		Title:       req.Title,
		Description: req.Description,
		FundingGoal: req.FundingGoal,
		Deadline:    now.Add(time.Duration(req.DurationDays) * 24 * time.Hour),
		TotalFunds:  sdkmath.ZeroInt(),
		Status:      types.CampaignActive,
		CreatedAt:   now,
	}
	m.campaigns = append(m.campaigns, c)
	return *c, nil
}

// AddRewardTier is restricted to the campaign creator and admins, and only
// while the campaign still accepts pledges.
func (m *Market) AddRewardTier(campaignID uint64, caller string, req TierRequest) (RewardTier, error) {
	c, err := m.campaign(campaignID)
	if err != nil {
		return RewardTier{}, err
	}
	if err := m.requireCreatorOrAdmin(c, caller); err != nil {
		return RewardTier{}, err
	}
	if !utils.Contains(types.QualifiedStatesForPledge(), c.Status) {
		return RewardTier{}, types.Errorf(types.InvalidState,
			"campaign %d is %s, tiers can only be added while active", campaignID, c.Status)
	}
	if req.MinimumAmount.IsNil() || !req.MinimumAmount.IsPositive() {
		return RewardTier{}, types.Errorf(types.InvalidAmount, "tier minimum amount must be positive")
	}
	tokenAmount := req.TokenAmount
	if tokenAmount.IsNil() {
		tokenAmount = sdkmath.ZeroInt()
	}
	if tokenAmount.IsNegative() {
		return RewardTier{}, types.Errorf(types.InvalidAmount, "tier token amount must not be negative")
	}
	tierType := req.TierType
	if tierType == "" {
		tierType = types.TierFixed
	}
	if !tierType.IsValid() {
		return RewardTier{}, types.Errorf(types.InvalidArgument, "unknown tier type %q", req.TierType)
	}

	tier := &RewardTier{
		ID:            uint64(len(m.tiers[campaignID])) + 1,
		CampaignID:    campaignID,
		Title:         req.Title,
		Description:   req.Description,
		MinimumAmount: req.MinimumAmount,
		TokenAmount:   tokenAmount,
		Limit:         req.Limit,
		TierType:      tierType,
	}
	m.tiers[campaignID] = append(m.tiers[campaignID], tier)
	return *tier, nil
}

// Pledge escrows req.Amount from backer. The returned campaign reflects the
// pledge, including a flip to Successful when the goal is reached.
func (m *Market) Pledge(campaignID uint64, backer string, req PledgeRequest, now time.Time) (Pledge, Campaign, error) {
	c, err := m.campaign(campaignID)
	if err != nil {
		return Pledge{}, Campaign{}, err
	}
	if err := types.ValidateAmount(req.Amount); err != nil {
		return Pledge{}, Campaign{}, err
	}
	if !utils.Contains(types.QualifiedStatesForPledge(), c.Status) {
		return Pledge{}, Campaign{}, types.Errorf(types.InvalidState,
			"campaign %d is %s and does not accept pledges", campaignID, c.Status)
	}
	if !now.Before(c.Deadline) {
		return Pledge{}, Campaign{}, types.Errorf(types.InvalidState, "campaign %d has passed its deadline", campaignID)
	}

	var tier *RewardTier
	rewardAmount := sdkmath.ZeroInt()
	if req.RewardTierID != 0 {
		if tier, err = m.tier(campaignID, req.RewardTierID); err != nil {
			return Pledge{}, Campaign{}, err
		}
		if req.Amount.LT(tier.MinimumAmount) {
			return Pledge{}, Campaign{}, types.Errorf(types.BelowMinimum,
				"pledge %s is below tier %d minimum %s", req.Amount, tier.ID, tier.MinimumAmount)
		}
		if tier.full() {
			return Pledge{}, Campaign{}, types.Errorf(types.LimitReached, "tier %d is fully claimed", tier.ID)
		}
		if rewardAmount, err = tier.entitlement(req.Amount); err != nil {
			return Pledge{}, Campaign{}, err
		}
	}
	totalFunds, err := types.SafeAdd(c.TotalFunds, req.Amount)
	if err != nil {
		return Pledge{}, Campaign{}, err
	}

	if err := m.ledger.Transfer(backer, m.escrowAccount, req.Amount); err != nil {
		return Pledge{}, Campaign{}, err
	}

	p := &Pledge{
		ID:           uint64(len(m.pledges)) + 1,
		CampaignID:   campaignID,
		Backer:       backer,
		Amount:       req.Amount,
		RewardTierID: req.RewardTierID,
		Name:         req.Name,
		Email:        req.Email,
		Comment:      req.Comment,
		IsAnonymous:  req.IsAnonymous,
		Status:       types.PledgePending,
		RewardAmount: rewardAmount,
		CreatedAt:    now,
	}
	m.pledges = append(m.pledges, p)
	m.pledgesByCampaign[campaignID] = append(m.pledgesByCampaign[campaignID], p.ID)
	m.pledgesByBacker[backer] = append(m.pledgesByBacker[backer], p.ID)

	if tier != nil {
		tier.Claimed++
	}
	c.TotalFunds = totalFunds
	c.NumberOfBackers++
	if c.TotalFunds.GTE(c.FundingGoal) {
		c.Status = types.CampaignSuccessful
	}
	return *p, *c, nil
}

func (m *Market) CancelCampaign(campaignID uint64, caller string) (Campaign, error) {
	c, err := m.campaign(campaignID)
	if err != nil {
		return Campaign{}, err
	}
	if err := m.requireCreatorOrAdmin(c, caller); err != nil {
		return Campaign{}, err
	}
	if !utils.Contains(types.QualifiedStatesForCancel(), c.Status) {
		return Campaign{}, types.Errorf(types.InvalidState, "campaign %d is %s and cannot be canceled", campaignID, c.Status)
	}
	c.Status = types.CampaignCanceled
	return *c, nil
}

// ClaimFunds pays a successful campaign out once: the platform fee goes to the
// fee collector and the rest to the creator.
func (m *Market) ClaimFunds(campaignID uint64, caller string) (ClaimResult, error) {
	c, err := m.campaign(campaignID)
	if err != nil {
		return ClaimResult{}, err
	}
	if err := m.requireCreatorOrAdmin(c, caller); err != nil {
		return ClaimResult{}, err
	}
	if !utils.Contains(types.QualifiedStatesForClaim(), c.Status) {
		return ClaimResult{}, types.Errorf(types.InvalidState, "campaign %d is %s and cannot be claimed", campaignID, c.Status)
	}
	if c.ClaimedByCreator {
		return ClaimResult{}, types.Errorf(types.InvalidState, "funds of campaign %d were already claimed", campaignID)
	}

	fee, err := types.ApplyBps(c.TotalFunds, m.platformFeeBps)
	if err != nil {
		return ClaimResult{}, err
	}
	payout := c.TotalFunds.Sub(fee)

	var moves []ledger.Movement
	if fee.IsPositive() {
		moves = append(moves, ledger.Movement{From: m.escrowAccount, To: m.feeCollector, Amount: fee})
	}
	if payout.IsPositive() {
		moves = append(moves, ledger.Movement{From: m.escrowAccount, To: c.Creator, Amount: payout})
	}
	if err := m.ledger.TransferMany(moves...); err != nil {
		return ClaimResult{}, err
	}

	c.ClaimedByCreator = true
	res := ClaimResult{CampaignID: campaignID, Fee: fee, Payout: payout}
	for _, id := range m.pledgesByCampaign[campaignID] {
		p := m.pledges[id-1]
		if p.Status == types.PledgePending {
			p.Status = types.PledgeCompleted
			res.Completed = append(res.Completed, id)
		}
	}
	return res, nil
}

// RequestRefund returns a pledge to its backer once the campaign has failed or
// been canceled. Tier claim counts are left as they are.
func (m *Market) RequestRefund(pledgeID uint64, caller string) (Pledge, error) {
	p, err := m.pledge(pledgeID)
	if err != nil {
		return Pledge{}, err
	}
	if p.Backer != caller {
		return Pledge{}, types.Errorf(types.NotAuthorized, "only the backer can request a refund of pledge %d", pledgeID)
	}
	c := m.campaigns[p.CampaignID-1]
	if !utils.Contains(types.QualifiedStatesForRefund(), c.Status) {
		return Pledge{}, types.Errorf(types.InvalidState,
			"campaign %d is %s, refunds are only available for failed or canceled campaigns", c.ID, c.Status)
	}
	if p.Status == types.PledgeCancelled {
		return Pledge{}, types.Errorf(types.InvalidState, "pledge %d was already refunded", pledgeID)
	}

	if err := m.ledger.Transfer(m.escrowAccount, p.Backer, p.Amount); err != nil {
		return Pledge{}, err
	}
	p.Status = types.PledgeCancelled
	return *p, nil
}

// UpdatePledgeStatus lets an admin toggle a pledge between Pending and
// Completed. Cancelled pledges are final.
func (m *Market) UpdatePledgeStatus(pledgeID uint64, status types.PledgeStatus, caller string) (Pledge, error) {
	if err := m.requireAdmin(caller); err != nil {
		return Pledge{}, err
	}
	p, err := m.pledge(pledgeID)
	if err != nil {
		return Pledge{}, err
	}
	if !status.IsValid() {
		return Pledge{}, types.Errorf(types.InvalidArgument, "unknown pledge status %q", status)
	}
	if p.Status == status {
		return *p, nil
	}
	if !types.IsQualifiedPledgeStatusChange(p.Status, status) {
		return Pledge{}, types.Errorf(types.InvalidState, "pledge %d cannot move from %s to %s", pledgeID, p.Status, status)
	}
	p.Status = status
	return *p, nil
}

// ClaimPledgeReward mints the tier entitlement of a pledge to its backer once
// the campaign has succeeded.
func (m *Market) ClaimPledgeReward(pledgeID uint64, caller string) (Pledge, error) {
	p, err := m.pledge(pledgeID)
	if err != nil {
		return Pledge{}, err
	}
	if p.Backer != caller {
		return Pledge{}, types.Errorf(types.NotAuthorized, "only the backer can claim the reward of pledge %d", pledgeID)
	}
	if p.RewardTierID == 0 || p.RewardAmount.IsZero() {
		return Pledge{}, types.Errorf(types.InvalidState, "pledge %d carries no token reward", pledgeID)
	}
	c := m.campaigns[p.CampaignID-1]
	if !utils.Contains(types.QualifiedStatesForTierReward(), c.Status) {
		return Pledge{}, types.Errorf(types.InvalidState, "campaign %d is %s, rewards are paid once it succeeds", c.ID, c.Status)
	}
	if p.Status == types.PledgeCancelled {
		return Pledge{}, types.Errorf(types.InvalidState, "pledge %d is cancelled", pledgeID)
	}
	if p.RewardClaimed {
		return Pledge{}, types.Errorf(types.InvalidState, "reward of pledge %d was already claimed", pledgeID)
	}

	if err := m.ledger.Mint(p.Backer, p.RewardAmount); err != nil {
		return Pledge{}, err
	}
	p.RewardClaimed = true
	return *p, nil
}

// CheckDeadlines fails every active campaign whose deadline is not after now
// and returns their ids in ascending order.
func (m *Market) CheckDeadlines(now time.Time) []uint64 {
	var failed []uint64
	for _, c := range m.campaigns {
		if c.Status == types.CampaignActive && !now.Before(c.Deadline) {
			c.Status = types.CampaignFailed
			failed = append(failed, c.ID)
		}
	}
	return failed
}

func (m *Market) UpdatePlatformFee(bps uint32, caller string) error {
	if err := m.requireAdmin(caller); err != nil {
		return err
	}
	if err := types.ValidateFeeBps(bps, MaxPlatformFeeBps); err != nil {
		return err
	}
	m.platformFeeBps = bps
	return nil
}

func (m *Market) UpdateFeeCollector(account, caller string) error {
	if err := m.requireAdmin(caller); err != nil {
		return err
	}
	if err := types.ValidatePayoutAccount(account, "fee collector"); err != nil {
		return err
	}
	m.feeCollector = account
	return nil
}

func (m *Market) PlatformFeeBps() uint32 { return m.platformFeeBps }
func (m *Market) FeeCollector() string   { return m.feeCollector }

func (m *Market) GetCampaign(id uint64) (Campaign, error) {
	c, err := m.campaign(id)
	if err != nil {
		return Campaign{}, err
	}
	return *c, nil
}

func (m *Market) GetCampaigns() []Campaign {
	out := make([]Campaign, 0, len(m.campaigns))
	for _, c := range m.campaigns {
		out = append(out, *c)
	}
	return out
}

func (m *Market) GetRewardTiers(campaignID uint64) ([]RewardTier, error) {
	if _, err := m.campaign(campaignID); err != nil {
		return nil, err
	}
	out := make([]RewardTier, 0, len(m.tiers[campaignID]))
	for _, t := range m.tiers[campaignID] {
		out = append(out, *t)
	}
	return out, nil
}

func (m *Market) GetPledge(id uint64) (Pledge, error) {
	p, err := m.pledge(id)
	if err != nil {
		return Pledge{}, err
	}
	return *p, nil
}

func (m *Market) GetCampaignPledges(campaignID uint64) ([]Pledge, error) {
	if _, err := m.campaign(campaignID); err != nil {
		return nil, err
	}
	return m.collect(m.pledgesByCampaign[campaignID]), nil
}

// GetBackerPledges is the pledge history of backer, oldest first.
func (m *Market) GetBackerPledges(backer string) []Pledge {
	return m.collect(m.pledgesByBacker[backer])
}

// EscrowedFunds sums the funds that are still held for campaigns: everything
// not yet claimed by a creator or refunded to a backer.
func (m *Market) EscrowedFunds() sdkmath.Int {
	total := sdkmath.ZeroInt()
	for _, p := range m.pledges {
		if p.Status == types.PledgeCancelled || m.campaigns[p.CampaignID-1].ClaimedByCreator {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}

func (m *Market) collect(ids []uint64) []Pledge {
	out := make([]Pledge, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.pledges[id-1])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *Market) campaign(id uint64) (*Campaign, error) {
	if id == 0 || id > uint64(len(m.campaigns)) {
		return nil, types.Errorf(types.NotFound, "campaign %d not found", id)
	}
	return m.campaigns[id-1], nil
}

func (m *Market) tier(campaignID, tierID uint64) (*RewardTier, error) {
	tiers := m.tiers[campaignID]
	if tierID == 0 || tierID > uint64(len(tiers)) {
		return nil, types.Errorf(types.NotFound, "reward tier %d of campaign %d not found", tierID, campaignID)
	}
	return tiers[tierID-1], nil
}

func (m *Market) pledge(id uint64) (*Pledge, error) {
	if id == 0 || id > uint64(len(m.pledges)) {
		return nil, types.Errorf(types.NotFound, "pledge %d not found", id)
	}
	return m.pledges[id-1], nil
}

func (m *Market) requireCreatorOrAdmin(c *Campaign, caller string) error {
	if caller == c.Creator || types.HasAnyRole(m.auth, caller, types.RoleAdmin) {
		return nil
	}
	return types.Errorf(types.NotAuthorized, "%s is neither the creator of campaign %d nor an admin", caller, c.ID)
}

func (m *Market) requireAdmin(caller string) error {
	if types.HasAnyRole(m.auth, caller, types.RoleAdmin) {
		return nil
	}
	return types.Errorf(types.NotAuthorized, "%s is not an admin", caller)
}
