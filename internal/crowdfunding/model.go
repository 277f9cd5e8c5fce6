package crowdfunding

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

const (
	MinDurationDays = 1
	MaxDurationDays = 90
	// MaxPlatformFeeBps caps the share of raised funds kept by the platform.
	MaxPlatformFeeBps = 2000
)

type Campaign struct {
	ID               uint64               `json:"id"`
	Creator          string               `json:"creator"`
	Title            string               `json:"title"`
	Description      string               `json:"description"`
	FundingGoal      sdkmath.Int          `json:"funding_goal"`
	Deadline         time.Time            `json:"deadline"`
	TotalFunds       sdkmath.Int          `json:"total_funds"`
	NumberOfBackers  uint64               `json:"number_of_backers"`
	Status           types.CampaignStatus `json:"status"`
	ClaimedByCreator bool                 `json:"claimed_by_creator"`
	CreatedAt        time.Time            `json:"created_at"`
}

// RewardTier ids are scoped to their campaign and start at 1.
type RewardTier struct {
	ID            uint64         `json:"id"`
	CampaignID    uint64         `json:"campaign_id"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	MinimumAmount sdkmath.Int    `json:"minimum_amount"`
	TokenAmount   sdkmath.Int    `json:"token_amount"`
	Limit         uint64         `json:"limit"` // 0 = unlimited
	Claimed       uint64         `json:"claimed"`
	TierType      types.TierType `json:"tier_type"`
}

type Pledge struct {
	ID            uint64             `json:"id"`
	CampaignID    uint64             `json:"campaign_id"`
	Backer        string             `json:"backer"`
	Amount        sdkmath.Int        `json:"amount"`
	RewardTierID  uint64             `json:"reward_tier_id"` // 0 = none
	Name          string             `json:"name"`
	Email         string             `json:"email"`
	Comment       string             `json:"comment"`
	IsAnonymous   bool               `json:"is_anonymous"`
	Status        types.PledgeStatus `json:"status"`
	RewardAmount  sdkmath.Int        `json:"reward_amount"`
	RewardClaimed bool               `json:"reward_claimed"`
	CreatedAt     time.Time          `json:"created_at"`
}

// CampaignRequest carries the caller-supplied fields of a new campaign.
type CampaignRequest struct {
	Title        string
	Description  string
	FundingGoal  sdkmath.Int
	DurationDays uint32
}

type TierRequest struct {
	Title         string
	Description   string
	MinimumAmount sdkmath.Int
	TokenAmount   sdkmath.Int
	Limit         uint64
	TierType      types.TierType
}

type PledgeRequest struct {
	Amount       sdkmath.Int
	RewardTierID uint64
	Name         string
	Email        string
	Comment      string
	IsAnonymous  bool
}

// ClaimResult is the split of a successful campaign's funds.
type ClaimResult struct {
	CampaignID uint64
	Fee        sdkmath.Int
	Payout     sdkmath.Int
	// Completed lists the pledges moved from Pending to Completed.
	Completed []uint64
}

func (t *RewardTier) full() bool {
	return t.Limit != 0 && t.Claimed >= t.Limit
}

// entitlement is the number of engine tokens a pledge of amount earns in t.
func (t *RewardTier) entitlement(amount sdkmath.Int) (sdkmath.Int, error) {
	if t.TierType == types.TierDynamic {
		return types.MulDiv(t.TokenAmount, amount, t.MinimumAmount)
	}
	return t.TokenAmount, nil
}
