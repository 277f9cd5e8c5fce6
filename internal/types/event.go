package types

import (
	"strings"
	"time"
)

type ChangeType string

func (c ChangeType) String() string {
	return string(c)
}

// Domain is the subsystem prefix of the change type, e.g. "staking".
func (c ChangeType) Domain() string {
	domain, _, _ := strings.Cut(string(c), ".")
	return domain
}

// ChangeLogEntry is one committed state change. Seq is gapless and starts at 1.
type ChangeLogEntry struct {
	Seq        uint64            `json:"seq"`
	Type       ChangeType        `json:"type"`
	Timestamp  time.Time         `json:"timestamp"`
	Actor      string            `json:"actor"`
	Attributes map[string]string `json:"attributes"`
}

const (
	ChangeTokensMinted      ChangeType = "ledger.TokensMinted"
	ChangeTokensBurned      ChangeType = "ledger.TokensBurned"
	ChangeTokensTransferred ChangeType = "ledger.TokensTransferred"
)

const (
	ChangeStaked               ChangeType = "staking.Staked"
	ChangeWithdrawn            ChangeType = "staking.Withdrawn"
	ChangeRewardPaid           ChangeType = "staking.RewardPaid"
	ChangeRewardAdded          ChangeType = "staking.RewardAdded"
	ChangeStakingParamsUpdated ChangeType = "staking.ParametersUpdated"
)

const (
	ChangeCampaignCreated     ChangeType = "crowdfunding.CampaignCreated"
	ChangeRewardTierAdded     ChangeType = "crowdfunding.RewardTierAdded"
	ChangePledgeMade          ChangeType = "crowdfunding.PledgeMade"
	ChangeCampaignSuccessful  ChangeType = "crowdfunding.CampaignSuccessful"
	ChangeCampaignCanceled    ChangeType = "crowdfunding.CampaignCanceled"
	ChangeCampaignFailed      ChangeType = "crowdfunding.CampaignFailed"
	ChangeFundsClaimed        ChangeType = "crowdfunding.FundsClaimed"
	ChangeRefundIssued        ChangeType = "crowdfunding.RefundIssued"
	ChangePledgeStatusUpdated ChangeType = "crowdfunding.PledgeStatusUpdated"
	ChangePledgeRewardClaimed ChangeType = "crowdfunding.PledgeRewardClaimed"
	ChangePlatformFeeUpdated  ChangeType = "crowdfunding.PlatformFeeUpdated"
	ChangeFeeCollectorUpdated ChangeType = "crowdfunding.FeeCollectorUpdated"
)

const (
	ChangeOffsetProjectAdded       ChangeType = "carbon.OffsetProjectAdded"
	ChangeOffsetProjectUpdated     ChangeType = "carbon.OffsetProjectUpdated"
	ChangeOffsetCreated            ChangeType = "carbon.OffsetCreated"
	ChangeOffsetVerified           ChangeType = "carbon.OffsetVerified"
	ChangeOffsetPlatformFeeUpdated ChangeType = "carbon.PlatformFeeUpdated"
)
