package types

// Enum values for Campaign Status
type CampaignStatus string

const (
	CampaignActive     CampaignStatus = "ACTIVE"
	CampaignSuccessful CampaignStatus = "SUCCESSFUL"
	CampaignFailed     CampaignStatus = "FAILED"
	CampaignCanceled   CampaignStatus = "CANCELED"
)

func (s CampaignStatus) String() string {
	return string(s)
}

// Enum values for Pledge Status
type PledgeStatus string

const (
	PledgePending   PledgeStatus = "PENDING"
	PledgeCompleted PledgeStatus = "COMPLETED"
	PledgeCancelled PledgeStatus = "CANCELLED"
)

func (s PledgeStatus) String() string {
	return string(s)
}

func (s PledgeStatus) IsValid() bool {
	switch s {
	case PledgePending, PledgeCompleted, PledgeCancelled:
		return true
	default:
		return false
	}
}

// TierType selects how a reward tier prices the tokens paid to a backer.
type TierType string

const (
	// TierFixed pays the tier's token amount regardless of the pledge size.
	TierFixed TierType = "FIXED"
	// TierDynamic scales the token amount by pledge / minimum amount.
	TierDynamic TierType = "DYNAMIC"
)

func (t TierType) String() string {
	return string(t)
}

func (t TierType) IsValid() bool {
	return t == TierFixed || t == TierDynamic
}

// QualifiedStatesForPledge returns the campaign states that accept new pledges
func QualifiedStatesForPledge() []CampaignStatus {
	return []CampaignStatus{CampaignActive}
}

// QualifiedStatesForCancel returns the campaign states a campaign can be canceled from
func QualifiedStatesForCancel() []CampaignStatus {
	return []CampaignStatus{CampaignActive}
}

// QualifiedStatesForClaim returns the campaign states in which the creator can claim funds
func QualifiedStatesForClaim() []CampaignStatus {
	return []CampaignStatus{CampaignSuccessful}
}

// QualifiedStatesForRefund returns the campaign states in which backers can be refunded
func QualifiedStatesForRefund() []CampaignStatus {
	return []CampaignStatus{CampaignFailed, CampaignCanceled}
}

// QualifiedStatesForTierReward returns the campaign states in which pledge rewards are paid
func QualifiedStatesForTierReward() []CampaignStatus {
	return []CampaignStatus{CampaignSuccessful}
}

// pledgeStatusChangeMap maps the current status of a pledge to the statuses an
// administrator may move it to. Cancellation only happens through a refund.
var pledgeStatusChangeMap = map[PledgeStatus][]PledgeStatus{
	PledgePending:   {PledgeCompleted},
	PledgeCompleted: {PledgePending},
	PledgeCancelled: {},
}

func IsQualifiedPledgeStatusChange(current, next PledgeStatus) bool {
	qualified, ok := pledgeStatusChangeMap[current]
	if !ok {
		return false
	}
	for _, status := range qualified {
		if status == next {
			return true
		}
	}
	return false
}
