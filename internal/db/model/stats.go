package model

const OverallStatsID = "overall_stats"

// OverallStatsDocument represents the overall economy statistics. Token
// amounts are decimal strings in base units.
type OverallStatsDocument struct {
	ID                    string         `bson:"_id"` // Always "overall_stats"
	TotalSupply           string         `bson:"total_supply"`
	MaxSupply             string         `bson:"max_supply"`
	TotalStaked           string         `bson:"total_staked"`
	RewardPool            string         `bson:"reward_pool"`
	EscrowedFunds         string         `bson:"escrowed_funds"`
	Accounts              int            `bson:"accounts"`
	Campaigns             map[string]int `bson:"campaigns"`
	Pledges               int            `bson:"pledges"`
	OffsetProjects        int            `bson:"offset_projects"`
	Offsets               int            `bson:"offsets"`
	VerifiedOffsets       int            `bson:"verified_offsets"`
	TotalEmissionsTracked uint64         `bson:"total_emissions_tracked"` // grams
	TotalEmissionsOffset  uint64         `bson:"total_emissions_offset"`  // tons
	LastSeq               uint64         `bson:"last_seq"`
	LastUpdated           int64          `bson:"last_updated"` // Unix timestamp of last update
}
