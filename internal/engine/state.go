package engine

import (
	"context"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/carbonpledge-labs/token-economy-engine/internal/carbon"
	"github.com/carbonpledge-labs/token-economy-engine/internal/crowdfunding"
	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/staking"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// State is a consistent copy of the whole engine. LastSeq is the last change
// included in it.
type State struct {
	LastSeq      uint64             `json:"last_seq"`
	TakenAt      time.Time          `json:"taken_at"`
	Ledger       ledger.State       `json:"ledger"`
	Staking      staking.State      `json:"staking"`
	Crowdfunding crowdfunding.State `json:"crowdfunding"`
	Carbon       carbon.State       `json:"carbon"`
}

func (e *Engine) Export() State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return State{
		LastSeq:      e.nextSeq - 1,
		TakenAt:      e.clock(),
		Ledger:       e.ledger.Export(),
		Staking:      e.staking.Export(),
		Crowdfunding: e.crowdfunding.Export(),
		Carbon:       e.carbon.Export(),
	}
}

// Restore replaces the engine's contents with s. The change log restarts
// after s.LastSeq. Nothing changes if s is inconsistent.
func (e *Engine) Restore(ctx context.Context, s State) error {
	l, err := ledger.Import(s.Ledger)
	if err != nil {
		return err
	}
	pool, err := staking.Import(l, AccountStakingPool, AccountStakingRewards, s.Staking)
	if err != nil {
		return err
	}
	market, err := crowdfunding.Import(l, e.auth, AccountCrowdfundingEscrow, s.Crowdfunding)
	if err != nil {
		return err
	}
	offsets, err := carbon.Import(l, e.auth, AccountCarbonTreasury, s.Carbon)
	if err != nil {
		return err
	}
	if !l.BalanceOf(AccountStakingPool).GTE(pool.TotalStaked()) {
		return types.Errorf(types.InvalidState, "staking pool holds less than the total staked")
	}
	if !l.BalanceOf(AccountCrowdfundingEscrow).Equal(market.EscrowedFunds()) {
		return types.Errorf(types.InvalidState, "escrow balance does not match open pledges")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ledger = l
	e.staking = pool
	e.crowdfunding = market
	e.carbon = offsets
	e.changes = nil
	e.nextSeq = s.LastSeq + 1

	log.Ctx(ctx).Info().
		Uint64("last_seq", s.LastSeq).
		Time("taken_at", s.TakenAt).
		Msg("engine state restored")
	return nil
}

// Stats is a point-in-time summary of the economy.
type Stats struct {
	TotalSupply           sdkmath.Int
	MaxSupply             sdkmath.Int
	TotalMinted           sdkmath.Int
	TotalBurned           sdkmath.Int
	TotalStaked           sdkmath.Int
	RewardPool            sdkmath.Int
	EscrowedFunds         sdkmath.Int
	Accounts              int
	Campaigns             map[types.CampaignStatus]int
	Pledges               int
	OffsetProjects        int
	Offsets               int
	VerifiedOffsets       int
	TotalEmissionsTracked uint64
	TotalEmissionsOffset  uint64
	LastSeq               uint64
}

func (e *Engine) Stats() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Stats{
		TotalSupply:           e.ledger.TotalSupply(),
		MaxSupply:             e.ledger.MaxSupply(),
		TotalMinted:           e.ledger.TotalMinted(),
		TotalBurned:           e.ledger.TotalBurned(),
		TotalStaked:           e.staking.TotalStaked(),
		RewardPool:            e.ledger.BalanceOf(AccountStakingRewards),
		EscrowedFunds:         e.ledger.BalanceOf(AccountCrowdfundingEscrow),
		Accounts:              len(e.ledger.Accounts()),
		Campaigns:             make(map[types.CampaignStatus]int),
		OffsetProjects:        len(e.carbon.GetProjects()),
		TotalEmissionsTracked: e.carbon.TotalEmissionsTracked(),
		TotalEmissionsOffset:  e.carbon.TotalEmissionsOffset(),
		LastSeq:               e.nextSeq - 1,
	}
	campaigns := e.crowdfunding.GetCampaigns()
	for _, c := range campaigns {
		s.Campaigns[c.Status]++
		pledges, _ := e.crowdfunding.GetCampaignPledges(c.ID)
		s.Pledges += len(pledges)
	}
	for _, o := range e.carbon.Export().Offsets {
		s.Offsets++
		if o.Verified {
			s.VerifiedOffsets++
		}
	}
	return s
}

// CheckInvariants verifies value conservation and that the engine's system
// accounts cover what they are holding for others.
func (e *Engine) CheckInvariants() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if err := e.ledger.CheckConservation(); err != nil {
		return err
	}
	if !e.staking.SumOfStakes().Equal(e.staking.TotalStaked()) {
		return types.Errorf(types.InvalidState, "total staked does not match the sum of positions")
	}
	if e.ledger.BalanceOf(AccountStakingPool).LT(e.staking.TotalStaked()) {
		return types.Errorf(types.InvalidState, "staking pool holds less than the total staked")
	}
	if !e.ledger.BalanceOf(AccountCrowdfundingEscrow).Equal(e.crowdfunding.EscrowedFunds()) {
		return types.Errorf(types.InvalidState, "escrow balance does not match open pledges")
	}
	return nil
}
