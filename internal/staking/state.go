package staking

import (
	"sort"

	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// State is the serialisable form of a Pool.
type State struct {
	Params      Params      `json:"params"`
	Schedule    Schedule    `json:"schedule"`
	TotalStaked sdkmath.Int `json:"total_staked"`
	Positions   []Position  `json:"positions"`
}

func (p *Pool) Export() State {
	positions := make([]Position, 0, len(p.positions))
	for _, pos := range p.positions {
		positions = append(positions, *pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Owner < positions[j].Owner })

	return State{
		Params:      p.params,
		Schedule:    p.schedule,
		TotalStaked: p.totalStaked,
		Positions:   positions,
	}
}

// Import rebuilds a pool on top of l from s.
func Import(l *ledger.Ledger, poolAccount, rewardAccount string, s State) (*Pool, error) {
	p, err := NewPool(l, poolAccount, rewardAccount, s.Params)
	if err != nil {
		return nil, err
	}
	p.schedule = s.Schedule
	if p.schedule.RewardRate.IsNil() {
		p.schedule.RewardRate = sdkmath.ZeroInt()
	}
	if p.schedule.RewardPerTokenStored.IsNil() {
		p.schedule.RewardPerTokenStored = sdkmath.ZeroInt()
	}

	for _, pos := range s.Positions {
		if pos.Owner == "" || pos.Amount.IsNil() || pos.Amount.IsNegative() {
			return nil, types.Errorf(types.InvalidArgument, "invalid staking position %q", pos.Owner)
		}
		pos := pos
		if pos.Rewards.IsNil() {
			pos.Rewards = sdkmath.ZeroInt()
		}
		if pos.RewardPerTokenPaid.IsNil() {
			pos.RewardPerTokenPaid = sdkmath.ZeroInt()
		}
		p.positions[pos.Owner] = &pos
	}

	if s.TotalStaked.IsNil() {
		p.totalStaked = sdkmath.ZeroInt()
	} else {
		p.totalStaked = s.TotalStaked
	}
	if !p.SumOfStakes().Equal(p.totalStaked) {
		return nil, types.Errorf(types.InvalidState,
			"total staked %s does not match sum of positions %s", p.totalStaked, p.SumOfStakes())
	}
	return p, nil
}
