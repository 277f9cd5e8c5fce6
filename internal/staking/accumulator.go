package staking

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// checkpointResult is the settled accumulator state for one operation. It is
// computed without touching the pool so that a failing operation leaves no trace.
type checkpointResult struct {
	// settled is the instant emission has been credited up to.
	settled        time.Time
	rewardPerToken sdkmath.Int
	owner          string
	position       Position
}

func (p *Pool) checkpoint(owner string, now time.Time) (checkpointResult, error) {
	rpt, settled, err := p.accrue(now)
	if err != nil {
		return checkpointResult{}, err
	}
	cp := checkpointResult{settled: settled, rewardPerToken: rpt, owner: owner}
	if owner == "" {
		return cp, nil
	}

	pos, ok := p.positions[owner]
	if !ok {
		cp.position = Position{
			Owner:              owner,
			Amount:             sdkmath.ZeroInt(),
			RewardPerTokenPaid: sdkmath.ZeroInt(),
			Rewards:            sdkmath.ZeroInt(),
		}
		return cp, nil
	}

	cp.position = *pos
	accrued, err := types.MulDiv(pos.Amount, rpt.Sub(pos.RewardPerTokenPaid), types.OneToken)
	if err != nil {
		return checkpointResult{}, err
	}
	if cp.position.Rewards, err = types.SafeAdd(pos.Rewards, accrued); err != nil {
		return checkpointResult{}, err
	}
	cp.position.RewardPerTokenPaid = rpt
	return cp, nil
}

func (p *Pool) commit(cp checkpointResult) {
	p.schedule.RewardPerTokenStored = cp.rewardPerToken
	p.schedule.LastUpdateTime = cp.settled
	if cp.owner == "" {
		return
	}
	pos := p.position(cp.owner)
	pos.RewardPerTokenPaid = cp.position.RewardPerTokenPaid
	pos.Rewards = cp.position.Rewards
}

func (p *Pool) rewardPerToken(now time.Time) (sdkmath.Int, error) {
	rpt, _, err := p.accrue(now)
	return rpt, err
}

// accrue returns the accumulator at now and the instant it is settled up to.
// Emission is credited in whole seconds; the sub-second remainder stays
// pending because the settled instant only advances by the seconds credited.
func (p *Pool) accrue(now time.Time) (sdkmath.Int, time.Time, error) {
	stored := p.schedule.RewardPerTokenStored
	last := p.schedule.LastUpdateTime
	if p.totalStaked.IsZero() {
		return stored, now, nil
	}

	applicable := now
	if p.schedule.PeriodFinish.Before(now) {
		applicable = p.schedule.PeriodFinish
	}
	elapsed := int64(applicable.Sub(last) / time.Second)
	if elapsed <= 0 {
		return stored, last, nil
	}

	emitted, err := types.SafeMul(sdkmath.NewInt(elapsed), p.schedule.RewardRate)
	if err != nil {
		return sdkmath.Int{}, time.Time{}, err
	}
	increment, err := types.MulDiv(emitted, types.OneToken, p.totalStaked)
	if err != nil {
		return sdkmath.Int{}, time.Time{}, err
	}
	rpt, err := types.SafeAdd(stored, increment)
	if err != nil {
		return sdkmath.Int{}, time.Time{}, err
	}
	return rpt, last.Add(time.Duration(elapsed) * time.Second), nil
}

// position returns the live position for owner, creating it if needed.
func (p *Pool) position(owner string) *Position {
	pos, ok := p.positions[owner]
	if !ok {
		pos = &Position{
			Owner:              owner,
			Amount:             sdkmath.ZeroInt(),
			RewardPerTokenPaid: sdkmath.ZeroInt(),
			Rewards:            sdkmath.ZeroInt(),
		}
		p.positions[owner] = pos
	}
	return pos
}
