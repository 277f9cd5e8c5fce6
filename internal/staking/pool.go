// Package staking implements a time-weighted staking pool with a reward-per-token
// accumulator: every staker earns rewardRate pro rata to their share of the pool
// without the pool ever iterating over stakers.
package staking

import (
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// Params are the admin-tunable withdrawal rules.
type Params struct {
	MinimumStakingPeriod  time.Duration `json:"minimum_staking_period"`
	EarlyWithdrawalFeeBps uint32        `json:"early_withdrawal_fee_bps"`
}

// Position is a staker's view of the pool.
type Position struct {
	Owner              string      `json:"owner"`
	Amount             sdkmath.Int `json:"amount"`
	RewardPerTokenPaid sdkmath.Int `json:"reward_per_token_paid"`
	Rewards            sdkmath.Int `json:"rewards"`
	StakeStartTime     time.Time   `json:"stake_start_time"`
}

// Schedule is the pool-wide reward emission state.
type Schedule struct {
	RewardRate           sdkmath.Int   `json:"reward_rate"`
	PeriodFinish         time.Time     `json:"period_finish"`
	RewardPerTokenStored sdkmath.Int   `json:"reward_per_token_stored"`
	LastUpdateTime       time.Time     `json:"last_update_time"`
	RewardsDuration      time.Duration `json:"rewards_duration"`
}

// WithdrawResult describes the outcome of a withdrawal.
type WithdrawResult struct {
	Amount   sdkmath.Int
	Fee      sdkmath.Int
	Received sdkmath.Int
}

type Pool struct {
	ledger        *ledger.Ledger
	poolAccount   string
	rewardAccount string

	params      Params
	schedule    Schedule
	totalStaked sdkmath.Int
	positions   map[string]*Position
}

// NewPool creates a pool that keeps staked principal in poolAccount and
// undistributed rewards in rewardAccount.
func NewPool(l *ledger.Ledger, poolAccount, rewardAccount string, params Params) (*Pool, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	return &Pool{
		ledger:        l,
		poolAccount:   poolAccount,
		rewardAccount: rewardAccount,
		params:        params,
		schedule: Schedule{
			RewardRate:           sdkmath.ZeroInt(),
			RewardPerTokenStored: sdkmath.ZeroInt(),
		},
		totalStaked: sdkmath.ZeroInt(),
		positions:   make(map[string]*Position),
	}, nil
}

func (p *Pool) Stake(owner string, amount sdkmath.Int, now time.Time) (Position, error) {
	if err := types.ValidateAmount(amount); err != nil {
		return Position{}, err
	}

	cp, err := p.checkpoint(owner, now)
	if err != nil {
		return Position{}, err
	}
	newAmount, err := types.SafeAdd(cp.position.Amount, amount)
	if err != nil {
		return Position{}, err
	}
	newTotal, err := types.SafeAdd(p.totalStaked, amount)
	if err != nil {
		return Position{}, err
	}

	if err := p.ledger.Transfer(owner, p.poolAccount, amount); err != nil {
		return Position{}, err
	}

	p.commit(cp)
	pos := p.position(owner)
	if pos.Amount.IsZero() {
		pos.StakeStartTime = now
	}
	pos.Amount = newAmount
	p.totalStaked = newTotal
	return *pos, nil
}

func (p *Pool) Withdraw(owner string, amount sdkmath.Int, now time.Time) (WithdrawResult, error) {
	if err := types.ValidateAmount(amount); err != nil {
		return WithdrawResult{}, err
	}

	cp, err := p.checkpoint(owner, now)
	if err != nil {
		return WithdrawResult{}, err
	}
	if amount.GT(cp.position.Amount) {
		return WithdrawResult{}, types.Errorf(types.InsufficientBalance,
			"%s has %s staked, cannot withdraw %s", owner, cp.position.Amount, amount)
	}

	fee := sdkmath.ZeroInt()
	if now.Sub(cp.position.StakeStartTime) < p.params.MinimumStakingPeriod {
		fee, err = types.ApplyBps(amount, p.params.EarlyWithdrawalFeeBps)
		if err != nil {
			return WithdrawResult{}, err
		}
	}
	received := amount.Sub(fee)

	// the fee never leaves the pool account
	if received.IsPositive() {
		if err := p.ledger.Transfer(p.poolAccount, owner, received); err != nil {
			return WithdrawResult{}, err
		}
	}

	p.commit(cp)
	pos := p.position(owner)
	pos.Amount = pos.Amount.Sub(amount)
	p.totalStaked = p.totalStaked.Sub(amount)

	return WithdrawResult{Amount: amount, Fee: fee, Received: received}, nil
}

// ClaimReward pays out everything owner has earned so far. Claiming with
// nothing earned is a no-op and returns zero.
func (p *Pool) ClaimReward(owner string, now time.Time) (sdkmath.Int, error) {
	cp, err := p.checkpoint(owner, now)
	if err != nil {
		return sdkmath.Int{}, err
	}
	reward := cp.position.Rewards
	if reward.IsPositive() {
		if err := p.ledger.Transfer(p.rewardAccount, owner, reward); err != nil {
			return sdkmath.Int{}, err
		}
	}

	p.commit(cp)
	if pos, ok := p.positions[owner]; ok {
		pos.Rewards = sdkmath.ZeroInt()
	}
	return reward, nil
}

// AddReward moves amount from distributor into the reward account and spreads
// it, together with whatever is left of the running period, over duration.
func (p *Pool) AddReward(distributor string, amount sdkmath.Int, duration time.Duration, now time.Time) (Schedule, error) {
	if err := types.ValidateAmount(amount); err != nil {
		return Schedule{}, err
	}
	seconds := int64(duration / time.Second)
	if seconds <= 0 {
		return Schedule{}, types.Errorf(types.InvalidDuration, "reward duration must be at least one second")
	}

	cp, err := p.checkpoint("", now)
	if err != nil {
		return Schedule{}, err
	}

	total := amount
	start := now
	if now.Before(p.schedule.PeriodFinish) {
		// the new period starts where the old one was settled so nothing is skipped
		start = cp.settled
		remaining := sdkmath.NewInt(int64(p.schedule.PeriodFinish.Sub(start) / time.Second))
		leftover, err := types.SafeMul(remaining, p.schedule.RewardRate)
		if err != nil {
			return Schedule{}, err
		}
		if total, err = types.SafeAdd(total, leftover); err != nil {
			return Schedule{}, err
		}
	}
	rate := total.QuoRaw(seconds)
	if rate.IsZero() {
		return Schedule{}, types.Errorf(types.InvalidAmount,
			"reward %s is too small to be spread over %s", amount, duration)
	}

	if err := p.ledger.Transfer(distributor, p.rewardAccount, amount); err != nil {
		return Schedule{}, err
	}

	p.commit(cp)
	p.schedule.RewardRate = rate
	p.schedule.LastUpdateTime = start
	p.schedule.PeriodFinish = start.Add(time.Duration(seconds) * time.Second)
	p.schedule.RewardsDuration = time.Duration(seconds) * time.Second
	return p.schedule, nil
}

func (p *Pool) UpdateParameters(params Params) error {
	if err := validateParams(params); err != nil {
		return err
	}
	p.params = params
	return nil
}

// Earned is what owner could claim at now.
func (p *Pool) Earned(owner string, now time.Time) (sdkmath.Int, error) {
	cp, err := p.checkpoint(owner, now)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return cp.position.Rewards, nil
}

// RewardPerToken is the accumulator value at now, scaled by 1e18.
func (p *Pool) RewardPerToken(now time.Time) (sdkmath.Int, error) {
	return p.rewardPerToken(now)
}

func (p *Pool) Position(owner string) (Position, bool) {
	pos, ok := p.positions[owner]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

func (p *Pool) TotalStaked() sdkmath.Int { return p.totalStaked }
func (p *Pool) Schedule() Schedule       { return p.schedule }
func (p *Pool) Params() Params           { return p.params }

// SumOfStakes adds up every position; it always equals TotalStaked.
func (p *Pool) SumOfStakes() sdkmath.Int {
	sum := sdkmath.ZeroInt()
	for _, pos := range p.positions {
		sum = sum.Add(pos.Amount)
	}
	return sum
}

func validateParams(params Params) error {
	if params.MinimumStakingPeriod < 0 {
		return types.Errorf(types.InvalidDuration, "minimum staking period must not be negative")
	}
	return types.ValidateFeeBps(params.EarlyWithdrawalFeeBps, types.BpsDenominator)
}
