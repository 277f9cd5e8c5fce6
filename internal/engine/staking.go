package engine

import (
	"context"
	"strconv"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/staking"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

func (e *Engine) Stake(ctx context.Context, caller string, amount sdkmath.Int) (staking.Position, error) {
	now := e.begin()
	defer e.end()

	if err := checkCaller(caller); err != nil {
		return staking.Position{}, failed(ctx, "stake", err)
	}
	pos, err := e.staking.Stake(caller, amount, now)
	if err != nil {
		return staking.Position{}, failed(ctx, "stake", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeStaked,
		"owner", caller, "amount", amount.String(), "position", pos.Amount.String(),
		"totalStaked", e.staking.TotalStaked().String()))
	return pos, nil
}

func (e *Engine) Withdraw(ctx context.Context, caller string, amount sdkmath.Int) (staking.WithdrawResult, error) {
	now := e.begin()
	defer e.end()

	if err := checkCaller(caller); err != nil {
		return staking.WithdrawResult{}, failed(ctx, "withdraw", err)
	}
	res, err := e.staking.Withdraw(caller, amount, now)
	if err != nil {
		return staking.WithdrawResult{}, failed(ctx, "withdraw", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeWithdrawn,
		"owner", caller, "amount", res.Amount.String(), "fee", res.Fee.String(),
		"received", res.Received.String(), "totalStaked", e.staking.TotalStaked().String()))
	return res, nil
}

// ClaimReward pays the caller's earned rewards. Nothing is recorded when
// there was nothing to pay.
func (e *Engine) ClaimReward(ctx context.Context, caller string) (sdkmath.Int, error) {
	now := e.begin()
	defer e.end()

	if err := checkCaller(caller); err != nil {
		return sdkmath.Int{}, failed(ctx, "claim reward", err)
	}
	reward, err := e.staking.ClaimReward(caller, now)
	if err != nil {
		return sdkmath.Int{}, failed(ctx, "claim reward", err)
	}
	if reward.IsPositive() {
		e.record(ctx, caller, now, newChange(types.ChangeRewardPaid,
			"owner", caller, "reward", reward.String()))
	}
	return reward, nil
}

// AddReward funds the reward pool from the caller. Requires the rewards
// distributor role.
func (e *Engine) AddReward(ctx context.Context, caller string, amount sdkmath.Int, duration time.Duration) (staking.Schedule, error) {
	now := e.begin()
	defer e.end()

	if err := e.requireRole(caller, types.RoleRewardsDistributor); err != nil {
		return staking.Schedule{}, failed(ctx, "add reward", err)
	}
	sched, err := e.staking.AddReward(caller, amount, duration, now)
	if err != nil {
		return staking.Schedule{}, failed(ctx, "add reward", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeRewardAdded,
		"amount", amount.String(), "rewardRate", sched.RewardRate.String(),
		"periodFinish", sched.PeriodFinish.UTC().Format(time.RFC3339),
		"durationSeconds", strconv.FormatInt(int64(sched.RewardsDuration/time.Second), 10)))
	return sched, nil
}

func (e *Engine) UpdateStakingParameters(ctx context.Context, caller string, params staking.Params) error {
	now := e.begin()
	defer e.end()

	if err := e.requireRole(caller, types.RoleAdmin); err != nil {
		return failed(ctx, "update staking parameters", err)
	}
	if err := e.staking.UpdateParameters(params); err != nil {
		return failed(ctx, "update staking parameters", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeStakingParamsUpdated,
		"minimumStakingPeriodSeconds", strconv.FormatInt(int64(params.MinimumStakingPeriod/time.Second), 10),
		"earlyWithdrawalFeeBps", strconv.FormatUint(uint64(params.EarlyWithdrawalFeeBps), 10)))
	return nil
}

// Earned reports what owner could claim right now.
func (e *Engine) Earned(owner string) (sdkmath.Int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.staking.Earned(owner, e.clock())
}

func (e *Engine) StakePosition(owner string) (staking.Position, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.staking.Position(owner)
}

func (e *Engine) TotalStaked() sdkmath.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.staking.TotalStaked()
}

func (e *Engine) RewardSchedule() staking.Schedule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.staking.Schedule()
}

func (e *Engine) StakingParameters() staking.Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.staking.Params()
}
