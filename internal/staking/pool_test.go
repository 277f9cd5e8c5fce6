package staking

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

const (
	poolAccount   = "engine:staking-pool"
	rewardAccount = "engine:staking-rewards"
	day           = 24 * time.Hour
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func setup(t *testing.T, params Params) (*ledger.Ledger, *Pool) {
	l, err := ledger.New(types.Tokens(1_000_000_000))
	require.NoError(t, err)
	for _, acc := range []string{"alice", "bob", "distributor"} {
		require.NoError(t, l.Mint(acc, types.Tokens(100_000)))
	}
	p, err := NewPool(l, poolAccount, rewardAccount, params)
	require.NoError(t, err)
	return l, p
}

// approxTokens asserts got is within 0.01 token of want whole tokens.
func approxTokens(t *testing.T, want int64, got sdkmath.Int) {
	t.Helper()
	assert.InDelta(t, float64(want), types.ToTokensFloat(got), 0.01)
}

func TestStake(t *testing.T) {
	l, p := setup(t, Params{})

	pos, err := p.Stake("alice", types.Tokens(1000), t0)
	require.NoError(t, err)
	assert.Equal(t, types.Tokens(1000), pos.Amount)
	assert.Equal(t, t0, pos.StakeStartTime)
	assert.Equal(t, types.Tokens(1000), p.TotalStaked())
	assert.Equal(t, types.Tokens(1000), l.BalanceOf(poolAccount))
	assert.Equal(t, types.Tokens(99_000), l.BalanceOf("alice"))

	// topping up keeps the original start time
	pos, err = p.Stake("alice", types.Tokens(500), t0.Add(day))
	require.NoError(t, err)
	assert.Equal(t, t0, pos.StakeStartTime)
	assert.Equal(t, types.Tokens(1500), pos.Amount)

	t.Run("invalid amount", func(t *testing.T) {
		_, err := p.Stake("alice", sdkmath.ZeroInt(), t0)
		assert.True(t, types.IsKind(err, types.InvalidAmount))
	})
	t.Run("insufficient balance leaves pool untouched", func(t *testing.T) {
		_, err := p.Stake("carol", types.Tokens(1), t0)
		assert.True(t, types.IsKind(err, types.InsufficientBalance))
		_, ok := p.Position("carol")
		assert.False(t, ok)
		assert.Equal(t, types.Tokens(1500), p.TotalStaked())
	})
}

func TestRewardAccrual(t *testing.T) {
	_, p := setup(t, Params{})

	_, err := p.Stake("alice", types.Tokens(1000), t0)
	require.NoError(t, err)
	sched, err := p.AddReward("distributor", types.Tokens(1000), 30*day, t0)
	require.NoError(t, err)
	assert.Equal(t, t0.Add(30*day), sched.PeriodFinish)

	earned, err := p.Earned("alice", t0.Add(15*day))
	require.NoError(t, err)
	approxTokens(t, 500, earned)

	// accrual stops at the end of the period
	earned, err = p.Earned("alice", t0.Add(45*day))
	require.NoError(t, err)
	approxTokens(t, 1000, earned)
}

func TestRewardsAreProportional(t *testing.T) {
	_, p := setup(t, Params{})

	_, err := p.Stake("alice", types.Tokens(1000), t0)
	require.NoError(t, err)
	_, err = p.Stake("bob", types.Tokens(2000), t0)
	require.NoError(t, err)
	_, err = p.AddReward("distributor", types.Tokens(3000), 10*day, t0)
	require.NoError(t, err)

	at := t0.Add(5 * day)
	a, err := p.Earned("alice", at)
	require.NoError(t, err)
	b, err := p.Earned("bob", at)
	require.NoError(t, err)
	approxTokens(t, 500, a)
	approxTokens(t, 1000, b)
	assert.InDelta(t, 2.0, types.ToTokensFloat(b)/types.ToTokensFloat(a), 1e-9)
}

func TestLateStakerEarnsOnlyFromEntry(t *testing.T) {
	_, p := setup(t, Params{})

	_, err := p.Stake("alice", types.Tokens(1000), t0)
	require.NoError(t, err)
	_, err = p.AddReward("distributor", types.Tokens(1000), 10*day, t0)
	require.NoError(t, err)
	_, err = p.Stake("bob", types.Tokens(1000), t0.Add(5*day))
	require.NoError(t, err)

	at := t0.Add(10 * day)
	a, err := p.Earned("alice", at)
	require.NoError(t, err)
	b, err := p.Earned("bob", at)
	require.NoError(t, err)
	approxTokens(t, 750, a)
	approxTokens(t, 250, b)
}

func TestClaimReward(t *testing.T) {
	l, p := setup(t, Params{})

	_, err := p.Stake("alice", types.Tokens(1000), t0)
	require.NoError(t, err)
	_, err = p.AddReward("distributor", types.Tokens(100), 10*day, t0)
	require.NoError(t, err)

	reward, err := p.ClaimReward("alice", t0.Add(20*day))
	require.NoError(t, err)
	approxTokens(t, 100, reward)
	assert.Equal(t, types.Tokens(99_000).Add(reward), l.BalanceOf("alice"))

	again, err := p.ClaimReward("alice", t0.Add(21*day))
	require.NoError(t, err)
	assert.True(t, again.IsZero())

	none, err := p.ClaimReward("nobody", t0)
	require.NoError(t, err)
	assert.True(t, none.IsZero())
	require.NoError(t, l.CheckConservation())
}

func TestAddRewardRollsOverRemainder(t *testing.T) {
	_, p := setup(t, Params{})

	_, err := p.Stake("alice", types.Tokens(1000), t0)
	require.NoError(t, err)
	_, err = p.AddReward("distributor", types.Tokens(1000), 10*day, t0)
	require.NoError(t, err)

	// half of the first reward is still unpaid and joins the second one
	sched, err := p.AddReward("distributor", types.Tokens(500), 10*day, t0.Add(5*day))
	require.NoError(t, err)
	expectedRate := types.Tokens(1000).QuoRaw(int64(10 * day / time.Second))
	assert.InDelta(t, types.ToTokensFloat(expectedRate), types.ToTokensFloat(sched.RewardRate), 1e-9)

	earned, err := p.Earned("alice", t0.Add(15*day))
	require.NoError(t, err)
	approxTokens(t, 1500, earned)
}

func TestSubSecondOperationsKeepAccruing(t *testing.T) {
	_, p := setup(t, Params{})

	_, err := p.Stake("alice", types.Tokens(1000), t0)
	require.NoError(t, err)
	_, err = p.AddReward("distributor", types.Tokens(1000), 1000*time.Second, t0)
	require.NoError(t, err)

	// bob's tiny stakes keep alice's share effectively at 100%
	now := t0
	for i := 0; i < 100; i++ {
		now = now.Add(600 * time.Millisecond)
		_, err = p.Stake("bob", sdkmath.NewInt(1), now)
		require.NoError(t, err)
	}

	earned, err := p.Earned("alice", t0.Add(60*time.Second))
	require.NoError(t, err)
	approxTokens(t, 60, earned)

	// nothing is lost once the period is over
	aliceEarned, err := p.Earned("alice", t0.Add(2000*time.Second))
	require.NoError(t, err)
	bobEarned, err := p.Earned("bob", t0.Add(2000*time.Second))
	require.NoError(t, err)
	approxTokens(t, 1000, aliceEarned.Add(bobEarned))
}

func TestAddRewardMidSecondRollsOverWholePeriod(t *testing.T) {
	_, p := setup(t, Params{})

	_, err := p.Stake("alice", types.Tokens(1000), t0)
	require.NoError(t, err)
	_, err = p.AddReward("distributor", types.Tokens(1000), 1000*time.Second, t0)
	require.NoError(t, err)

	sched, err := p.AddReward("distributor", types.Tokens(1000), 1000*time.Second, t0.Add(500*time.Second+700*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, t0.Add(500*time.Second), sched.LastUpdateTime)
	assert.Equal(t, t0.Add(1500*time.Second), sched.PeriodFinish)

	earned, err := p.Earned("alice", t0.Add(3000*time.Second))
	require.NoError(t, err)
	approxTokens(t, 2000, earned)
}

func TestAddRewardValidation(t *testing.T) {
	l, p := setup(t, Params{})

	_, err := p.AddReward("distributor", types.Tokens(10), 0, t0)
	assert.True(t, types.IsKind(err, types.InvalidDuration))

	_, err = p.AddReward("distributor", sdkmath.ZeroInt(), day, t0)
	assert.True(t, types.IsKind(err, types.InvalidAmount))

	// 1 wei over a day rounds down to a zero rate
	_, err = p.AddReward("distributor", sdkmath.OneInt(), day, t0)
	assert.True(t, types.IsKind(err, types.InvalidAmount))

	_, err = p.AddReward("carol", types.Tokens(10), day, t0)
	assert.True(t, types.IsKind(err, types.InsufficientBalance))
	assert.True(t, l.BalanceOf(rewardAccount).IsZero())
	assert.True(t, p.Schedule().RewardRate.IsZero())
}

func TestWithdraw(t *testing.T) {
	params := Params{MinimumStakingPeriod: 7 * day, EarlyWithdrawalFeeBps: 500}

	t.Run("early withdrawal pays fee", func(t *testing.T) {
		l, p := setup(t, params)
		_, err := p.Stake("alice", types.Tokens(1000), t0)
		require.NoError(t, err)

		res, err := p.Withdraw("alice", types.Tokens(1000), t0.Add(day))
		require.NoError(t, err)
		assert.Equal(t, types.Tokens(50), res.Fee)
		assert.Equal(t, types.Tokens(950), res.Received)
		assert.Equal(t, types.Tokens(99_950), l.BalanceOf("alice"))
		assert.Equal(t, types.Tokens(50), l.BalanceOf(poolAccount))
		assert.True(t, p.TotalStaked().IsZero())
	})
	t.Run("after minimum period no fee", func(t *testing.T) {
		l, p := setup(t, params)
		_, err := p.Stake("alice", types.Tokens(1000), t0)
		require.NoError(t, err)

		res, err := p.Withdraw("alice", types.Tokens(400), t0.Add(7*day))
		require.NoError(t, err)
		assert.True(t, res.Fee.IsZero())
		assert.Equal(t, types.Tokens(99_400), l.BalanceOf("alice"))
		assert.Equal(t, types.Tokens(600), p.TotalStaked())
	})
	t.Run("more than staked", func(t *testing.T) {
		_, p := setup(t, params)
		_, err := p.Stake("alice", types.Tokens(10), t0)
		require.NoError(t, err)
		_, err = p.Withdraw("alice", types.Tokens(11), t0)
		assert.True(t, types.IsKind(err, types.InsufficientBalance))
		_, err = p.Withdraw("bob", types.Tokens(1), t0)
		assert.True(t, types.IsKind(err, types.InsufficientBalance))
	})
	t.Run("full fee", func(t *testing.T) {
		l, p := setup(t, Params{MinimumStakingPeriod: day, EarlyWithdrawalFeeBps: 10_000})
		_, err := p.Stake("alice", types.Tokens(10), t0)
		require.NoError(t, err)
		res, err := p.Withdraw("alice", types.Tokens(10), t0)
		require.NoError(t, err)
		assert.True(t, res.Received.IsZero())
		assert.Equal(t, types.Tokens(10), l.BalanceOf(poolAccount))
	})
}

func TestUpdateParameters(t *testing.T) {
	_, p := setup(t, Params{})
	err := p.UpdateParameters(Params{EarlyWithdrawalFeeBps: 10_001})
	assert.True(t, types.IsKind(err, types.FeeTooHigh))

	require.NoError(t, p.UpdateParameters(Params{MinimumStakingPeriod: day, EarlyWithdrawalFeeBps: 100}))
	assert.Equal(t, uint32(100), p.Params().EarlyWithdrawalFeeBps)
}

func TestTotalStakedInvariant(t *testing.T) {
	_, p := setup(t, Params{MinimumStakingPeriod: day, EarlyWithdrawalFeeBps: 250})
	now := t0
	ops := []struct {
		owner    string
		stake    bool
		amountTk int64
	}{
		{"alice", true, 100}, {"bob", true, 300}, {"alice", false, 40},
		{"bob", true, 10}, {"bob", false, 310}, {"alice", true, 5},
	}
	for _, op := range ops {
		now = now.Add(time.Hour)
		var err error
		if op.stake {
			_, err = p.Stake(op.owner, types.Tokens(op.amountTk), now)
		} else {
			_, err = p.Withdraw(op.owner, types.Tokens(op.amountTk), now)
		}
		require.NoError(t, err)
		assert.True(t, p.SumOfStakes().Equal(p.TotalStaked()))
	}
	assert.Equal(t, types.Tokens(65), p.TotalStaked())
}

func TestExportImport(t *testing.T) {
	l, p := setup(t, Params{MinimumStakingPeriod: day, EarlyWithdrawalFeeBps: 100})
	_, err := p.Stake("alice", types.Tokens(1000), t0)
	require.NoError(t, err)
	_, err = p.AddReward("distributor", types.Tokens(1000), 10*day, t0)
	require.NoError(t, err)
	_, err = p.Stake("bob", types.Tokens(500), t0.Add(day))
	require.NoError(t, err)

	restored, err := Import(l, poolAccount, rewardAccount, p.Export())
	require.NoError(t, err)

	at := t0.Add(5 * day)
	want, err := p.Earned("alice", at)
	require.NoError(t, err)
	got, err := restored.Earned("alice", at)
	require.NoError(t, err)
	assert.True(t, want.Equal(got))

	broken := p.Export()
	broken.TotalStaked = types.Tokens(1)
	_, err = Import(l, poolAccount, rewardAccount, broken)
	assert.True(t, types.IsKind(err, types.InvalidState))
}
