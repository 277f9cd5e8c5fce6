package crowdfunding

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonpledge-labs/token-economy-engine/internal/auth"
	"github.com/carbonpledge-labs/token-economy-engine/internal/ledger"
	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

const (
	escrow    = "engine:crowdfunding-escrow"
	collector = "treasury"
	admin     = "root"
	day       = 24 * time.Hour
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, feeBps uint32) (*ledger.Ledger, *Market) {
	l, err := ledger.New(types.Tokens(1_000_000_000))
	require.NoError(t, err)
	for _, acc := range []string{"alice", "bob", "carol"} {
		require.NoError(t, l.Mint(acc, types.Tokens(10_000)))
	}
	a, err := auth.NewStaticAuthorizer(map[string][]string{"admin": {admin}})
	require.NoError(t, err)
	m, err := NewMarket(l, a, escrow, collector, feeBps)
	require.NoError(t, err)
	return l, m
}

func createCampaign(t *testing.T, m *Market, goal int64, days uint32) Campaign {
	c, err := m.CreateCampaign("creator", CampaignRequest{
		Title:        "Solar for schools",
		FundingGoal:  types.Tokens(goal),
		DurationDays: days,
	}, t0)
	require.NoError(t, err)
	return c
}

func pledge(amount int64) PledgeRequest {
	return PledgeRequest{Amount: types.Tokens(amount)}
}

func TestCreateCampaign(t *testing.T) {
	_, m := setup(t, 250)

	c := createCampaign(t, m, 1000, 30)
	assert.Equal(t, uint64(1), c.ID)
	assert.Equal(t, types.CampaignActive, c.Status)
	assert.Equal(t, t0.Add(30*day), c.Deadline)
	assert.True(t, c.TotalFunds.IsZero())

	tests := []struct {
		name string
		req  CampaignRequest
		kind types.ErrorCode
	}{
		{"zero goal", CampaignRequest{FundingGoal: sdkmath.ZeroInt(), DurationDays: 10}, types.InvalidAmount},
		{"nil goal", CampaignRequest{DurationDays: 10}, types.InvalidAmount},
		{"zero days", CampaignRequest{FundingGoal: types.Tokens(1), DurationDays: 0}, types.InvalidDuration},
		{"too long", CampaignRequest{FundingGoal: types.Tokens(1), DurationDays: 91}, types.InvalidDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.CreateCampaign("creator", tt.req, t0)
			assert.True(t, types.IsKind(err, tt.kind), "got %v", err)
		})
	}
	assert.Len(t, m.GetCampaigns(), 1)
}

func TestAddRewardTier(t *testing.T) {
	_, m := setup(t, 0)
	c := createCampaign(t, m, 1000, 30)

	tier, err := m.AddRewardTier(c.ID, "creator", TierRequest{MinimumAmount: types.Tokens(10), TokenAmount: types.Tokens(5)})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tier.ID)
	assert.Equal(t, types.TierFixed, tier.TierType)

	tier, err = m.AddRewardTier(c.ID, admin, TierRequest{MinimumAmount: types.Tokens(100), TierType: types.TierDynamic})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), tier.ID)

	_, err = m.AddRewardTier(c.ID, "alice", TierRequest{MinimumAmount: types.Tokens(1)})
	assert.True(t, types.IsKind(err, types.NotAuthorized))
	_, err = m.AddRewardTier(c.ID, "creator", TierRequest{MinimumAmount: sdkmath.ZeroInt()})
	assert.True(t, types.IsKind(err, types.InvalidAmount))
	_, err = m.AddRewardTier(99, "creator", TierRequest{MinimumAmount: types.Tokens(1)})
	assert.True(t, types.IsKind(err, types.NotFound))

	tiers, err := m.GetRewardTiers(c.ID)
	require.NoError(t, err)
	assert.Len(t, tiers, 2)
}

func TestPledge(t *testing.T) {
	l, m := setup(t, 0)
	c := createCampaign(t, m, 1000, 30)
	_, err := m.AddRewardTier(c.ID, "creator", TierRequest{MinimumAmount: types.Tokens(100), TokenAmount: types.Tokens(10), Limit: 1})
	require.NoError(t, err)

	p, updated, err := m.Pledge(c.ID, "alice", PledgeRequest{Amount: types.Tokens(150), RewardTierID: 1, Name: "Alice"}, t0)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), p.ID)
	assert.Equal(t, types.PledgePending, p.Status)
	assert.Equal(t, types.Tokens(10), p.RewardAmount)
	assert.Equal(t, types.Tokens(150), updated.TotalFunds)
	assert.Equal(t, uint64(1), updated.NumberOfBackers)
	assert.Equal(t, types.Tokens(150), l.BalanceOf(escrow))

	t.Run("below minimum", func(t *testing.T) {
		_, _, err := m.Pledge(c.ID, "bob", PledgeRequest{Amount: types.Tokens(99), RewardTierID: 1}, t0)
		assert.True(t, types.IsKind(err, types.BelowMinimum))
	})
	t.Run("limit reached", func(t *testing.T) {
		_, _, err := m.Pledge(c.ID, "bob", PledgeRequest{Amount: types.Tokens(100), RewardTierID: 1}, t0)
		assert.True(t, types.IsKind(err, types.LimitReached))
	})
	t.Run("unknown tier", func(t *testing.T) {
		_, _, err := m.Pledge(c.ID, "bob", PledgeRequest{Amount: types.Tokens(100), RewardTierID: 7}, t0)
		assert.True(t, types.IsKind(err, types.NotFound))
	})
	t.Run("unknown campaign", func(t *testing.T) {
		_, _, err := m.Pledge(42, "bob", pledge(1), t0)
		assert.True(t, types.IsKind(err, types.NotFound))
	})
	t.Run("past deadline", func(t *testing.T) {
		_, _, err := m.Pledge(c.ID, "bob", pledge(1), t0.Add(30*day))
		assert.True(t, types.IsKind(err, types.InvalidState))
	})
	t.Run("insufficient balance", func(t *testing.T) {
		_, _, err := m.Pledge(c.ID, "dave", pledge(1), t0)
		assert.True(t, types.IsKind(err, types.InsufficientBalance))
	})

	got, err := m.GetCampaign(c.ID)
	require.NoError(t, err)
	assert.Equal(t, types.Tokens(150), got.TotalFunds)
	assert.Len(t, m.GetBackerPledges("alice"), 1)
	assert.Empty(t, m.GetBackerPledges("bob"))
}

func TestCampaignReachesGoal(t *testing.T) {
	_, m := setup(t, 0)
	c := createCampaign(t, m, 1000, 30)

	_, updated, err := m.Pledge(c.ID, "alice", pledge(600), t0)
	require.NoError(t, err)
	assert.Equal(t, types.CampaignActive, updated.Status)

	_, updated, err = m.Pledge(c.ID, "bob", pledge(400), t0.Add(day))
	require.NoError(t, err)
	assert.Equal(t, types.CampaignSuccessful, updated.Status)

	_, _, err = m.Pledge(c.ID, "carol", pledge(1), t0.Add(day))
	assert.True(t, types.IsKind(err, types.InvalidState))
}

func TestClaimFunds(t *testing.T) {
	l, m := setup(t, 250)
	c := createCampaign(t, m, 1000, 30)
	_, _, err := m.Pledge(c.ID, "alice", pledge(600), t0)
	require.NoError(t, err)

	_, err = m.ClaimFunds(c.ID, "creator")
	assert.True(t, types.IsKind(err, types.InvalidState), "active campaign cannot be claimed")

	_, _, err = m.Pledge(c.ID, "bob", pledge(400), t0)
	require.NoError(t, err)

	_, err = m.ClaimFunds(c.ID, "alice")
	assert.True(t, types.IsKind(err, types.NotAuthorized))

	res, err := m.ClaimFunds(c.ID, "creator")
	require.NoError(t, err)
	assert.Equal(t, types.Tokens(25), res.Fee)
	assert.Equal(t, types.Tokens(975), res.Payout)
	assert.Equal(t, []uint64{1, 2}, res.Completed)
	assert.Equal(t, types.Tokens(25), l.BalanceOf(collector))
	assert.Equal(t, types.Tokens(975), l.BalanceOf("creator"))
	assert.True(t, l.BalanceOf(escrow).IsZero())
	assert.True(t, m.EscrowedFunds().IsZero())

	_, err = m.ClaimFunds(c.ID, admin)
	assert.True(t, types.IsKind(err, types.InvalidState), "second claim must fail")

	pledges, err := m.GetCampaignPledges(c.ID)
	require.NoError(t, err)
	for _, p := range pledges {
		assert.Equal(t, types.PledgeCompleted, p.Status)
	}
	require.NoError(t, l.CheckConservation())
}

func TestRefunds(t *testing.T) {
	l, m := setup(t, 0)
	c := createCampaign(t, m, 1000, 10)
	_, _, err := m.Pledge(c.ID, "alice", pledge(300), t0)
	require.NoError(t, err)
	_, _, err = m.Pledge(c.ID, "bob", pledge(200), t0)
	require.NoError(t, err)

	_, err = m.RequestRefund(1, "alice")
	assert.True(t, types.IsKind(err, types.InvalidState), "active campaign cannot refund")

	assert.Empty(t, m.CheckDeadlines(t0.Add(9*day)))
	assert.Equal(t, []uint64{c.ID}, m.CheckDeadlines(t0.Add(10*day)))
	assert.Empty(t, m.CheckDeadlines(t0.Add(11*day)), "sweep is idempotent")

	_, err = m.RequestRefund(1, "bob")
	assert.True(t, types.IsKind(err, types.NotAuthorized))

	p, err := m.RequestRefund(1, "alice")
	require.NoError(t, err)
	assert.Equal(t, types.PledgeCancelled, p.Status)
	assert.Equal(t, types.Tokens(10_000), l.BalanceOf("alice"))

	_, err = m.RequestRefund(1, "alice")
	assert.True(t, types.IsKind(err, types.InvalidState), "refund is exclusive")

	assert.Equal(t, types.Tokens(200), m.EscrowedFunds())
	assert.Equal(t, types.Tokens(200), l.BalanceOf(escrow))
	_, err = m.RequestRefund(5, "alice")
	assert.True(t, types.IsKind(err, types.NotFound))
}

func TestCancelCampaign(t *testing.T) {
	l, m := setup(t, 0)
	c := createCampaign(t, m, 1000, 10)
	_, _, err := m.Pledge(c.ID, "alice", pledge(300), t0)
	require.NoError(t, err)

	_, err = m.CancelCampaign(c.ID, "bob")
	assert.True(t, types.IsKind(err, types.NotAuthorized))

	canceled, err := m.CancelCampaign(c.ID, admin)
	require.NoError(t, err)
	assert.Equal(t, types.CampaignCanceled, canceled.Status)

	_, err = m.CancelCampaign(c.ID, "creator")
	assert.True(t, types.IsKind(err, types.InvalidState))
	assert.Empty(t, m.CheckDeadlines(t0.Add(20*day)), "canceled campaigns never fail")

	_, err = m.RequestRefund(1, "alice")
	require.NoError(t, err)
	assert.True(t, l.BalanceOf(escrow).IsZero())
}

func TestUpdatePledgeStatus(t *testing.T) {
	_, m := setup(t, 0)
	c := createCampaign(t, m, 1000, 10)
	_, _, err := m.Pledge(c.ID, "alice", pledge(300), t0)
	require.NoError(t, err)

	_, err = m.UpdatePledgeStatus(1, types.PledgeCompleted, "alice")
	assert.True(t, types.IsKind(err, types.NotAuthorized))

	p, err := m.UpdatePledgeStatus(1, types.PledgeCompleted, admin)
	require.NoError(t, err)
	assert.Equal(t, types.PledgeCompleted, p.Status)

	_, err = m.UpdatePledgeStatus(1, types.PledgeCancelled, admin)
	assert.True(t, types.IsKind(err, types.InvalidState), "cancellation only through refund")

	_, err = m.CancelCampaign(c.ID, "creator")
	require.NoError(t, err)
	_, err = m.RequestRefund(1, "alice")
	require.NoError(t, err)
	_, err = m.UpdatePledgeStatus(1, types.PledgePending, admin)
	assert.True(t, types.IsKind(err, types.InvalidState), "cancelled pledges are final")
}

func TestClaimPledgeReward(t *testing.T) {
	l, m := setup(t, 0)
	c := createCampaign(t, m, 1000, 10)
	_, err := m.AddRewardTier(c.ID, "creator", TierRequest{
		MinimumAmount: types.Tokens(100),
		TokenAmount:   types.Tokens(4),
		TierType:      types.TierDynamic,
	})
	require.NoError(t, err)

	p, _, err := m.Pledge(c.ID, "alice", PledgeRequest{Amount: types.Tokens(250), RewardTierID: 1}, t0)
	require.NoError(t, err)
	assert.Equal(t, types.Tokens(10), p.RewardAmount)
	_, _, err = m.Pledge(c.ID, "bob", pledge(750), t0)
	require.NoError(t, err)

	_, err = m.ClaimPledgeReward(2, "bob")
	assert.True(t, types.IsKind(err, types.InvalidState), "no tier, no reward")
	_, err = m.ClaimPledgeReward(1, "bob")
	assert.True(t, types.IsKind(err, types.NotAuthorized))

	supply := l.TotalSupply()
	p, err = m.ClaimPledgeReward(1, "alice")
	require.NoError(t, err)
	assert.True(t, p.RewardClaimed)
	assert.Equal(t, supply.Add(types.Tokens(10)), l.TotalSupply())

	_, err = m.ClaimPledgeReward(1, "alice")
	assert.True(t, types.IsKind(err, types.InvalidState))
}

func TestPlatformSettings(t *testing.T) {
	_, m := setup(t, 0)

	assert.True(t, types.IsKind(m.UpdatePlatformFee(2001, admin), types.FeeTooHigh))
	assert.True(t, types.IsKind(m.UpdatePlatformFee(100, "alice"), types.NotAuthorized))
	require.NoError(t, m.UpdatePlatformFee(2000, admin))
	assert.Equal(t, uint32(2000), m.PlatformFeeBps())

	assert.True(t, types.IsKind(m.UpdateFeeCollector("", admin), types.InvalidArgument))
	assert.True(t, types.IsKind(m.UpdateFeeCollector(escrow, admin), types.InvalidArgument))
	assert.Equal(t, collector, m.FeeCollector())
	require.NoError(t, m.UpdateFeeCollector("dao", admin))
	assert.Equal(t, "dao", m.FeeCollector())

	_, err := NewMarket(nil, nil, escrow, collector, 2001)
	assert.True(t, types.IsKind(err, types.FeeTooHigh))
	_, err = NewMarket(nil, nil, escrow, "engine:staking-rewards", 0)
	assert.True(t, types.IsKind(err, types.InvalidArgument))
}

func TestExportImport(t *testing.T) {
	l, m := setup(t, 300)
	c := createCampaign(t, m, 1000, 10)
	_, err := m.AddRewardTier(c.ID, "creator", TierRequest{MinimumAmount: types.Tokens(10), TokenAmount: types.Tokens(1)})
	require.NoError(t, err)
	_, _, err = m.Pledge(c.ID, "alice", PledgeRequest{Amount: types.Tokens(20), RewardTierID: 1}, t0)
	require.NoError(t, err)
	createCampaign(t, m, 50, 5)

	restored, err := Import(l, nil, escrow, m.Export())
	require.NoError(t, err)
	assert.Equal(t, m.Export(), restored.Export())
	assert.Len(t, restored.GetBackerPledges("alice"), 1)

	// the restored market keeps allocating ids where the original stopped
	next, err := restored.CreateCampaign("creator", CampaignRequest{FundingGoal: types.Tokens(1), DurationDays: 1}, t0)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), next.ID)

	broken := m.Export()
	broken.Pledges[0].ID = 9
	_, err = Import(l, nil, escrow, broken)
	assert.True(t, types.IsKind(err, types.InvalidState))
}

func TestGoalScenario(t *testing.T) {
	l, m := setup(t, 250)
	c := createCampaign(t, m, 2000, 30)

	_, updated, err := m.Pledge(c.ID, "alice", pledge(1000), t0)
	require.NoError(t, err)
	assert.Equal(t, types.CampaignActive, updated.Status)

	_, updated, err = m.Pledge(c.ID, "bob", pledge(1000), t0)
	require.NoError(t, err)
	assert.Equal(t, types.CampaignSuccessful, updated.Status)
	assert.Equal(t, types.Tokens(2000), updated.TotalFunds)

	_, err = m.ClaimFunds(c.ID, "creator")
	require.NoError(t, err)
	assert.Equal(t, types.Tokens(1950), l.BalanceOf("creator"))
	assert.Equal(t, types.Tokens(50), l.BalanceOf(collector))
}
