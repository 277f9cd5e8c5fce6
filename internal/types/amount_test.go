package types

import (
	"fmt"
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTokens(t *testing.T) {
	t.Run("whole tokens", func(t *testing.T) {
		amount, err := ParseTokens("1000")
		require.NoError(t, err)
		assert.Equal(t, Tokens(1000), amount)
	})
	t.Run("fractional tokens", func(t *testing.T) {
		amount, err := ParseTokens("2.5")
		require.NoError(t, err)
		assert.Equal(t, "2500000000000000000", amount.String())
	})
	t.Run("negative", func(t *testing.T) {
		_, err := ParseTokens("-1")
		require.Error(t, err)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := ParseTokens("ten")
		require.Error(t, err)
	})
}

func TestApplyBps(t *testing.T) {
	cases := []struct {
		amount   sdkmath.Int
		bps      uint32
		expected sdkmath.Int
	}{
		{Tokens(2000), 250, Tokens(50)},
		{Tokens(1000), 0, sdkmath.ZeroInt()},
		{Tokens(1000), BpsDenominator, Tokens(1000)},
		{sdkmath.NewInt(3), 5000, sdkmath.NewInt(1)},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("%s at %d bps", c.amount, c.bps), func(t *testing.T) {
			fee, err := ApplyBps(c.amount, c.bps)
			require.NoError(t, err)
			assert.True(t, c.expected.Equal(fee), "expected %s, got %s", c.expected, fee)
		})
	}
}

func TestSafeArithmetic(t *testing.T) {
	// largest value representable in 256 bits
	huge := sdkmath.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)))

	_, err := SafeMul(huge, sdkmath.NewInt(2))
	require.Error(t, err)
	assert.True(t, IsKind(err, Overflow))

	_, err = SafeAdd(huge, huge)
	require.Error(t, err)
	assert.True(t, IsKind(err, Overflow))

	_, err = MulDiv(OneToken, OneToken, sdkmath.ZeroInt())
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidArgument))
}

func TestValidateAmount(t *testing.T) {
	assert.True(t, IsKind(ValidateAmount(sdkmath.Int{}), InvalidAmount))
	assert.True(t, IsKind(ValidateAmount(sdkmath.ZeroInt()), InvalidAmount))
	assert.True(t, IsKind(ValidateAmount(sdkmath.NewInt(-5)), InvalidAmount))
	assert.NoError(t, ValidateAmount(sdkmath.NewInt(1)))
}

func TestToTokensFloat(t *testing.T) {
	assert.InDelta(t, 1.5, ToTokensFloat(Tokens(3).QuoRaw(2)), 1e-9)
	assert.Zero(t, ToTokensFloat(sdkmath.Int{}))
}
