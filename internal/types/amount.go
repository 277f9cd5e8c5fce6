package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

const (
	// Decimals is the fixed-point precision of every amount in the engine.
	Decimals = 18
	// BpsDenominator is the basis-point denominator used by all fee models.
	BpsDenominator = 10_000
)

// OneToken is 1.0 expressed in base units (1e18).
var OneToken = sdkmath.NewIntWithDecimal(1, Decimals)

// Tokens converts a whole-token count into base units.
func Tokens(n int64) sdkmath.Int {
	return sdkmath.NewInt(n).Mul(OneToken)
}

// ParseTokens parses a decimal token amount such as "1000" or "2.5" into base units.
func ParseTokens(s string) (sdkmath.Int, error) {
	dec, err := sdkmath.LegacyNewDecFromStr(s)
	if err != nil {
		return sdkmath.Int{}, fmt.Errorf("invalid token amount %q: %w", s, err)
	}
	if dec.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("token amount %q must not be negative", s)
	}
	return dec.MulInt(OneToken).TruncateInt(), nil
}

// ToTokensFloat renders base units as a float token count. Only for display and metrics.
func ToTokensFloat(amount sdkmath.Int) float64 {
	if amount.IsNil() {
		return 0
	}
	f, err := sdkmath.LegacyNewDecFromIntWithPrec(amount, Decimals).Float64()
	if err != nil {
		return 0
	}
	return f
}

// ValidateAmount rejects nil, zero and negative amounts.
func ValidateAmount(amount sdkmath.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return Errorf(InvalidAmount, "amount must be positive")
	}
	return nil
}

// ValidateFeeBps rejects fees above max basis points.
func ValidateFeeBps(bps, max uint32) error {
	if bps > max {
		return Errorf(FeeTooHigh, "fee %d bps exceeds maximum of %d bps", bps, max)
	}
	return nil
}

// SafeAdd adds two amounts, reporting overflow as an Overflow error.
func SafeAdd(a, b sdkmath.Int) (sdkmath.Int, error) {
	res, err := a.SafeAdd(b)
	if err != nil {
		return sdkmath.Int{}, Errorf(Overflow, "amount overflow: %v", err)
	}
	return res, nil
}

// SafeMul multiplies two amounts, reporting overflow as an Overflow error.
func SafeMul(a, b sdkmath.Int) (sdkmath.Int, error) {
	res, err := a.SafeMul(b)
	if err != nil {
		return sdkmath.Int{}, Errorf(Overflow, "amount overflow: %v", err)
	}
	return res, nil
}

// MulDiv computes a * b / d, truncating, with overflow and division checks.
func MulDiv(a, b, d sdkmath.Int) (sdkmath.Int, error) {
	if d.IsZero() {
		return sdkmath.Int{}, Errorf(InvalidArgument, "division by zero")
	}
	prod, err := SafeMul(a, b)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return prod.Quo(d), nil
}

// ApplyBps returns amount * bps / 10000, truncated.
func ApplyBps(amount sdkmath.Int, bps uint32) (sdkmath.Int, error) {
	return MulDiv(amount, sdkmath.NewIntFromUint64(uint64(bps)), sdkmath.NewInt(BpsDenominator))
}
