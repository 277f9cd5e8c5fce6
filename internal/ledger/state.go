package ledger

import (
	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// State is the serialisable form of a Ledger.
type State struct {
	MaxSupply   sdkmath.Int            `json:"max_supply"`
	TotalSupply sdkmath.Int            `json:"total_supply"`
	TotalMinted sdkmath.Int            `json:"total_minted"`
	TotalBurned sdkmath.Int            `json:"total_burned"`
	Balances    map[string]sdkmath.Int `json:"balances"`
}

func (l *Ledger) Export() State {
	balances := make(map[string]sdkmath.Int, len(l.balances))
	for account, balance := range l.balances {
		balances[account] = balance
	}
	return State{
		MaxSupply:   l.maxSupply,
		TotalSupply: l.totalSupply,
		TotalMinted: l.totalMinted,
		TotalBurned: l.totalBurned,
		Balances:    balances,
	}
}

// Import replaces the ledger contents with s after checking it is internally consistent.
func Import(s State) (*Ledger, error) {
	l, err := New(s.MaxSupply)
	if err != nil {
		return nil, err
	}
	for account, balance := range s.Balances {
		if balance.IsNil() || balance.IsNegative() {
			return nil, types.Errorf(types.InvalidAmount, "invalid balance for account %s", account)
		}
		l.setBalance(account, balance)
	}
	l.totalSupply = orZero(s.TotalSupply)
	l.totalMinted = orZero(s.TotalMinted)
	l.totalBurned = orZero(s.TotalBurned)

	if err := l.CheckConservation(); err != nil {
		return nil, err
	}
	return l, nil
}

func orZero(i sdkmath.Int) sdkmath.Int {
	if i.IsNil() {
		return sdkmath.ZeroInt()
	}
	return i
}
