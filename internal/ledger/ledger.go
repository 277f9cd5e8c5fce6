// Package ledger is the fungible balance store every other subsystem settles against.
package ledger

import (
	"sort"

	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// Movement is one balance transfer inside an atomic batch.
type Movement struct {
	From   string
	To     string
	Amount sdkmath.Int
}

// Ledger keeps balances and the supply counters. It is not safe for concurrent
// use; the engine serialises access.
type Ledger struct {
	maxSupply   sdkmath.Int
	totalSupply sdkmath.Int
	totalMinted sdkmath.Int
	totalBurned sdkmath.Int
	balances    map[string]sdkmath.Int
}

func New(maxSupply sdkmath.Int) (*Ledger, error) {
	if err := types.ValidateAmount(maxSupply); err != nil {
		return nil, types.Errorf(types.InvalidAmount, "max supply must be positive")
	}
	return &Ledger{
		maxSupply:   maxSupply,
		totalSupply: sdkmath.ZeroInt(),
		totalMinted: sdkmath.ZeroInt(),
		totalBurned: sdkmath.ZeroInt(),
		balances:    make(map[string]sdkmath.Int),
	}, nil
}

func (l *Ledger) Mint(to string, amount sdkmath.Int) error {
	if err := validateAccount(to); err != nil {
		return err
	}
	if err := types.ValidateAmount(amount); err != nil {
		return err
	}

	newSupply, err := types.SafeAdd(l.totalSupply, amount)
	if err != nil {
		return err
	}
	if newSupply.GT(l.maxSupply) {
		return types.Errorf(types.SupplyCapExceeded,
			"minting %s would raise supply to %s, above the cap of %s", amount, newSupply, l.maxSupply)
	}
	newMinted, err := types.SafeAdd(l.totalMinted, amount)
	if err != nil {
		return err
	}
	newBalance, err := types.SafeAdd(l.BalanceOf(to), amount)
	if err != nil {
		return err
	}

	l.totalSupply = newSupply
	l.totalMinted = newMinted
	l.balances[to] = newBalance
	return nil
}

func (l *Ledger) Burn(from string, amount sdkmath.Int) error {
	if err := validateAccount(from); err != nil {
		return err
	}
	if err := types.ValidateAmount(amount); err != nil {
		return err
	}

	balance := l.BalanceOf(from)
	if balance.LT(amount) {
		return insufficientBalance(from, balance, amount)
	}
	newBurned, err := types.SafeAdd(l.totalBurned, amount)
	if err != nil {
		return err
	}

	l.setBalance(from, balance.Sub(amount))
	l.totalSupply = l.totalSupply.Sub(amount)
	l.totalBurned = newBurned
	return nil
}

func (l *Ledger) Transfer(from, to string, amount sdkmath.Int) error {
	return l.TransferMany(Movement{From: from, To: to, Amount: amount})
}

// TransferMany applies all movements or none of them. Movements are validated
// in order against the balances the earlier movements would leave behind.
func (l *Ledger) TransferMany(moves ...Movement) error {
	staged := make(map[string]sdkmath.Int)
	get := func(account string) sdkmath.Int {
		if b, ok := staged[account]; ok {
			return b
		}
		return l.BalanceOf(account)
	}

	for _, m := range moves {
		if err := validateAccount(m.From); err != nil {
			return err
		}
		if err := validateAccount(m.To); err != nil {
			return err
		}
		if err := types.ValidateAmount(m.Amount); err != nil {
			return err
		}

		fromBalance := get(m.From)
		if fromBalance.LT(m.Amount) {
			return insufficientBalance(m.From, fromBalance, m.Amount)
		}
		staged[m.From] = fromBalance.Sub(m.Amount)

		toBalance, err := types.SafeAdd(get(m.To), m.Amount)
		if err != nil {
			return err
		}
		staged[m.To] = toBalance
	}

	for account, balance := range staged {
		l.setBalance(account, balance)
	}
	return nil
}

// CanDebit reports whether account holds at least amount.
func (l *Ledger) CanDebit(account string, amount sdkmath.Int) error {
	balance := l.BalanceOf(account)
	if balance.LT(amount) {
		return insufficientBalance(account, balance, amount)
	}
	return nil
}

// CanMint reports whether amount fits under the supply cap.
func (l *Ledger) CanMint(amount sdkmath.Int) error {
	newSupply, err := types.SafeAdd(l.totalSupply, amount)
	if err != nil {
		return err
	}
	if newSupply.GT(l.maxSupply) {
		return types.Errorf(types.SupplyCapExceeded,
			"minting %s would raise supply to %s, above the cap of %s", amount, newSupply, l.maxSupply)
	}
	return nil
}

func (l *Ledger) BalanceOf(account string) sdkmath.Int {
	if b, ok := l.balances[account]; ok {
		return b
	}
	return sdkmath.ZeroInt()
}

func (l *Ledger) TotalSupply() sdkmath.Int { return l.totalSupply }
func (l *Ledger) MaxSupply() sdkmath.Int   { return l.maxSupply }
func (l *Ledger) TotalMinted() sdkmath.Int { return l.totalMinted }
func (l *Ledger) TotalBurned() sdkmath.Int { return l.totalBurned }

// Accounts returns every account holding a non-zero balance, sorted.
func (l *Ledger) Accounts() []string {
	accounts := make([]string, 0, len(l.balances))
	for account := range l.balances {
		accounts = append(accounts, account)
	}
	sort.Strings(accounts)
	return accounts
}

// CheckConservation verifies that the balances add up to minted minus burned
// and that the supply never passed the cap.
func (l *Ledger) CheckConservation() error {
	sum := sdkmath.ZeroInt()
	for _, balance := range l.balances {
		sum = sum.Add(balance)
	}
	if !sum.Equal(l.totalSupply) {
		return types.Errorf(types.InvalidState, "sum of balances %s differs from total supply %s", sum, l.totalSupply)
	}
	if !l.totalMinted.Sub(l.totalBurned).Equal(l.totalSupply) {
		return types.Errorf(types.InvalidState,
			"minted %s minus burned %s differs from total supply %s", l.totalMinted, l.totalBurned, l.totalSupply)
	}
	if l.totalSupply.GT(l.maxSupply) {
		return types.Errorf(types.InvalidState, "total supply %s above cap %s", l.totalSupply, l.maxSupply)
	}
	return nil
}

func (l *Ledger) setBalance(account string, balance sdkmath.Int) {
	if balance.IsZero() {
		delete(l.balances, account)
		return
	}
	l.balances[account] = balance
}

func validateAccount(account string) error {
	if account == "" {
		return types.Errorf(types.InvalidArgument, "account must not be empty")
	}
	return nil
}

func insufficientBalance(account string, balance, amount sdkmath.Int) error {
	return types.Errorf(types.InsufficientBalance,
		"account %s holds %s, needs %s", account, balance, amount)
}
