package engine

import (
	"context"

	sdkmath "cosmossdk.io/math"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// Mint creates amount new tokens for to. Requires the minter role.
func (e *Engine) Mint(ctx context.Context, caller, to string, amount sdkmath.Int) error {
	now := e.begin()
	defer e.end()

	if err := e.requireRole(caller, types.RoleMinter); err != nil {
		return failed(ctx, "mint", err)
	}
	if err := checkCaller(to); err != nil {
		return failed(ctx, "mint", err)
	}
	if err := e.ledger.Mint(to, amount); err != nil {
		return failed(ctx, "mint", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeTokensMinted,
		"to", to, "amount", amount.String(), "totalSupply", e.ledger.TotalSupply().String()))
	return nil
}

// Burn destroys amount of the caller's own tokens.
func (e *Engine) Burn(ctx context.Context, caller string, amount sdkmath.Int) error {
	now := e.begin()
	defer e.end()

	if err := checkCaller(caller); err != nil {
		return failed(ctx, "burn", err)
	}
	if err := e.ledger.Burn(caller, amount); err != nil {
		return failed(ctx, "burn", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeTokensBurned,
		"from", caller, "amount", amount.String(), "totalSupply", e.ledger.TotalSupply().String()))
	return nil
}

// Transfer moves amount from the caller to to.
func (e *Engine) Transfer(ctx context.Context, caller, to string, amount sdkmath.Int) error {
	now := e.begin()
	defer e.end()

	if err := checkCaller(caller, to); err != nil {
		return failed(ctx, "transfer", err)
	}
	if err := e.ledger.Transfer(caller, to, amount); err != nil {
		return failed(ctx, "transfer", err)
	}
	e.record(ctx, caller, now, newChange(types.ChangeTokensTransferred,
		"from", caller, "to", to, "amount", amount.String()))
	return nil
}

func (e *Engine) BalanceOf(account string) sdkmath.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.BalanceOf(account)
}

func (e *Engine) TotalSupply() sdkmath.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.TotalSupply()
}

func (e *Engine) MaxSupply() sdkmath.Int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.MaxSupply()
}
