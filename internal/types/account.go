package types

import "strings"

// SystemAccountPrefix marks ledger accounts that hold value on behalf of the engine.
const SystemAccountPrefix = "engine:"

func IsSystemAccount(account string) bool {
	return strings.HasPrefix(account, SystemAccountPrefix)
}

// ValidatePayoutAccount rejects empty and reserved accounts as payout destinations.
func ValidatePayoutAccount(account, what string) error {
	if account == "" {
		return Errorf(InvalidArgument, "%s must be set", what)
	}
	if IsSystemAccount(account) {
		return Errorf(InvalidArgument, "%s cannot be the reserved account %s", what, account)
	}
	return nil
}
