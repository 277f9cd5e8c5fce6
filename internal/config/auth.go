package config

import (
	"fmt"
	"strings"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// AuthConfig maps role names to the accounts that hold them.
type AuthConfig struct {
	Roles map[string][]string `mapstructure:"roles"`
}

func (cfg *AuthConfig) Validate() error {
	for name, accounts := range cfg.Roles {
		if !types.Role(strings.ToLower(name)).IsValid() {
			return fmt.Errorf("unknown role %q", name)
		}
		for _, account := range accounts {
			if types.IsSystemAccount(account) {
				return fmt.Errorf("role %q cannot be granted to reserved account %s", name, account)
			}
		}
	}
	if len(cfg.Roles[types.RoleAdmin.String()]) == 0 {
		return fmt.Errorf("at least one %s account is required", types.RoleAdmin)
	}
	return nil
}
