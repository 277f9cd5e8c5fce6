// Package auth provides the role table the engine consults for privileged
// operations.
package auth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/carbonpledge-labs/token-economy-engine/internal/types"
)

// StaticAuthorizer is an in-memory account -> roles table, typically loaded
// from configuration at start-up.
type StaticAuthorizer struct {
	roles map[string]map[types.Role]struct{}
}

// NewStaticAuthorizer builds an authorizer from role name -> accounts.
func NewStaticAuthorizer(roleAccounts map[string][]string) (*StaticAuthorizer, error) {
	a := &StaticAuthorizer{roles: make(map[string]map[types.Role]struct{})}
	for name, accounts := range roleAccounts {
		role := types.Role(strings.ToLower(name))
		if !role.IsValid() {
			return nil, fmt.Errorf("unknown role %q", name)
		}
		for _, account := range accounts {
			if account == "" {
				return nil, fmt.Errorf("empty account in role %q", name)
			}
			a.Grant(account, role)
		}
	}
	return a, nil
}

func (a *StaticAuthorizer) HasRole(account string, role types.Role) bool {
	_, ok := a.roles[account][role]
	return ok
}

// Grant is not safe for concurrent use with HasRole; call it before handing
// the authorizer to the engine.
func (a *StaticAuthorizer) Grant(account string, role types.Role) {
	if a.roles[account] == nil {
		a.roles[account] = make(map[types.Role]struct{})
	}
	a.roles[account][role] = struct{}{}
}

// Roles lists the roles held by account in name order.
func (a *StaticAuthorizer) Roles(account string) []types.Role {
	out := make([]types.Role, 0, len(a.roles[account]))
	for role := range a.roles[account] {
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
