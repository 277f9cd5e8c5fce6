package types

type Role string

const (
	RoleAdmin              Role = "admin"
	RoleProjectAdmin       Role = "project-admin"
	RoleRewardsDistributor Role = "rewards-distributor"
	RoleOracle             Role = "oracle"
	RoleMinter             Role = "minter"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleProjectAdmin, RoleRewardsDistributor, RoleOracle, RoleMinter:
		return true
	default:
		return false
	}
}

// Authorizer answers role membership questions. Role storage lives outside the
// engine; the engine only asks.
type Authorizer interface {
	HasRole(account string, role Role) bool
}

// HasAnyRole reports whether account holds at least one of roles.
func HasAnyRole(auth Authorizer, account string, roles ...Role) bool {
	if auth == nil {
		return false
	}
	for _, role := range roles {
		if auth.HasRole(account, role) {
			return true
		}
	}
	return false
}
