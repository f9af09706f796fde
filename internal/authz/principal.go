package authz

import "github.com/buildtrack/buildtrack/internal/db/models"

// Principal is the authenticated identity making a request, as decoded from
// the access token. It carries identity only; the role and blocked flag are
// always loaded fresh from the database so role edits and blocks take effect
// on the next request, not after token expiry.
type Principal struct {
	ID    string
	Email string
}

// Grantee is the outcome of a successful authorization: the principal
// together with its freshly resolved role and flattened grant set. Handlers
// read it from the request context for secondary checks without re-querying.
type Grantee struct {
	Principal Principal
	// Role is the resolved role of the user.
	Role models.Role
	// Grants is the flattened "action:resource" list of the role.
	Grants []string

	grantSet GrantSet
	super    bool
}

// Can reports whether the grantee holds the (action, resource) grant.
// The bypass role can do everything.
func (g *Grantee) Can(action Action, resource Resource) bool {
	if g.super {
		return true
	}

	return g.grantSet.Has(action, resource)
}

// IsAdmin reports whether the grantee holds one of the admin roles that see
// every row (no ownership narrowing).
func (g *Grantee) IsAdmin() bool {
	return g.Role.Name == RoleSuperAdmin || g.Role.Name == RoleOrgAdmin
}
