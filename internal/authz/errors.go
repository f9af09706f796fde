package authz

import "errors"

// Every deny path maps to exactly one of these errors. They are terminal for
// the request, never retried, and carry stable reason strings that end up in
// the JSON error body.
var (
	// ErrUnauthenticated is returned when no principal is attached to the
	// request or the principal's account no longer exists.
	ErrUnauthenticated = errors.New("authentication required")

	// ErrAccountBlocked is returned when the account's blocked flag is set.
	// A blocked user has zero effective permissions regardless of role.
	ErrAccountBlocked = errors.New("account blocked")

	// ErrRoleMissing is returned when the user has no role assigned.
	// No role means zero grants: the check fails closed, not open.
	ErrRoleMissing = errors.New("no role assigned")

	// ErrInsufficientPermission is returned when the role lacks the
	// required (action, resource) grant.
	ErrInsufficientPermission = errors.New("insufficient permissions")

	// ErrNotOwner is returned when the row-level ownership predicate fails.
	ErrNotOwner = errors.New("not owner")

	// ErrRowNotFound is returned when the row the ownership predicate should
	// be evaluated against does not exist.
	ErrRowNotFound = errors.New("row not found")

	// ErrNotImplemented flags the client-to-user linkage gap: CLIENT row
	// scoping cannot be resolved until client records reference a user
	// account. Mapped to a deny, never to an allow.
	ErrNotImplemented = errors.New("client project linkage not implemented")

	// ErrAuthorizationUnavailable is returned when the permission store
	// cannot be read. Always a deny (fail closed), surfaced as a 5xx.
	ErrAuthorizationUnavailable = errors.New("authorization unavailable")
)
