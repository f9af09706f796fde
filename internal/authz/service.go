package authz

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/db/models"
)

// RowCheck narrows a resource-level grant to the rows the grantee owns.
// It runs after the matrix check and only for non-bypass roles.
type RowCheck func(g *Grantee) error

// ClientProjectsResolver decides whether a logged-in client user owns a
// project. The data model has no client-to-user link yet, so the default
// resolver reports the gap instead of guessing a join; inject a real one
// once Client.UserID exists.
type ClientProjectsResolver interface {
	OwnsProject(userID, projectID string) (bool, error)
}

type unimplementedClientProjects struct{}

func (unimplementedClientProjects) OwnsProject(_, _ string) (bool, error) {
	return false, ErrNotImplemented
}

// Service provides the authorization decision function. Role and permission
// state is read fresh from the database on every call: an administrative
// edit takes effect on the next request, a stale allow is never possible.
type Service struct {
	db             *gorm.DB
	clientProjects ClientProjectsResolver
}

// NewService creates a new authorization service.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:             db,
		clientProjects: unimplementedClientProjects{},
	}
}

// WithClientProjectsResolver replaces the client ownership strategy.
func (s *Service) WithClientProjectsResolver(r ClientProjectsResolver) *Service {
	s.clientProjects = r
	return s
}

// GrantsFor returns the grant set of a role by name. An unknown role yields
// the empty set, not an error: authorization fails closed.
func (s *Service) GrantsFor(roleName string) (GrantSet, error) {
	var perms []models.Permission

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Where("roles.name = ?", roleName).
		Find(&perms).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorizationUnavailable, err)
	}

	set := make(GrantSet, len(perms))
	for _, p := range perms {
		set[Grant{Action: Action(p.Action), Resource: p.Resource}] = struct{}{}
	}

	return set, nil
}

// Resolve loads the principal's account fresh and turns it into a Grantee.
// It covers the identity half of the decision: authentication, the blocked
// flag, role presence and the role's flattened grant set. The role and
// blocked flag are never trusted from a token claim.
func (s *Service) Resolve(principal *Principal) (*Grantee, error) {
	if principal == nil || principal.ID == "" {
		return nil, ErrUnauthenticated
	}

	var user models.User

	err := s.db.Preload("Role").Where("id = ?", principal.ID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}

		return nil, fmt.Errorf("%w: %v", ErrAuthorizationUnavailable, err)
	}

	if user.IsBlocked {
		return nil, ErrAccountBlocked
	}

	if user.Role == nil {
		return nil, ErrRoleMissing
	}

	grantee := &Grantee{
		Principal: Principal{ID: user.ID, Email: user.Email},
		Role:      *user.Role,
	}

	if user.Role.Name == RoleSuperAdmin {
		grantee.super = true

		grantee.Grants, err = s.allPermissionNames()
		if err != nil {
			return nil, err
		}

		return grantee, nil
	}

	set, err := s.GrantsFor(user.Role.Name)
	if err != nil {
		return nil, err
	}

	grantee.grantSet = set
	grantee.Grants = set.Flatten()

	return grantee, nil
}

// Authorize is the single decision function every protected operation calls.
//
// The order is fixed: authentication, blocked flag, bypass role, matrix,
// row ownership. The bypass role is allowed before the matrix and before any
// row predicate. On deny the returned error is one of the package sentinels;
// the Grantee is still returned once the role was resolved so callers can
// report it in the denial detail.
func (s *Service) Authorize(principal *Principal, action Action, resource Resource, rowCheck RowCheck) (*Grantee, error) {
	grantee, err := s.Resolve(principal)
	if err != nil {
		return nil, err
	}

	if grantee.super {
		return grantee, nil
	}

	if !grantee.grantSet.Has(action, resource) {
		return grantee, ErrInsufficientPermission
	}

	if rowCheck != nil {
		if err := rowCheck(grantee); err != nil {
			return grantee, err
		}
	}

	return grantee, nil
}

// allPermissionNames flattens every permission that exists, for the bypass
// role's request context.
func (s *Service) allPermissionNames() ([]string, error) {
	var names []string

	err := s.db.Model(&models.Permission{}).
		Order("name").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthorizationUnavailable, err)
	}

	return names, nil
}
