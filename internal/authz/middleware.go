package authz

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/buildtrack/buildtrack/internal/modules"
)

// Context local keys for the request-scoped identity objects.
const (
	// LocalPrincipal is set by the token middleware after a valid access
	// token was presented.
	LocalPrincipal = "authz_principal"
	// LocalGrantee is set by the guards below after an allow decision.
	LocalGrantee = "authz_grantee"
)

// denyBody is the JSON error shape of every authorization failure.
type denyBody struct {
	Error    string `json:"error"`
	Required string `json:"required,omitempty"`
	Role     string `json:"role,omitempty"`
}

// PrincipalFromCtx returns the authenticated principal of the request, or
// nil when none was attached.
func PrincipalFromCtx(c *fiber.Ctx) *Principal {
	principal, _ := c.Locals(LocalPrincipal).(*Principal)
	return principal
}

// GranteeFromCtx returns the grantee a guard stored after an allow decision.
// Handlers use it for secondary checks without hitting the database again.
func GranteeFromCtx(c *fiber.Ctx) *Grantee {
	grantee, _ := c.Locals(LocalGrantee).(*Grantee)
	return grantee
}

// Require guards a route with a single (action, resource) pair and no row
// predicate.
func (s *Service) Require(action Action, resource Resource) fiber.Handler {
	return func(c *fiber.Ctx) error {
		grantee, err := s.Authorize(PrincipalFromCtx(c), action, resource, nil)
		if err != nil {
			return deny(c, grantee, action, resource, err)
		}

		c.Locals(LocalGrantee, grantee)

		return c.Next()
	}
}

// RequireProjectAccess guards a route that targets one project row. The
// project id is taken from the id path parameter, falling back to the
// projectId query parameter and then the request body, so the same guard
// serves detail routes and create-under-project routes.
func (s *Service) RequireProjectAccess(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		projectID := projectIDFromRequest(c)
		if projectID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(denyBody{Error: "project id required"})
		}

		write := action != ActionRead
		grantee, err := s.Authorize(PrincipalFromCtx(c), action, ResourceProject, s.ProjectRowCheck(projectID, write))
		if err != nil {
			return deny(c, grantee, action, ResourceProject, err)
		}

		c.Locals(LocalGrantee, grantee)

		return c.Next()
	}
}

// RequireTaskAccess guards a route that targets one task row, identified by
// the id path parameter.
func (s *Service) RequireTaskAccess(action Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		taskID := c.Params("id")
		if taskID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(denyBody{Error: "task id required"})
		}

		grantee, err := s.Authorize(PrincipalFromCtx(c), action, ResourceTask, s.TaskRowCheck(taskID, action))
		if err != nil {
			return deny(c, grantee, action, ResourceTask, err)
		}

		c.Locals(LocalGrantee, grantee)

		return c.Next()
	}
}

// RequireModule guards the generic module record routes. The slug path
// parameter is resolved to its canonical resource first; an unknown slug is
// a 404 before any permission is consulted. The action follows the HTTP
// method.
func (s *Service) RequireModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		slug := c.Params("slug")

		resource, err := modules.ResourceFor(slug)
		if err != nil {
			log.Debug().Str("slug", slug).Msg("request for unknown module")

			return c.Status(fiber.StatusNotFound).JSON(denyBody{Error: "unknown module"})
		}

		action := methodAction(c.Method())

		grantee, err := s.Authorize(PrincipalFromCtx(c), action, resource, nil)
		if err != nil {
			return deny(c, grantee, action, resource, err)
		}

		c.Locals(LocalGrantee, grantee)

		return c.Next()
	}
}

// RequireSuperAdmin guards the administrative routes that are reserved for
// the bypass role. Holding every grant through the matrix is not enough.
func (s *Service) RequireSuperAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		grantee, err := s.Resolve(PrincipalFromCtx(c))
		if err != nil {
			return deny(c, grantee, "", "", err)
		}

		if !grantee.super {
			log.Warn().
				Str("user", grantee.Principal.Email).
				Str("role", grantee.Role.Name).
				Msg("admin route denied")

			return c.Status(fiber.StatusForbidden).JSON(denyBody{
				Error: "admin access required",
				Role:  grantee.Role.Name,
			})
		}

		c.Locals(LocalGrantee, grantee)

		return c.Next()
	}
}

// deny translates a sentinel error into the HTTP response for it. The body
// carries the missing grant and the caller's role where they are known, so a
// denied client can tell a role gap from an ownership failure.
func deny(c *fiber.Ctx, grantee *Grantee, action Action, resource Resource, err error) error {
	body := denyBody{Error: err.Error()}
	if grantee != nil {
		body.Role = grantee.Role.Name
	}

	status := fiber.StatusForbidden

	switch {
	case errors.Is(err, ErrUnauthenticated):
		status = fiber.StatusUnauthorized
	case errors.Is(err, ErrInsufficientPermission):
		body.Required = Grant{Action: action, Resource: resource}.String()
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrAccountBlocked), errors.Is(err, ErrRoleMissing):
	case errors.Is(err, ErrNotImplemented):
		log.Warn().Str("path", c.Path()).Msg("client row scoping not resolvable")
	case errors.Is(err, ErrRowNotFound):
		status = fiber.StatusNotFound
		body = denyBody{Error: "not found"}
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("authorization check failed")

		status = fiber.StatusInternalServerError
		body = denyBody{Error: ErrAuthorizationUnavailable.Error()}
	}

	if status == fiber.StatusForbidden {
		log.Debug().
			Str("path", c.Path()).
			Str("role", body.Role).
			Str("required", body.Required).
			Msg("request denied")
	}

	return c.Status(status).JSON(body)
}

// methodAction maps an HTTP method to the matrix action it implies.
func methodAction(method string) Action {
	switch method {
	case fiber.MethodPost:
		return ActionCreate
	case fiber.MethodPut, fiber.MethodPatch:
		return ActionUpdate
	case fiber.MethodDelete:
		return ActionDelete
	default:
		return ActionRead
	}
}

func projectIDFromRequest(c *fiber.Ctx) string {
	if id := c.Params("id"); id != "" {
		return id
	}

	if id := c.Query("projectId"); id != "" {
		return id
	}

	var body struct {
		ProjectID string `json:"projectId"`
	}

	if err := c.BodyParser(&body); err == nil {
		return body.ProjectID
	}

	return ""
}
