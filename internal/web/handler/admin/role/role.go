// Package role provides handlers for managing roles and their permission
// assignments in the admin area.
package role

import (
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	rolectl "github.com/buildtrack/buildtrack/internal/db/controller/role"
	"github.com/buildtrack/buildtrack/internal/web/handler"
)

const (
	// Path is the base path for role management.
	Path = handler.APIPath + "/admin/roles"
)

// Service provides CRUD operations for roles.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Editing the permission assignment of a role edits
// the live grant matrix, so that route is reserved for the bypass role;
// everything else follows the role grants.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service) error {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return nil
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Get(Path,
		authService.Require(authz.ActionRead, authz.ResourceRole),
		s.List,
	)
	app.Post(Path,
		authService.Require(authz.ActionCreate, authz.ResourceRole),
		s.Create,
	)
	app.Get(Path+"/:id/permissions",
		authService.Require(authz.ActionRead, authz.ResourceRole),
		s.Permissions,
	)
	app.Put(Path+"/:id/permissions",
		authService.RequireSuperAdmin(),
		s.ReplacePermissions,
	)
	app.Put(Path+"/:id",
		authService.Require(authz.ActionUpdate, authz.ResourceRole),
		s.Update,
	)
	app.Delete(Path+"/:id",
		authService.Require(authz.ActionDelete, authz.ResourceRole),
		s.Delete,
	)

	return nil
}

func roleID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	return uint(id), err
}

// List returns all roles.
func (s *Service) List(c *fiber.Ctx) error {
	roles, err := rolectl.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list roles")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(roles)
}

type createRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	DisplayName string `json:"displayName" validate:"max=100"`
	Description string `json:"description" validate:"max=255"`
}

// Create creates a custom role. It starts with no grants; permissions are
// assigned separately.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	created, err := rolectl.Create(s.db, req.Name, req.DisplayName, req.Description)
	if err != nil {
		if errors.Is(err, rolectl.ErrRoleAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, rolectl.ErrRoleNameEmpty) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to create role")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

type updateRequest struct {
	Name        string `json:"name" validate:"max=100"`
	DisplayName string `json:"displayName" validate:"max=100"`
	Description string `json:"description" validate:"max=255"`
}

// Update updates a role. Renaming a system role is rejected.
func (s *Service) Update(c *fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
	}

	var req updateRequest
	if err = c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err = s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	updated, err := rolectl.Update(s.db, id, req.Name, req.DisplayName, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, rolectl.ErrRoleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		case errors.Is(err, rolectl.ErrSystemRole):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to update role")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(updated)
}

// Delete deletes a custom role.
func (s *Service) Delete(c *fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
	}

	err = rolectl.Delete(s.db, id)
	if err != nil {
		switch {
		case errors.Is(err, rolectl.ErrRoleNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		case errors.Is(err, rolectl.ErrSystemRole), errors.Is(err, rolectl.ErrRoleInUse):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to delete role")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Permissions returns the permission assignment of a role.
func (s *Service) Permissions(c *fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
	}

	perms, err := rolectl.GetPermissions(s.db, id)
	if err != nil {
		log.Error().Err(err).Msg("failed to load role permissions")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(perms)
}

type permissionsRequest struct {
	PermissionIDs []uint `json:"permissionIds"`
}

// ReplacePermissions replaces the full permission assignment of a role. The
// change is picked up on the next request of every affected user; permission
// sets are never cached.
func (s *Service) ReplacePermissions(c *fiber.Ctx) error {
	id, err := roleID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid role id"})
	}

	var req permissionsRequest
	if err = c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	err = rolectl.ReplacePermissions(s.db, id, req.PermissionIDs)
	if err != nil {
		if errors.Is(err, rolectl.ErrRoleNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to replace role permissions")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
