// Package project provides the JSON API handlers for construction projects.
package project

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	projectctl "github.com/buildtrack/buildtrack/internal/db/controller/project"
	"github.com/buildtrack/buildtrack/internal/db/models"
	"github.com/buildtrack/buildtrack/internal/web/handler"
)

const (
	// Path is the base path for the project endpoints.
	Path = handler.APIPath + "/projects"
)

// Service provides CRUD operations for projects.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service) error {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return nil
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Get(Path,
		authService.Require(authz.ActionRead, authz.ResourceProject),
		s.List,
	)
	app.Post(Path,
		authService.Require(authz.ActionCreate, authz.ResourceProject),
		s.Create,
	)
	app.Get(Path+"/:id",
		authService.RequireProjectAccess(authz.ActionRead),
		s.Get,
	)
	app.Put(Path+"/:id",
		authService.RequireProjectAccess(authz.ActionUpdate),
		s.Update,
	)
	app.Delete(Path+"/:id",
		authService.RequireProjectAccess(authz.ActionDelete),
		s.Delete,
	)

	return nil
}

// List returns the projects visible to the caller. Admin roles see every
// row, project managers see the projects they manage, everyone else gets an
// empty list until their ownership linkage exists.
func (s *Service) List(c *fiber.Ctx) error {
	grantee := authz.GranteeFromCtx(c)

	scope := projectctl.Scope{}

	switch {
	case grantee.IsAdmin():
		scope = projectctl.ScopeAll
	case grantee.Role.Name == authz.RoleProjectManager:
		scope.ManagerID = grantee.Principal.ID
	}

	projects, err := projectctl.GetAll(s.db, scope)
	if err != nil {
		log.Error().Err(err).Msg("failed to list projects")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(projects)
}

type createRequest struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Status      string     `json:"status"`
	Budget      int64      `json:"budget"`
	ManagerID   string     `json:"managerId"`
	ClientID    *string    `json:"clientId"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// Create creates a project. Non-admin creators always become the manager of
// the new project; only admin roles may assign someone else.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	grantee := authz.GranteeFromCtx(c)

	managerID := req.ManagerID
	if managerID == "" || !grantee.IsAdmin() {
		managerID = grantee.Principal.ID
	}

	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatus(req.Status),
		Budget:      req.Budget,
		ManagerID:   managerID,
		ClientID:    req.ClientID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}

	created, err := projectctl.Create(s.db, project)
	if err != nil {
		if errors.Is(err, projectctl.ErrNameEmpty) || errors.Is(err, projectctl.ErrManagerEmpty) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to create project")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Get returns one project.
func (s *Service) Get(c *fiber.Ctx) error {
	project, err := projectctl.Get(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, projectctl.ErrProjectNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to load project")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(project)
}

type updateRequest struct {
	Name        *string    `json:"name" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Status      *string    `json:"status"`
	Budget      *int64     `json:"budget"`
	ClientID    *string    `json:"clientId"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
}

// Update applies a partial update to a project. The manager assignment is
// changed through a dedicated admin flow, not here.
func (s *Service) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	changes := map[string]interface{}{}

	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Status != nil {
		changes["status"] = *req.Status
	}
	if req.Budget != nil {
		changes["budget"] = *req.Budget
	}
	if req.ClientID != nil {
		changes["client_id"] = *req.ClientID
	}
	if req.StartDate != nil {
		changes["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		changes["end_date"] = *req.EndDate
	}

	project, err := projectctl.Update(s.db, c.Params("id"), changes)
	if err != nil {
		if errors.Is(err, projectctl.ErrProjectNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to update project")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(project)
}

// Delete deletes a project and its tasks.
func (s *Service) Delete(c *fiber.Ctx) error {
	err := projectctl.Delete(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, projectctl.ErrProjectNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to delete project")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
