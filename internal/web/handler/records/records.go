// Package records provides the JSON API handlers for module records, the
// generic rows behind the generated workflow modules. One set of routes
// serves every module; the slug decides which resource the caller must hold
// a grant on.
package records

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	recordctl "github.com/buildtrack/buildtrack/internal/db/controller/record"
	"github.com/buildtrack/buildtrack/internal/web/handler"
)

const (
	// Path is the base path for the module record endpoints.
	Path = handler.APIPath + "/modules/:slug/records"
)

// Service provides CRUD operations for module records.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. The module guard resolves the slug and picks the
// action from the HTTP method, so one registration covers all modules.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service) error {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return nil
	}

	s.db = db
	s.cfg = cfg

	guard := authService.RequireModule()

	app.Get(Path, guard, s.List)
	app.Post(Path, guard, s.Create)
	app.Get(Path+"/:id", guard, s.Get)
	app.Put(Path+"/:id", guard, s.Update)
	app.Delete(Path+"/:id", guard, s.Delete)

	return nil
}

// List returns all records of a module, newest first.
func (s *Service) List(c *fiber.Ctx) error {
	recs, err := recordctl.GetAll(s.db, c.Params("slug"))
	if err != nil {
		log.Error().Err(err).Msg("failed to list module records")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(recs)
}

// Create creates a record in a module. The payload is stored as-is after a
// JSON well-formedness check; module schemas live in the generated frontend,
// not here.
func (s *Service) Create(c *fiber.Ctx) error {
	body := c.Body()
	if !json.Valid(body) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	grantee := authz.GranteeFromCtx(c)

	rec, err := recordctl.Create(s.db, c.Params("slug"), body, grantee.Principal.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to create module record")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(rec)
}

// Get returns one record of a module.
func (s *Service) Get(c *fiber.Ctx) error {
	rec, err := recordctl.Get(s.db, c.Params("slug"), c.Params("id"))
	if err != nil {
		if errors.Is(err, recordctl.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to load module record")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(rec)
}

// Update replaces the payload of a record.
func (s *Service) Update(c *fiber.Ctx) error {
	body := c.Body()
	if !json.Valid(body) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	grantee := authz.GranteeFromCtx(c)

	rec, err := recordctl.Update(s.db, c.Params("slug"), c.Params("id"), body, grantee.Principal.ID)
	if err != nil {
		if errors.Is(err, recordctl.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to update module record")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(rec)
}

// Delete deletes a record of a module.
func (s *Service) Delete(c *fiber.Ctx) error {
	err := recordctl.Delete(s.db, c.Params("slug"), c.Params("id"))
	if err != nil {
		if errors.Is(err, recordctl.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to delete module record")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
