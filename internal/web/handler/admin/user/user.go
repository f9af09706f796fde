// Package user provides handlers for managing user accounts (CRUD) in the
// admin area.
package user

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	userctl "github.com/buildtrack/buildtrack/internal/db/controller/user"
	"github.com/buildtrack/buildtrack/internal/db/models"
	"github.com/buildtrack/buildtrack/internal/web/handler"
)

const (
	// Path is the base path for user management.
	Path = handler.APIPath + "/admin/users"
)

// Service provides CRUD operations for users.
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
		authService.Require(authz.ActionRead, authz.ResourceUser),
		s.List,
	)
	app.Post(Path,
		authService.Require(authz.ActionCreate, authz.ResourceUser),
		s.Create,
	)
	app.Get(Path+"/:id",
		authService.Require(authz.ActionRead, authz.ResourceUser),
		s.Get,
	)
	app.Put(Path+"/:id",
		authService.Require(authz.ActionUpdate, authz.ResourceUser),
		s.Update,
	)
	app.Put(Path+"/:id/blocked",
		authService.Require(authz.ActionUpdate, authz.ResourceUser),
		s.SetBlocked,
	)
	app.Delete(Path+"/:id",
		authService.Require(authz.ActionDelete, authz.ResourceUser),
		s.Delete,
	)

	return nil
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	JobTitle  string `json:"jobTitle,omitempty"`
	IsBlocked bool   `json:"isBlocked"`
	Role      string `json:"role,omitempty"`
}

func toResponse(u *models.User) userResponse {
	out := userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Company:   u.Company,
		JobTitle:  u.JobTitle,
		IsBlocked: u.IsBlocked,
	}

	if u.Role != nil {
		out.Role = u.Role.Name
	}

	return out
}

// List returns all user accounts.
func (s *Service) List(c *fiber.Ctx) error {
	users, err := userctl.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("failed to list users")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	out := make([]userResponse, 0, len(users))
	for i := range users {
		out = append(out, toResponse(&users[i]))
	}

	return c.JSON(out)
}

type createRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=100"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone" validate:"max=50"`
	Company  string `json:"company" validate:"max=100"`
	JobTitle string `json:"jobTitle" validate:"max=100"`
	RoleID   *uint  `json:"roleId"`
}

// Create creates a user account.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user := &models.User{
		Email:    req.Email,
		Name:     req.Name,
		Phone:    req.Phone,
		Company:  req.Company,
		JobTitle: req.JobTitle,
		RoleID:   req.RoleID,
	}

	created, err := userctl.Create(s.db, user, req.Password)
	if err != nil {
		if errors.Is(err, userctl.ErrEmailTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, userctl.ErrEmailEmpty) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to create user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(toResponse(created))
}

// Get returns one user account.
func (s *Service) Get(c *fiber.Ctx) error {
	user, err := userctl.Get(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to load user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(toResponse(user))
}

type updateRequest struct {
	Name     string `json:"name" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=50"`
	Company  string `json:"company" validate:"max=100"`
	JobTitle string `json:"jobTitle" validate:"max=100"`
	RoleID   *uint  `json:"roleId"`
}

// Update updates profile fields and the role assignment. A role change is
// effective on the user's next request.
func (s *Service) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	user, err := userctl.Update(s.db, c.Params("id"), req.Name, req.Phone, req.Company, req.JobTitle, req.RoleID)
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to update user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(toResponse(user))
}

type blockedRequest struct {
	Blocked bool `json:"blocked"`
}

// SetBlocked blocks or unblocks an account. A blocked account keeps its role
// but is denied every request from its next one onward.
func (s *Service) SetBlocked(c *fiber.Ctx) error {
	var req blockedRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	grantee := authz.GranteeFromCtx(c)
	if grantee.Principal.ID == c.Params("id") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot block own account"})
	}

	err := userctl.SetBlocked(s.db, c.Params("id"), req.Blocked)
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to set blocked flag")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Delete soft deletes a user account.
func (s *Service) Delete(c *fiber.Ctx) error {
	grantee := authz.GranteeFromCtx(c)
	if grantee.Principal.ID == c.Params("id") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot delete own account"})
	}

	err := userctl.Delete(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, userctl.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to delete user")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
