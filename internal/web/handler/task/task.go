// Package task provides the JSON API handlers for project tasks.
package task

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	taskctl "github.com/buildtrack/buildtrack/internal/db/controller/task"
	"github.com/buildtrack/buildtrack/internal/db/models"
	"github.com/buildtrack/buildtrack/internal/web/handler"
)

const (
	// Path is the base path for the task endpoints.
	Path = handler.APIPath + "/tasks"
)

// Service provides CRUD operations for tasks.
type Service struct {
	handler.Service
	cfg       *config.Config
	db        *gorm.DB
	validator *validator.Validate
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. Creating a task requires write access to the owning
// project, so the create route runs the project guard, not the task guard.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, authService *authz.Service) error {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return nil
	}

	s.db = db
	s.cfg = cfg
	s.validator = validator.New()

	app.Get(Path,
		authService.Require(authz.ActionRead, authz.ResourceTask),
		s.List,
	)
	app.Post(Path,
		authService.Require(authz.ActionCreate, authz.ResourceTask),
		authService.RequireProjectAccess(authz.ActionUpdate),
		s.Create,
	)
	app.Get(Path+"/:id",
		authService.RequireTaskAccess(authz.ActionRead),
		s.Get,
	)
	app.Put(Path+"/:id",
		authService.RequireTaskAccess(authz.ActionUpdate),
		s.Update,
	)
	app.Delete(Path+"/:id",
		authService.RequireTaskAccess(authz.ActionDelete),
		s.Delete,
	)

	return nil
}

// List returns the tasks visible to the caller, optionally narrowed to one
// project via the projectId query parameter. Admin roles and the staff roles
// holding a task grant see every row; managers and subcontractors are
// narrowed to their own.
func (s *Service) List(c *fiber.Ctx) error {
	grantee := authz.GranteeFromCtx(c)

	scope := taskctl.ScopeAll

	switch grantee.Role.Name {
	case authz.RoleProjectManager:
		scope = taskctl.Scope{ManagerID: grantee.Principal.ID}
	case authz.RoleSubcontractor, authz.RoleVendor:
		scope = taskctl.Scope{AssigneeID: grantee.Principal.ID}
	case authz.RoleClient:
		// client project linkage is not wired yet, so clients list nothing
		scope = taskctl.Scope{}
	}

	scope.ProjectID = c.Query("projectId")

	tasks, err := taskctl.GetAll(s.db, scope)
	if err != nil {
		log.Error().Err(err).Msg("failed to list tasks")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(tasks)
}

type createRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	ProjectID   string     `json:"projectId" validate:"required"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
}

// Create creates a task under a project.
func (s *Service) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	task := &models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		Priority:    req.Priority,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		DueDate:     req.DueDate,
	}

	created, err := taskctl.Create(s.db, task)
	if err != nil {
		if errors.Is(err, taskctl.ErrTitleEmpty) || errors.Is(err, taskctl.ErrProjectEmpty) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}

		log.Error().Err(err).Msg("failed to create task")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

// Get returns one task.
func (s *Service) Get(c *fiber.Ctx) error {
	task, err := taskctl.Get(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, taskctl.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to load task")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(task)
}

type updateRequest struct {
	Title       *string    `json:"title" validate:"omitempty,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=2000"`
	Status      *string    `json:"status"`
	Priority    *int       `json:"priority"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"dueDate"`
}

// Update applies a partial update to a task. Subcontractors may move the
// status of tasks assigned to them but never reassign a task, whatever their
// resource-level grants say.
func (s *Service) Update(c *fiber.Ctx) error {
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := s.validator.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	grantee := authz.GranteeFromCtx(c)

	if grantee.Role.Name == authz.RoleSubcontractor && req.AssigneeID != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "subcontractors cannot reassign tasks",
			"role":  grantee.Role.Name,
		})
	}

	changes := map[string]interface{}{}

	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Status != nil {
		changes["status"] = *req.Status
	}
	if req.Priority != nil {
		changes["priority"] = *req.Priority
	}
	if req.AssigneeID != nil {
		changes["assignee_id"] = *req.AssigneeID
	}
	if req.DueDate != nil {
		changes["due_date"] = *req.DueDate
	}

	task, err := taskctl.Update(s.db, c.Params("id"), changes)
	if err != nil {
		if errors.Is(err, taskctl.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to update task")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.JSON(task)
}

// Delete deletes a task. The guard already rejects subcontractors here, even
// for tasks assigned to them.
func (s *Service) Delete(c *fiber.Ctx) error {
	err := taskctl.Delete(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, taskctl.ErrTaskNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
		}

		log.Error().Err(err).Msg("failed to delete task")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
