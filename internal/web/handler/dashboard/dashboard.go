// Package dashboard provides the summary endpoint behind the landing view.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	"github.com/buildtrack/buildtrack/internal/db/models"
	"github.com/buildtrack/buildtrack/internal/web/handler"
)

const (
	// Path is the path for the dashboard endpoint.
	Path = handler.APIPath + "/dashboard"
)

// Service is the dashboard handler service.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
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

	app.Get(Path,
		authService.Require(authz.ActionRead, authz.ResourceDashboard),
		s.Get,
	)

	return nil
}

// Get returns entity counts scoped to what the caller may see. Counts follow
// the same row scoping as the listings: a manager counts their own projects,
// not everyone's.
func (s *Service) Get(c *fiber.Ctx) error {
	grantee := authz.GranteeFromCtx(c)

	var (
		projects int64
		tasks    int64
		clients  int64
	)

	countProjects := grantee.Can(authz.ActionRead, authz.ResourceProject)
	countTasks := grantee.Can(authz.ActionRead, authz.ResourceTask)
	countClients := grantee.Can(authz.ActionRead, authz.ResourceClient)

	projectTx := s.db.Model(&models.Project{})
	taskTx := s.db.Model(&models.Task{})

	switch {
	case grantee.IsAdmin():
	case grantee.Role.Name == authz.RoleProjectManager:
		projectTx = projectTx.Where("manager_id = ?", grantee.Principal.ID)
		taskTx = taskTx.Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.manager_id = ?", grantee.Principal.ID)
	case grantee.Role.Name == authz.RoleSubcontractor, grantee.Role.Name == authz.RoleVendor:
		taskTx = taskTx.Where("assignee_id = ?", grantee.Principal.ID)
		countProjects = false
	case grantee.Role.Name == authz.RoleClient:
		// client project linkage is not wired yet, so clients count nothing
		countProjects = false
		countTasks = false
	}

	if countProjects {
		if err := projectTx.Count(&projects).Error; err != nil {
			log.Error().Err(err).Msg("failed to count projects")
		}
	}

	if countTasks {
		if err := taskTx.Count(&tasks).Error; err != nil {
			log.Error().Err(err).Msg("failed to count tasks")
		}
	}

	if countClients {
		if err := s.db.Model(&models.Client{}).Count(&clients).Error; err != nil {
			log.Error().Err(err).Msg("failed to count clients")
		}
	}

	return c.JSON(fiber.Map{
		"role":     grantee.Role.Name,
		"projects": projects,
		"tasks":    tasks,
		"clients":  clients,
	})
}
