// Package daemon wires the database, seed data and web service into the
// running application.
package daemon

import (
	"fmt"

	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	"github.com/buildtrack/buildtrack/internal/db/dsn"
	"github.com/buildtrack/buildtrack/internal/db/models"
	"github.com/buildtrack/buildtrack/internal/modules"
	"github.com/buildtrack/buildtrack/internal/web"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service.
func (d *Daemon) Start() error {
	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// WaitShutdown blocks until the web service has shut down gracefully.
func (d *Daemon) WaitShutdown() {
	d.webService.WaitShutdown()
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	// the module slug table must resolve cleanly before any request is served
	if err := modules.Validate(authz.KnownResource); err != nil {
		log.Fatal().Err(err).Msg("module registry validation failed")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg))
	if cfg.DB.Engine == "postgres" {
		dbDriver = gormpostgres.Open(dsn.Create(cfg))
	}

	db, err := gorm.Open(dbDriver, &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
		return nil
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.Client{},
		&models.Project{},
		&models.Task{},
		&models.ModuleRecord{},
	); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
		return nil
	}

	if err = Seed(cfg, db); err != nil {
		log.Fatal().Err(err).Msg("failed to seed database")
		return nil
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db),
	}
}
