// Package web provides the HTTP service exposing the BuildTrack JSON API.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	fiberlogger "github.com/buildtrack/buildtrack/internal/logger/adapter/fiber"
	"github.com/buildtrack/buildtrack/internal/token"
	adminrole "github.com/buildtrack/buildtrack/internal/web/handler/admin/role"
	adminuser "github.com/buildtrack/buildtrack/internal/web/handler/admin/user"
	authhandler "github.com/buildtrack/buildtrack/internal/web/handler/auth"
	"github.com/buildtrack/buildtrack/internal/web/handler/dashboard"
	"github.com/buildtrack/buildtrack/internal/web/handler/project"
	"github.com/buildtrack/buildtrack/internal/web/handler/records"
	"github.com/buildtrack/buildtrack/internal/web/handler/task"
	authmw "github.com/buildtrack/buildtrack/internal/web/middleware/auth"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *authz.Service
	tokens       *token.Manager
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration.
func New(cfg *config.Config, db *gorm.DB) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        "BuildTrack",
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	// access log middleware
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: "/checkalive",
	}))

	tokens := token.NewManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.JWTRefreshSecret,
		cfg.Auth.AccessTokenTTL,
		cfg.Auth.RefreshTokenTTL,
	)

	// principal extraction (never denies; the guards do)
	app.Use(authmw.Middleware(tokens))

	authService := authz.NewService(db)

	// init web service
	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
		tokens:      tokens,
	}
	service.alive.Store(true)

	// init handlers (they register their own routes with permission checks)
	if err := authhandler.Handler.Init(app, cfg, db, authService, tokens); err != nil {
		log.Fatal().Err(err).Msg("failed to init auth handler")
	}

	dashboard.Handler.Init(app, cfg, db, authService)
	project.Handler.Init(app, cfg, db, authService)
	task.Handler.Init(app, cfg, db, authService)
	records.Handler.Init(app, cfg, db, authService)
	adminuser.Handler.Init(app, cfg, db, authService)
	adminrole.Handler.Init(app, cfg, db, authService)

	// aliveness endpoint for load balancers
	app.Get("/checkalive", func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	return service
}
