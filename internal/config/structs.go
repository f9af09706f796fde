package config

import (
	"time"

	"github.com/buildtrack/buildtrack/internal/logger"
)

// Auth holds token issuing settings for the JSON API.
type Auth struct {
	// JWTSecret signs access tokens.
	JWTSecret string
	// JWTRefreshSecret signs refresh tokens. Must differ from JWTSecret.
	JWTRefreshSecret string
	// AccessTokenTTL is the lifetime of an access token.
	AccessTokenTTL time.Duration
	// RefreshTokenTTL is the lifetime of a refresh token.
	RefreshTokenTTL time.Duration
}

// Seed settings for the initial administrator account.
type Seed struct {
	AdminEmail    string
	AdminName     string
	AdminPassword string
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Auth      Auth
	Seed      Seed
	Log       logger.Log
	Title     string
	Webserver Webserver
}

// Webserver implement webserver settings.
type Webserver struct {
	CleanPath      bool   // use clean path middleware to allow multi slash requests
	DisableRecover bool   // disable recover middleware
	Domain         string // domain name for the webserver
	Port           int    // listening port for the webserver
	ShutDownTime   int    // wait time for shutdown
	URL            string // base url for the webserver
}
