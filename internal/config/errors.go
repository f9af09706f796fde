package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrEmptyJWTSecret error if config auth.jwtsecret is empty.
	ErrEmptyJWTSecret = errors.New("toml config auth.jwtsecret can not be empty")

	// ErrEmptyJWTRefreshSecret error if config auth.jwtrefreshsecret is empty.
	ErrEmptyJWTRefreshSecret = errors.New("toml config auth.jwtrefreshsecret can not be empty")

	// ErrSameJWTSecrets error if access and refresh tokens would share a signing secret.
	ErrSameJWTSecrets = errors.New("toml config auth.jwtsecret and auth.jwtrefreshsecret must differ")

	// ErrUnknownDBEngine error if config db.engine is not a supported gorm engine.
	ErrUnknownDBEngine = errors.New("toml config db.engine must be mysql or postgres")
)
