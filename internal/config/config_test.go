package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigTOML = `
Title = "BuildTrack"

[Webserver]
Port = 8080
URL = "http://localhost:8080"
Domain = "localhost"

[DB]
Engine = "mysql"
Host = "127.0.0.1"
Port = 3306
User = "buildtrack"
Password = "secret"
Name = "buildtrack"

[Auth]
JWTSecret = "access-secret"
JWTRefreshSecret = "refresh-secret"

[Seed]
AdminEmail = "admin@buildtrack.com"
AdminName = "Admin"
AdminPassword = "changeme"
`

// writeTestConfig writes a main.toml into a temp dir and returns the dir path
// with a trailing separator, as ReadConfig expects.
func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "main.toml"), []byte(content), 0o600)
	require.NoError(t, err, "failed to write test config")

	return dir + string(filepath.Separator)
}

func TestReadConfig(t *testing.T) {
	cfg, err := ReadConfig(writeTestConfig(t, testConfigTOML))
	require.NoError(t, err)

	assert.Equal(t, "BuildTrack", cfg.Title)
	assert.Equal(t, 8080, cfg.Webserver.Port)
	assert.Equal(t, "mysql", cfg.DB.Engine)
	assert.Equal(t, "admin@buildtrack.com", cfg.Seed.AdminEmail)

	// defaults applied by validate
	assert.Equal(t, 5, cfg.Webserver.ShutDownTime)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.RefreshTokenTTL)
}

func TestReadConfigEnvOverride(t *testing.T) {
	t.Setenv(EnvConfigJSON, `{"Webserver":{"Port":9090},"DB":{"Engine":"postgres"}}`)

	cfg, err := ReadConfig(writeTestConfig(t, testConfigTOML))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Webserver.Port)
	assert.Equal(t, "postgres", cfg.DB.Engine)
	// untouched values survive the merge
	assert.Equal(t, "http://localhost:8080", cfg.Webserver.URL)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(c *Config)
		expectedError error
	}{
		{
			name:          "missing port",
			mutate:        func(c *Config) { c.Webserver.Port = 0 },
			expectedError: ErrWebServerPortCanNotBeZero,
		},
		{
			name:          "missing url",
			mutate:        func(c *Config) { c.Webserver.URL = "" },
			expectedError: ErrEmptyURL,
		},
		{
			name:          "missing jwt secret",
			mutate:        func(c *Config) { c.Auth.JWTSecret = "" },
			expectedError: ErrEmptyJWTSecret,
		},
		{
			name:          "missing refresh secret",
			mutate:        func(c *Config) { c.Auth.JWTRefreshSecret = "" },
			expectedError: ErrEmptyJWTRefreshSecret,
		},
		{
			name: "identical secrets",
			mutate: func(c *Config) {
				c.Auth.JWTSecret = "same"
				c.Auth.JWTRefreshSecret = "same"
			},
			expectedError: ErrSameJWTSecrets,
		},
		{
			name:          "bogus db engine",
			mutate:        func(c *Config) { c.DB.Engine = "oracle" },
			expectedError: ErrUnknownDBEngine,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{
				Webserver: Webserver{Port: 8080, URL: "http://localhost"},
				Auth:      Auth{JWTSecret: "a", JWTRefreshSecret: "b"},
			}
			tc.mutate(&cfg)

			err := validate(&cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.expectedError)
		})
	}
}

func TestDumpConfig(t *testing.T) {
	cfg, err := ReadConfig(writeTestConfig(t, testConfigTOML))
	require.NoError(t, err)

	out, err := DumpConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "BuildTrack")

	outJSON, err := DumpConfigJSON(cfg)
	require.NoError(t, err)
	assert.Contains(t, outJSON, `"Title": "BuildTrack"`)
}
