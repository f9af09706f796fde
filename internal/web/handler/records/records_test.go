package records

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/buildtrack/buildtrack/internal/authz"
	"github.com/buildtrack/buildtrack/internal/config"
	"github.com/buildtrack/buildtrack/internal/db/models"
)

type testEnv struct {
	app *fiber.App
	db  *gorm.DB
}

// setup builds a guarded app over an in-memory database with the grant
// matrix materialized. Requests authenticate by email via the X-Test-User
// header, standing in for the token middleware.
func setup(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
		&models.ModuleRecord{},
	))

	perms := map[string]uint{}

	for _, grants := range authz.SeedGrants() {
		for _, grant := range grants {
			if _, ok := perms[grant.String()]; ok {
				continue
			}

			perm := models.Permission{
				Name:     grant.String(),
				Action:   string(grant.Action),
				Resource: grant.Resource,
			}
			require.NoError(t, db.Create(&perm).Error)

			perms[grant.String()] = perm.ID
		}
	}

	for _, name := range authz.SystemRoles() {
		role := models.Role{Name: name, DisplayName: authz.RoleDisplayNames[name], IsSystem: true}
		require.NoError(t, db.Create(&role).Error)

		for _, grant := range authz.SeedGrants()[name] {
			rp := models.RolePermission{RoleID: role.ID, PermissionID: perms[grant.String()]}
			require.NoError(t, db.Create(&rp).Error)
		}
	}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if email := c.Get("X-Test-User"); email != "" {
			var user models.User
			if err := db.Where("email = ?", email).First(&user).Error; err == nil {
				c.Locals(authz.LocalPrincipal, &authz.Principal{ID: user.ID, Email: user.Email})
			}
		}

		return c.Next()
	})

	svc := Service{}
	require.NoError(t, svc.Init(app, &config.Config{}, db, authz.NewService(db)))

	return &testEnv{app: app, db: db}
}

func (e *testEnv) createUser(t *testing.T, email, roleName string) *models.User {
	t.Helper()

	var role models.Role
	require.NoError(t, e.db.Where("name = ?", roleName).First(&role).Error)

	user := models.User{Email: email, Password: "x", RoleID: &role.ID}
	require.NoError(t, e.db.Create(&user).Error)

	return &user
}

func (e *testEnv) request(t *testing.T, method, path, asEmail, body string) *http.Response {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if asEmail != "" {
		req.Header.Set("X-Test-User", asEmail)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)

	return resp
}

func recordPath(slug string, extra ...string) string {
	p := strings.Replace(Path, ":slug", slug, 1)
	if len(extra) > 0 {
		p += "/" + strings.Join(extra, "/")
	}

	return p
}

func TestRecordLifecycle(t *testing.T) {
	env := setup(t)
	coordinator := env.createUser(t, "coord@example.com", authz.RoleProjectCoordinator)

	resp := env.request(t, "POST", recordPath("work-orders"), coordinator.Email, `{"ref":"WO-1"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created models.ModuleRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.ID)
	require.NotNil(t, created.CreatedByID)
	assert.Equal(t, coordinator.ID, *created.CreatedByID)

	resp = env.request(t, "GET", recordPath("work-orders"), coordinator.Email, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var list []models.ModuleRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)

	resp = env.request(t, "PUT", recordPath("work-orders", created.ID), coordinator.Email, `{"ref":"WO-1","done":true}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated models.ModuleRecord
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	require.NotNil(t, updated.UpdatedByID)
	assert.Equal(t, coordinator.ID, *updated.UpdatedByID)

	resp = env.request(t, "DELETE", recordPath("work-orders", created.ID), coordinator.Email, "")
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)

	resp = env.request(t, "GET", recordPath("work-orders", created.ID), coordinator.Email, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestUnknownModuleIs404(t *testing.T) {
	env := setup(t)
	coordinator := env.createUser(t, "coord@example.com", authz.RoleProjectCoordinator)

	resp := env.request(t, "GET", recordPath("no-such-module"), coordinator.Email, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestWriteRequiresWriteGrant(t *testing.T) {
	env := setup(t)
	coordinator := env.createUser(t, "coord@example.com", authz.RoleProjectCoordinator)

	// coordinators read procurement but do not write it
	resp := env.request(t, "GET", recordPath("procurement"), coordinator.Email, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.request(t, "POST", recordPath("procurement"), coordinator.Email, `{"item":"steel"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "create:procurement", body["required"])
}

func TestMalformedPayloadIs400(t *testing.T) {
	env := setup(t)
	coordinator := env.createUser(t, "coord@example.com", authz.RoleProjectCoordinator)

	resp := env.request(t, "POST", recordPath("work-orders"), coordinator.Email, `{"ref":`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
