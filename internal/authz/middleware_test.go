package authz

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buildtrack/buildtrack/internal/db/models"
)

// newGuardedApp builds a fiber app that injects the given principal into
// every request, mirroring what the token middleware does in production.
func newGuardedApp(principal *Principal) *fiber.App {
	app := fiber.New()

	app.Use(func(c *fiber.Ctx) error {
		if principal != nil {
			c.Locals(LocalPrincipal, principal)
		}

		return c.Next()
	})

	return app
}

func okHandler(c *fiber.Ctx) error {
	grantee := GranteeFromCtx(c)

	return c.JSON(fiber.Map{"role": grantee.Role.Name})
}

func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(body).Decode(&out))

	return out
}

func TestRequireWithoutPrincipal(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	app := newGuardedApp(nil)
	app.Get("/projects", svc.Require(ActionRead, ResourceProject), okHandler)

	resp, err := app.Test(httptest.NewRequest("GET", "/projects", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "authentication required", body["error"])
}

func TestRequireDenialNamesGrantAndRole(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	vendor := createUser(t, db, "vendor@example.com", RoleVendor)

	app := newGuardedApp(principalOf(vendor))
	app.Post("/projects", svc.Require(ActionCreate, ResourceProject), okHandler)

	resp, err := app.Test(httptest.NewRequest("POST", "/projects", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "insufficient permissions", body["error"])
	assert.Equal(t, "create:project", body["required"])
	assert.Equal(t, RoleVendor, body["role"])
}

func TestRequireAllowAttachesGrantee(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	pm := createUser(t, db, "pm@example.com", RoleProjectManager)

	app := newGuardedApp(principalOf(pm))
	app.Get("/projects", svc.Require(ActionRead, ResourceProject), okHandler)

	resp, err := app.Test(httptest.NewRequest("GET", "/projects", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, RoleProjectManager, body["role"])
}

func TestRequireBlockedUser(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	pm := createUser(t, db, "pm@example.com", RoleProjectManager)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", pm.ID).Update("is_blocked", true).Error)

	app := newGuardedApp(principalOf(pm))
	app.Get("/projects", svc.Require(ActionRead, ResourceProject), okHandler)

	resp, err := app.Test(httptest.NewRequest("GET", "/projects", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "account blocked", body["error"])
}

func TestRequireProjectAccessOwnership(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	owner := createUser(t, db, "u1@example.com", RoleProjectManager)
	other := createUser(t, db, "u2@example.com", RoleProjectManager)
	project := createProject(t, db, owner.ID)

	newApp := func(p *Principal) *fiber.App {
		app := newGuardedApp(p)
		app.Get("/projects/:id", svc.RequireProjectAccess(ActionRead), okHandler)

		return app
	}

	resp, err := newApp(principalOf(owner)).Test(httptest.NewRequest("GET", "/projects/"+project.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = newApp(principalOf(other)).Test(httptest.NewRequest("GET", "/projects/"+project.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "not owner", body["error"])
}

func TestRequireTaskAccessSubcontractorDelete(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	manager := createUser(t, db, "pm@example.com", RoleProjectManager)
	sub := createUser(t, db, "sub@example.com", RoleSubcontractor)
	project := createProject(t, db, manager.ID)
	task := createTask(t, db, project.ID, &sub.ID)

	app := newGuardedApp(principalOf(sub))
	app.Delete("/tasks/:id", svc.RequireTaskAccess(ActionDelete), okHandler)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/tasks/"+task.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestRequireModuleResolvesSlug(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	coordinator := createUser(t, db, "coord@example.com", RoleProjectCoordinator)

	app := newGuardedApp(principalOf(coordinator))
	app.Get("/modules/:slug/records", svc.RequireModule(), okHandler)
	app.Post("/modules/:slug/records", svc.RequireModule(), okHandler)

	// coordinator holds work_orders R/W: read and create both pass
	resp, err := app.Test(httptest.NewRequest("GET", "/modules/work-orders/records", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/modules/work-orders/records", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// procurement is read only for coordinators: the method decides the action
	resp, err = app.Test(httptest.NewRequest("GET", "/modules/procurement/records", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/modules/procurement/records", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "create:procurement", body["required"])
}

// TestRequireModuleUnknownSlugSkipsAuthorization proves the slug is resolved
// before any permission data is touched: with the database gone, a known
// slug fails loudly while an unknown slug still returns its 404.
func TestRequireModuleUnknownSlugSkipsAuthorization(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	pm := createUser(t, db, "pm@example.com", RoleProjectManager)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	app := newGuardedApp(principalOf(pm))
	app.Get("/modules/:slug/records", svc.RequireModule(), okHandler)

	resp, err := app.Test(httptest.NewRequest("GET", "/modules/not-a-module/records", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "unknown module", body["error"])

	resp, err = app.Test(httptest.NewRequest("GET", "/modules/work-orders/records", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestRequireSuperAdmin(t *testing.T) {
	db := setupDB(t)
	svc := NewService(db)

	root := createUser(t, db, "root@example.com", RoleSuperAdmin)
	admin := createUser(t, db, "admin@example.com", RoleOrgAdmin)

	newApp := func(p *Principal) *fiber.App {
		app := newGuardedApp(p)
		app.Put("/admin/roles/:id/permissions", svc.RequireSuperAdmin(), okHandler)

		return app
	}

	resp, err := newApp(principalOf(root)).Test(httptest.NewRequest("PUT", "/admin/roles/1/permissions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// the full-rights admin role is not the bypass role
	resp, err = newApp(principalOf(admin)).Test(httptest.NewRequest("PUT", "/admin/roles/1/permissions", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	body := decodeBody(t, resp.Body)
	assert.Equal(t, "admin access required", body["error"])
}
