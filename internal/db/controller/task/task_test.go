package task

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/buildtrack/buildtrack/internal/db/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Project{},
		&models.Task{},
	))

	return db
}

type fixture struct {
	pm1, pm2, sub      *models.User
	project1, project2 *models.Project
}

func newFixture(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{
		pm1: &models.User{Email: "pm1@example.com"},
		pm2: &models.User{Email: "pm2@example.com"},
		sub: &models.User{Email: "sub@example.com"},
	}
	require.NoError(t, db.Create(f.pm1).Error)
	require.NoError(t, db.Create(f.pm2).Error)
	require.NoError(t, db.Create(f.sub).Error)

	f.project1 = &models.Project{Name: "One", ManagerID: f.pm1.ID}
	f.project2 = &models.Project{Name: "Two", ManagerID: f.pm2.ID}
	require.NoError(t, db.Create(f.project1).Error)
	require.NoError(t, db.Create(f.project2).Error)

	return f
}

func TestCreateDefaultsStatus(t *testing.T) {
	db := setupDB(t)
	f := newFixture(t, db)

	created, err := Create(db, &models.Task{Title: "Framing", ProjectID: f.project1.ID})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusOpen, created.Status)

	_, err = Create(db, &models.Task{ProjectID: f.project1.ID})
	assert.ErrorIs(t, err, ErrTitleEmpty)

	_, err = Create(db, &models.Task{Title: "Orphan"})
	assert.ErrorIs(t, err, ErrProjectEmpty)
}

func TestGetAllScoping(t *testing.T) {
	db := setupDB(t)
	f := newFixture(t, db)

	_, err := Create(db, &models.Task{Title: "A", ProjectID: f.project1.ID, AssigneeID: &f.sub.ID})
	require.NoError(t, err)
	_, err = Create(db, &models.Task{Title: "B", ProjectID: f.project1.ID})
	require.NoError(t, err)
	_, err = Create(db, &models.Task{Title: "C", ProjectID: f.project2.ID})
	require.NoError(t, err)

	all, err := GetAll(db, ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// manager scope follows the owning project
	mine, err := GetAll(db, Scope{ManagerID: f.pm1.ID})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	// assignee scope
	assigned, err := GetAll(db, Scope{AssigneeID: f.sub.ID})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "A", assigned[0].Title)

	// project filter stacks on any scope
	inProject, err := GetAll(db, Scope{All: true, ProjectID: f.project2.ID})
	require.NoError(t, err)
	require.Len(t, inProject, 1)
	assert.Equal(t, "C", inProject[0].Title)

	none, err := GetAll(db, Scope{})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUpdateAndDelete(t *testing.T) {
	db := setupDB(t)
	f := newFixture(t, db)

	created, err := Create(db, &models.Task{Title: "Framing", ProjectID: f.project1.ID})
	require.NoError(t, err)

	updated, err := Update(db, created.ID, map[string]interface{}{
		"status":      string(models.TaskStatusInProgress),
		"assignee_id": f.sub.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusInProgress, updated.Status)

	got, err := Get(db, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssigneeID)
	assert.Equal(t, f.sub.ID, *got.AssigneeID)
	assert.Equal(t, f.project1.ID, got.Project.ID)

	require.NoError(t, Delete(db, created.ID))
	assert.ErrorIs(t, Delete(db, created.ID), ErrTaskNotFound)

	_, err = Update(db, created.ID, map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, ErrTaskNotFound)
}
