package user

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

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Role{}))

	return db
}

func TestCreateHashesPassword(t *testing.T) {
	db := setupDB(t)

	created, err := Create(db, &models.User{Email: "pm@example.com", Name: "Pat"}, "s3cret-pass")
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	assert.NotEqual(t, "s3cret-pass", created.Password)
	assert.True(t, created.VerifyPassword("s3cret-pass"))
	assert.False(t, created.VerifyPassword("wrong"))
}

func TestCreateDuplicateEmail(t *testing.T) {
	db := setupDB(t)

	_, err := Create(db, &models.User{Email: "pm@example.com"}, "x")
	require.NoError(t, err)

	_, err = Create(db, &models.User{Email: "pm@example.com"}, "y")
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = Create(db, &models.User{}, "z")
	assert.ErrorIs(t, err, ErrEmailEmpty)
}

func TestGetPreloadsRole(t *testing.T) {
	db := setupDB(t)

	role := models.Role{Name: "PROJECT_MANAGER"}
	require.NoError(t, db.Create(&role).Error)

	created, err := Create(db, &models.User{Email: "pm@example.com", RoleID: &role.ID}, "x")
	require.NoError(t, err)

	got, err := Get(db, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Role)
	assert.Equal(t, "PROJECT_MANAGER", got.Role.Name)

	byEmail, err := GetByEmail(db, "pm@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = Get(db, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSetBlocked(t *testing.T) {
	db := setupDB(t)

	created, err := Create(db, &models.User{Email: "pm@example.com"}, "x")
	require.NoError(t, err)

	require.NoError(t, SetBlocked(db, created.ID, true))

	got, err := Get(db, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsBlocked)

	require.NoError(t, SetBlocked(db, created.ID, false))

	got, err = Get(db, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsBlocked)

	assert.ErrorIs(t, SetBlocked(db, "missing", true), ErrUserNotFound)
}

func TestSetRefreshTokenID(t *testing.T) {
	db := setupDB(t)

	created, err := Create(db, &models.User{Email: "pm@example.com"}, "x")
	require.NoError(t, err)

	require.NoError(t, SetRefreshTokenID(db, created.ID, "jti-1"))

	got, err := Get(db, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "jti-1", got.RefreshTokenID)

	// logout clears it
	require.NoError(t, SetRefreshTokenID(db, created.ID, ""))

	got, err = Get(db, created.ID)
	require.NoError(t, err)
	assert.Empty(t, got.RefreshTokenID)
}

func TestDeleteIsSoft(t *testing.T) {
	db := setupDB(t)

	created, err := Create(db, &models.User{Email: "pm@example.com"}, "x")
	require.NoError(t, err)

	require.NoError(t, Delete(db, created.ID))

	_, err = Get(db, created.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// the row still exists for audit purposes
	var count int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Where("id = ?", created.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	assert.ErrorIs(t, Delete(db, created.ID), ErrUserNotFound)
}
