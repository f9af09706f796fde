// Package user provides CRUD operations for managing user accounts.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/db/models"
)

const (
	emailQueryPattern = "email = ?"
	idQueryPattern    = "id = ?"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailEmpty is returned when attempting to create a user with an empty email.
	ErrEmailEmpty = errors.New("email cannot be empty")
	// ErrEmailTaken is returned when attempting to use an email that already exists.
	ErrEmailTaken = errors.New("email already in use")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a user by id, with the role preloaded.
func Get(db *gorm.DB, id string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.Preload("Role").Where(idQueryPattern, id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// GetByEmail retrieves a user by email, with the role preloaded.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if email == "" {
		return nil, ErrEmailEmpty
	}

	var user models.User
	result := db.Preload("Role").Where(emailQueryPattern, email).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// GetAll retrieves all users with their roles, ordered by email.
func GetAll(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var users []models.User
	result := db.Preload("Role").Order("email").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}

	return users, nil
}

// Create creates a new user account. The password arrives in plaintext and is
// hashed here; roleID may be nil for an account without any grants.
func Create(db *gorm.DB, user *models.User, password string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if user == nil || user.Email == "" {
		return nil, ErrEmailEmpty
	}

	var existing models.User
	result := db.Where(emailQueryPattern, user.Email).First(&existing)
	if result.Error == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	user.Password = models.HashPassword(password)

	result = db.Create(user)
	if result.Error != nil {
		return nil, result.Error
	}

	return user, nil
}

// Update updates the profile fields and role assignment of a user.
func Update(db *gorm.DB, id string, name, phone, company, jobTitle string, roleID *uint) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.Where(idQueryPattern, id).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	user.Name = name
	user.Phone = phone
	user.Company = company
	user.JobTitle = jobTitle
	user.RoleID = roleID

	result = db.Save(&user)
	if result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

// SetBlocked sets or clears the blocked flag. Blocking takes effect on the
// user's next request; no token invalidation is needed because role and
// blocked state are read fresh per request.
func SetBlocked(db *gorm.DB, id string, blocked bool) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.User{}).Where(idQueryPattern, id).Update("is_blocked", blocked)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetPassword replaces the user's password hash.
func SetPassword(db *gorm.DB, id string, password string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.User{}).Where(idQueryPattern, id).Update("password", models.HashPassword(password))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetRefreshTokenID stores the jti of the user's current refresh token.
// An empty id revokes it (logout).
func SetRefreshTokenID(db *gorm.DB, id string, tokenID string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Model(&models.User{}).Where(idQueryPattern, id).Update("refresh_token_id", tokenID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Delete soft deletes a user by id.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(idQueryPattern, id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
