// Package models contains database model definitions.
package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// User represents a user account in the system.
// Every user has at most one role; a user without a role has no grants at
// all (authorization fails closed). A blocked user is denied everything
// regardless of role.
type User struct {
	// ID is the unique identifier for the user.
	ID string `gorm:"primaryKey;size:36"`
	// Email is the unique email address used for login.
	Email string `gorm:"unique;size:255;not null"`
	// Name is the user's full name.
	Name string `gorm:"size:100"`
	// Password is the Argon2id hashed password.
	Password string `gorm:"size:255"`
	// Phone is an optional contact number.
	Phone string `gorm:"size:50"`
	// Company is the user's company name (subcontractors, vendors).
	Company string `gorm:"size:100"`
	// JobTitle is the user's job title.
	JobTitle string `gorm:"size:100"`
	// IsBlocked denies every request from this account when true, regardless of role.
	IsBlocked bool `gorm:"default:false"`
	// RefreshTokenID is the jti of the user's current refresh token.
	// Empty means logged out; a refresh with a stale jti is rejected.
	RefreshTokenID string `gorm:"size:64"`
	// RoleID is the ID of the role assigned to this user. Nil means no role
	// and therefore no permissions.
	RoleID *uint `gorm:"column:role_id"`
	// Role is the associated role (enforced with a foreign key constraint).
	Role *Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:SET NULL,OnUpdate:CASCADE"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
	// DeletedAt is the soft delete timestamp (managed by GORM).
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}

	return nil
}

// HashPassword hashes a plaintext password using the Argon2id algorithm.
// This function should be used when creating or updating user passwords.
// It uses the default Argon2id parameters for secure password hashing.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword verifies a plaintext password against the user's stored hashed password.
// It uses constant-time comparison to prevent timing attacks.
// Returns true if the password matches, false otherwise.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
