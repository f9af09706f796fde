package models

import "time"

// Role represents a role in the role-based access control (RBAC) system.
// Roles are collections of permissions that are assigned to users.
// System roles (PROJECT_MANAGER, CLIENT, ...) are created at seed time and
// cannot be deleted or renamed; custom roles are managed by administrators.
type Role struct {
	// ID is the unique identifier for the role.
	ID uint `gorm:"primaryKey"`
	// Name is the unique system name of the role (e.g., "PROJECT_MANAGER").
	Name string `gorm:"unique;size:100;not null"`
	// DisplayName is the human readable name shown in the UI (e.g., "Project Manager").
	DisplayName string `gorm:"size:100"`
	// Description provides a human-readable description of the role's purpose.
	Description string `gorm:"size:255"`
	// IsSystem indicates if this is a system role that cannot be deleted or renamed.
	IsSystem bool `gorm:"default:false"`
	// CreatedAt is the timestamp when the role was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the role was last updated (managed by GORM).
	UpdatedAt time.Time
}

// TableName specifies the database table name for the Role model.
// This overrides GORM's default pluralized table naming.
func (Role) TableName() string {
	return "roles"
}
