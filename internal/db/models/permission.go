package models

import "time"

// Permission represents a specific permission in the authorization system.
// A permission is an (action, resource) pair; Name is the flattened
// "action:resource" form used in API responses and request context.
// Permissions are immutable once created and are seeded lazily from the
// grant matrix.
type Permission struct {
	// ID is the unique identifier for the permission.
	ID uint `gorm:"primaryKey"`
	// Name is the unique permission identifier in action:resource format (e.g., "read:project").
	Name string `gorm:"unique;size:100;not null"`
	// Action is the action allowed on the resource (create, read, update, delete, approve).
	Action string `gorm:"size:50;not null;uniqueIndex:idx_action_resource"`
	// Resource is the resource this permission applies to (e.g., "project", "work_orders").
	Resource string `gorm:"size:100;not null;uniqueIndex:idx_action_resource"`
	// Description provides a human-readable explanation of what this permission grants.
	Description string `gorm:"size:255"`
	// CreatedAt is the timestamp when the permission was created (managed by GORM).
	CreatedAt time.Time
}

// TableName specifies the database table name for the Permission model.
// This overrides GORM's default pluralized table naming.
func (Permission) TableName() string {
	return "permissions"
}
