package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ModuleRecord is a schemaless row belonging to a generated module.
// The set of modules (work orders, CRM leads, procurement, ...) comes from an
// external configuration source; records carry their payload as raw JSON and
// are addressed by the module's slug. Authorization happens against the
// canonical resource the slug resolves to, never against the slug itself.
type ModuleRecord struct {
	// ID is the unique identifier for the record.
	ID string `gorm:"primaryKey;size:36"`
	// ModuleSlug is the externally visible module identifier (e.g., "work-orders").
	ModuleSlug string `gorm:"size:100;index;not null"`
	// Data is the raw JSON payload of the record. datatypes.JSON keeps it raw
	// in API responses instead of base64.
	Data datatypes.JSON `gorm:"type:json"`
	// CreatedByID is the user who created the record.
	CreatedByID *string `gorm:"size:36"`
	// UpdatedByID is the user who last updated the record.
	UpdatedByID *string `gorm:"size:36"`
	// CreatedAt is the timestamp when the record was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the record was last updated (managed by GORM).
	UpdatedAt time.Time
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (r *ModuleRecord) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	return nil
}

// TableName specifies the database table name for the ModuleRecord model.
func (ModuleRecord) TableName() string {
	return "module_records"
}
