// Package record provides CRUD operations for module records, the schemaless
// rows behind the generated workflow modules.
package record

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/db/models"
)

const (
	idSlugQueryPattern = "id = ? AND module_slug = ?"
)

var (
	// ErrRecordNotFound is returned when a record is not found in the module.
	ErrRecordNotFound = errors.New("record not found")
	// ErrSlugEmpty is returned when the module slug is empty.
	ErrSlugEmpty = errors.New("module slug cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves one record of a module. The slug is part of the key: a valid
// record id under the wrong module is a miss, not a hit.
func Get(db *gorm.DB, slug, id string) (*models.ModuleRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if slug == "" {
		return nil, ErrSlugEmpty
	}

	var rec models.ModuleRecord
	result := db.Where(idSlugQueryPattern, id, slug).First(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}

	return &rec, nil
}

// GetAll retrieves all records of a module, newest first.
func GetAll(db *gorm.DB, slug string) ([]models.ModuleRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if slug == "" {
		return nil, ErrSlugEmpty
	}

	var recs []models.ModuleRecord
	result := db.Where("module_slug = ?", slug).Order("created_at DESC").Find(&recs)
	if result.Error != nil {
		return nil, result.Error
	}

	return recs, nil
}

// Create creates a new record in a module.
func Create(db *gorm.DB, slug string, data []byte, createdByID string) (*models.ModuleRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if slug == "" {
		return nil, ErrSlugEmpty
	}

	rec := &models.ModuleRecord{
		ModuleSlug:  slug,
		Data:        datatypes.JSON(data),
		CreatedByID: &createdByID,
	}

	result := db.Create(rec)
	if result.Error != nil {
		return nil, result.Error
	}

	return rec, nil
}

// Update replaces the payload of a record.
func Update(db *gorm.DB, slug, id string, data []byte, updatedByID string) (*models.ModuleRecord, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if slug == "" {
		return nil, ErrSlugEmpty
	}

	var rec models.ModuleRecord
	result := db.Where(idSlugQueryPattern, id, slug).First(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}

	rec.Data = datatypes.JSON(data)
	rec.UpdatedByID = &updatedByID

	result = db.Save(&rec)
	if result.Error != nil {
		return nil, result.Error
	}

	return &rec, nil
}

// Delete deletes a record of a module.
func Delete(db *gorm.DB, slug, id string) error {
	if db == nil {
		return ErrDBNil
	}
	if slug == "" {
		return ErrSlugEmpty
	}

	result := db.Where(idSlugQueryPattern, id, slug).Delete(&models.ModuleRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}
