// Package project provides CRUD operations for construction projects.
//
// Listing is scope-aware: the caller passes the scope derived from its role
// and the query narrows to the rows that role owns. Single-row access control
// is not done here; the authorization layer checks ownership before the
// controller runs.
package project

import (
	"errors"

	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/db/models"
)

const (
	idQueryPattern = "id = ?"
)

var (
	// ErrProjectNotFound is returned when a project is not found.
	ErrProjectNotFound = errors.New("project not found")
	// ErrNameEmpty is returned when attempting to create a project with an empty name.
	ErrNameEmpty = errors.New("project name cannot be empty")
	// ErrManagerEmpty is returned when attempting to create a project without a manager.
	ErrManagerEmpty = errors.New("project manager cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Scope narrows a listing to the rows the caller owns.
type Scope struct {
	// All lists every row (admin roles and read-everything roles).
	All bool
	// ManagerID narrows to projects managed by this user.
	ManagerID string
	// ClientID narrows to projects built for this client.
	ClientID string
}

// ScopeAll is the unrestricted listing scope.
var ScopeAll = Scope{All: true}

// Get retrieves a project by id with manager and client preloaded.
func Get(db *gorm.DB, id string) (*models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var project models.Project
	result := db.Preload("Manager").Preload("Client").Where(idQueryPattern, id).First(&project)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, result.Error
	}

	return &project, nil
}

// GetAll retrieves projects within the given scope, newest first.
func GetAll(db *gorm.DB, scope Scope) ([]models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.Preload("Client").Order("created_at DESC")

	switch {
	case scope.All:
	case scope.ManagerID != "":
		tx = tx.Where("manager_id = ?", scope.ManagerID)
	case scope.ClientID != "":
		tx = tx.Where("client_id = ?", scope.ClientID)
	default:
		// unknown scope lists nothing rather than everything
		return []models.Project{}, nil
	}

	var projects []models.Project
	result := tx.Find(&projects)
	if result.Error != nil {
		return nil, result.Error
	}

	return projects, nil
}

// Create creates a new project.
func Create(db *gorm.DB, project *models.Project) (*models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if project == nil || project.Name == "" {
		return nil, ErrNameEmpty
	}
	if project.ManagerID == "" {
		return nil, ErrManagerEmpty
	}

	if project.Status == "" {
		project.Status = models.ProjectStatusPlanning
	}

	result := db.Create(project)
	if result.Error != nil {
		return nil, result.Error
	}

	return project, nil
}

// Update applies the given field changes to a project.
func Update(db *gorm.DB, id string, changes map[string]interface{}) (*models.Project, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var project models.Project
	result := db.Where(idQueryPattern, id).First(&project)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, result.Error
	}

	result = db.Model(&project).Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}

	return &project, nil
}

// Delete deletes a project by id. Its tasks go with it (CASCADE).
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(idQueryPattern, id).Delete(&models.Project{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProjectNotFound
	}

	return nil
}
