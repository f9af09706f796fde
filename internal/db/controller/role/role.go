// Package role provides CRUD operations for managing roles and their
// permission assignments.
package role

import (
	"errors"

	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrRoleNotFound is returned when a role is not found.
	ErrRoleNotFound = errors.New("role not found")
	// ErrRoleNameEmpty is returned when attempting to create a role with an empty name.
	ErrRoleNameEmpty = errors.New("role name cannot be empty")
	// ErrRoleAlreadyExists is returned when attempting to create a role that already exists.
	ErrRoleAlreadyExists = errors.New("role already exists")
	// ErrSystemRole is returned when attempting to rename or delete a system role.
	ErrSystemRole = errors.New("system roles cannot be renamed or deleted")
	// ErrRoleInUse is returned when attempting to delete a role that users still hold.
	ErrRoleInUse = errors.New("role is still assigned to users")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves a role by its name.
func Get(db *gorm.DB, name string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var role models.Role
	result := db.Where(nameQueryPattern, name).First(&role)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &role, nil
}

// GetByID retrieves a role by its ID.
func GetByID(db *gorm.DB, id uint) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role
	result := db.First(&role, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	return &role, nil
}

// GetAll retrieves all roles, ordered by name.
func GetAll(db *gorm.DB) ([]models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var roles []models.Role
	result := db.Order("name").Find(&roles)
	if result.Error != nil {
		return nil, result.Error
	}

	return roles, nil
}

// Create creates a new custom role.
func Create(db *gorm.DB, name, displayName, description string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrRoleNameEmpty
	}

	var existing models.Role
	result := db.Where(nameQueryPattern, name).First(&existing)
	if result.Error == nil {
		return nil, ErrRoleAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	role := &models.Role{
		Name:        name,
		DisplayName: displayName,
		Description: description,
	}

	result = db.Create(role)
	if result.Error != nil {
		return nil, result.Error
	}

	return role, nil
}

// Update updates the display name and description of a role. The system name
// of a system role is immutable; the grant matrix and seeder refer to it.
func Update(db *gorm.DB, id uint, name, displayName, description string) (*models.Role, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var role models.Role
	result := db.First(&role, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRoleNotFound
		}
		return nil, result.Error
	}

	if name != "" && name != role.Name {
		if role.IsSystem {
			return nil, ErrSystemRole
		}
		role.Name = name
	}

	role.DisplayName = displayName
	role.Description = description

	result = db.Save(&role)
	if result.Error != nil {
		return nil, result.Error
	}

	return &role, nil
}

// Delete deletes a custom role. System roles and roles still held by users
// cannot be deleted.
func Delete(db *gorm.DB, id uint) error {
	if db == nil {
		return ErrDBNil
	}

	var role models.Role
	result := db.First(&role, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return result.Error
	}

	if role.IsSystem {
		return ErrSystemRole
	}

	var holders int64
	result = db.Model(&models.User{}).Where("role_id = ?", id).Count(&holders)
	if result.Error != nil {
		return result.Error
	}
	if holders > 0 {
		return ErrRoleInUse
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Role{}, id).Error
	})
}

// GetPermissions retrieves the permissions assigned to a role, ordered by name.
func GetPermissions(db *gorm.DB, roleID uint) ([]models.Permission, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var perms []models.Permission
	result := db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.name").
		Find(&perms)
	if result.Error != nil {
		return nil, result.Error
	}

	return perms, nil
}

// ReplacePermissions replaces the full permission assignment of a role in one
// transaction. The change takes effect on the next request; permission sets
// are read fresh per authorization check.
func ReplacePermissions(db *gorm.DB, roleID uint, permissionIDs []uint) error {
	if db == nil {
		return ErrDBNil
	}

	var role models.Role
	result := db.First(&role, roleID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return ErrRoleNotFound
		}
		return result.Error
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}

		for _, pid := range permissionIDs {
			rp := models.RolePermission{RoleID: roleID, PermissionID: pid}
			if err := tx.Create(&rp).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
