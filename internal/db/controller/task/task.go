// Package task provides CRUD operations for project tasks.
//
// Listing is scope-aware like the project controller: project managers see
// tasks of projects they manage, subcontractors see tasks assigned to them.
package task

import (
	"errors"

	"gorm.io/gorm"

	"github.com/buildtrack/buildtrack/internal/db/models"
)

const (
	idQueryPattern = "id = ?"
)

var (
	// ErrTaskNotFound is returned when a task is not found.
	ErrTaskNotFound = errors.New("task not found")
	// ErrTitleEmpty is returned when attempting to create a task with an empty title.
	ErrTitleEmpty = errors.New("task title cannot be empty")
	// ErrProjectEmpty is returned when attempting to create a task without a project.
	ErrProjectEmpty = errors.New("task project cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Scope narrows a listing to the rows the caller owns.
type Scope struct {
	// All lists every row.
	All bool
	// ManagerID narrows to tasks of projects managed by this user.
	ManagerID string
	// AssigneeID narrows to tasks assigned to this user.
	AssigneeID string
	// ProjectID additionally narrows any scope to one project.
	ProjectID string
}

// ScopeAll is the unrestricted listing scope.
var ScopeAll = Scope{All: true}

// Get retrieves a task by id with project and assignee preloaded.
func Get(db *gorm.DB, id string) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var task models.Task
	result := db.Preload("Project").Preload("Assignee").Where(idQueryPattern, id).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}

	return &task, nil
}

// GetAll retrieves tasks within the given scope, by priority then due date.
func GetAll(db *gorm.DB, scope Scope) ([]models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.Preload("Project").Order("priority DESC, due_date ASC")

	switch {
	case scope.All:
	case scope.ManagerID != "":
		tx = tx.Joins("JOIN projects ON projects.id = tasks.project_id").
			Where("projects.manager_id = ?", scope.ManagerID)
	case scope.AssigneeID != "":
		tx = tx.Where("assignee_id = ?", scope.AssigneeID)
	default:
		// unknown scope lists nothing rather than everything
		return []models.Task{}, nil
	}

	if scope.ProjectID != "" {
		tx = tx.Where("tasks.project_id = ?", scope.ProjectID)
	}

	var tasks []models.Task
	result := tx.Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}

	return tasks, nil
}

// Create creates a new task under a project.
func Create(db *gorm.DB, task *models.Task) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if task == nil || task.Title == "" {
		return nil, ErrTitleEmpty
	}
	if task.ProjectID == "" {
		return nil, ErrProjectEmpty
	}

	if task.Status == "" {
		task.Status = models.TaskStatusOpen
	}

	result := db.Create(task)
	if result.Error != nil {
		return nil, result.Error
	}

	return task, nil
}

// Update applies the given field changes to a task.
func Update(db *gorm.DB, id string, changes map[string]interface{}) (*models.Task, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var task models.Task
	result := db.Where(idQueryPattern, id).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}

	result = db.Model(&task).Updates(changes)
	if result.Error != nil {
		return nil, result.Error
	}

	return &task, nil
}

// Delete deletes a task by id.
func Delete(db *gorm.DB, id string) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Where(idQueryPattern, id).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	return nil
}
