package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TaskStatus represents the workflow state of a task.
type TaskStatus string

const (
	// TaskStatusOpen indicates the task has not been started.
	TaskStatusOpen TaskStatus = "open"
	// TaskStatusInProgress indicates work on the task has started.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusBlocked indicates the task is waiting on something.
	TaskStatusBlocked TaskStatus = "blocked"
	// TaskStatusDone indicates the task is finished.
	TaskStatusDone TaskStatus = "done"
)

// Task represents a unit of work inside a project.
// AssigneeID is the row-level ownership field for subcontractors: they only
// see tasks assigned to them and may never delete or reassign a task.
type Task struct {
	// ID is the unique identifier for the task.
	ID string `gorm:"primaryKey;size:36"`
	// Title is the short task summary.
	Title string `gorm:"size:200;not null"`
	// Description provides details about the work.
	Description string `gorm:"size:2000"`
	// Status is the current workflow state.
	Status TaskStatus `gorm:"type:varchar(20);not null;default:'open'"`
	// Priority orders tasks within a project (higher is more urgent).
	Priority int `gorm:"default:0"`
	// ProjectID is the project this task belongs to.
	ProjectID string `gorm:"size:36;index;not null"`
	// Project is the owning project (loaded via foreign key).
	// When a project is deleted, its tasks are removed as well (CASCADE).
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	// AssigneeID is the user id of the assigned worker, if any.
	AssigneeID *string `gorm:"size:36;index"`
	// Assignee is the assigned user.
	Assignee *User `gorm:"foreignKey:AssigneeID"`
	// DueDate is the date the task should be finished by.
	DueDate *time.Time
	// CreatedAt is the timestamp when the task was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the task was last updated (managed by GORM).
	UpdatedAt time.Time
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (t *Task) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	return nil
}

// TableName specifies the database table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}
