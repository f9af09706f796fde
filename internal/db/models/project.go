package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus represents the lifecycle state of a project.
type ProjectStatus string

const (
	// ProjectStatusPlanning indicates the project has not started yet.
	ProjectStatusPlanning ProjectStatus = "planning"
	// ProjectStatusActive indicates the project is in progress.
	ProjectStatusActive ProjectStatus = "active"
	// ProjectStatusOnHold indicates work on the project is paused.
	ProjectStatusOnHold ProjectStatus = "on_hold"
	// ProjectStatusCompleted indicates the project is finished.
	ProjectStatusCompleted ProjectStatus = "completed"
)

// Project represents a construction project.
// ManagerID is the row-level ownership field: project managers only see and
// modify projects they manage, regardless of their resource-level grants.
type Project struct {
	// ID is the unique identifier for the project.
	ID string `gorm:"primaryKey;size:36"`
	// Name is the project name.
	Name string `gorm:"size:200;not null"`
	// Description provides details about the project scope.
	Description string `gorm:"size:2000"`
	// Status is the current lifecycle state.
	Status ProjectStatus `gorm:"type:varchar(20);not null;default:'planning'"`
	// Budget is the project budget in the smallest currency unit.
	Budget int64
	// ManagerID is the user id of the managing project manager.
	ManagerID string `gorm:"size:36;index;not null"`
	// Manager is the managing user (loaded via foreign key).
	Manager User `gorm:"foreignKey:ManagerID"`
	// ClientID is the client this project is built for.
	ClientID *string `gorm:"size:36;index"`
	// Client is the associated client record.
	Client *Client `gorm:"foreignKey:ClientID"`
	// StartDate is the planned start of construction.
	StartDate *time.Time
	// EndDate is the planned completion date.
	EndDate *time.Time
	// CreatedAt is the timestamp when the project was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the project was last updated (managed by GORM).
	UpdatedAt time.Time
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (p *Project) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	return nil
}

// TableName specifies the database table name for the Project model.
func (Project) TableName() string {
	return "projects"
}
