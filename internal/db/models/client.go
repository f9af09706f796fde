package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents a customer a project is built for.
//
// Client rows are not yet linked to a User account. Until that linkage
// exists, a logged-in user with the CLIENT role cannot be matched to "their"
// projects, so the client row-ownership predicate denies by default.
// TODO: add Client.UserID and backfill it, then swap the default
// ClientProjectsResolver in internal/authz for one that joins on it.
type Client struct {
	// ID is the unique identifier for the client.
	ID string `gorm:"primaryKey;size:36"`
	// CompanyName is the client's company name.
	CompanyName string `gorm:"size:200;not null"`
	// ContactName is the primary contact person.
	ContactName string `gorm:"size:100"`
	// Email is the contact email address.
	Email string `gorm:"size:255"`
	// Phone is the contact phone number.
	Phone string `gorm:"size:50"`
	// Notes holds free-form remarks about the client.
	Notes string `gorm:"size:2000"`
	// CreatedAt is the timestamp when the client was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the client was last updated (managed by GORM).
	UpdatedAt time.Time
}

// BeforeCreate assigns a UUID primary key when none was provided.
func (c *Client) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	return nil
}

// TableName specifies the database table name for the Client model.
func (Client) TableName() string {
	return "clients"
}
