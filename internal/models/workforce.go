package models

import (
	"time"

	"gorm.io/gorm"
)

// Employee is a worker registered on a project.
type Employee struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uint           `gorm:"not null;index" json:"projectId"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"size:255;uniqueIndex" json:"email"`
	Role      string         `gorm:"size:64" json:"role,omitempty"`
	Active    bool           `gorm:"default:true" json:"active"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// SafetyIncident is a recorded safety event on site.
type SafetyIncident struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID   uint           `gorm:"not null;index" json:"projectId"`
	Title       string         `gorm:"size:255;not null" json:"title"`
	Severity    Severity       `gorm:"size:16;not null;index" json:"severity"`
	OccurredAt  time.Time      `json:"occurredAt"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
