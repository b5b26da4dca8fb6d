package models

import (
	"strconv"
	"time"

	"gorm.io/gorm"
)

// Sprint is a time-boxed container of sprint tasks.
type Sprint struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID          uint           `gorm:"not null;index" json:"projectId"`
	Name               string         `gorm:"size:255;not null" json:"name"`
	Objective          string         `gorm:"type:text" json:"objective,omitempty"`
	StartDate          time.Time      `json:"startDate"`
	EndDate            time.Time      `json:"endDate"`
	Status             SprintStatus   `gorm:"size:16;default:FUTURE;index" json:"status"`
	ProgressPercentage int            `gorm:"default:0" json:"progressPercentage"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// SprintTask is a backlog item scheduled into a sprint.
type SprintTask struct {
	ID                       uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	SprintID                 uint           `gorm:"not null;index" json:"sprintId"`
	BacklogID                uint           `gorm:"not null;index" json:"backlogId"`
	TeamID                   *uint          `gorm:"index" json:"teamId,omitempty"`
	AssignedUserID           *uint          `json:"assignedUserId,omitempty"`
	StatusCode               TaskStatus     `gorm:"size:16;not null;default:PENDING;index" json:"statusCode"`
	ScheduledFor             *time.Time     `json:"scheduledFor,omitempty"`
	ActualStartTime          *time.Time     `json:"actualStartTime,omitempty"`
	ActualEndTime            *time.Time     `json:"actualEndTime,omitempty"`
	ExecutedAt               *time.Time     `json:"executedAt,omitempty"`
	NonExecutionReasonID     *uint          `json:"nonExecutionReasonId,omitempty"`
	NonExecutionObservations string         `gorm:"type:text" json:"nonExecutionObservations,omitempty"`
	QuantityDone             float64        `gorm:"default:0" json:"quantityDone"`
	Criticality              Criticality    `gorm:"size:16" json:"criticality,omitempty"`
	CreatedAt                time.Time      `json:"createdAt"`
	UpdatedAt                time.Time      `json:"updatedAt"`
	DeletedAt                gorm.DeletedAt `gorm:"index" json:"-"`

	Backlog            *Backlog            `gorm:"foreignKey:BacklogID" json:"backlog,omitempty"`
	Team               *Team               `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	NonExecutionReason *NonExecutionReason `gorm:"foreignKey:NonExecutionReasonID" json:"nonExecutionReason,omitempty"`
}

// CompletedAt is the moment the task counts as done for burndown purposes.
// Only DONE tasks have one.
func (t SprintTask) CompletedAt() *time.Time {
	if t.StatusCode != StatusDone {
		return nil
	}
	if t.ExecutedAt != nil {
		return t.ExecutedAt
	}
	return t.ActualEndTime
}

// DisplayName is the best human label available for the task.
func (t SprintTask) DisplayName() string {
	if t.Backlog != nil && t.Backlog.Description != "" {
		return t.Backlog.Description
	}
	return "Task #" + strconv.FormatUint(uint64(t.ID), 10)
}

// Backlog is the underlying work item a sprint task executes.
type Backlog struct {
	ID                 uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID          uint           `gorm:"not null;index" json:"projectId"`
	Description        string         `gorm:"type:text;not null" json:"description"`
	Quantity           float64        `gorm:"default:0" json:"quantity"`
	QuantityDone       float64        `gorm:"default:0" json:"quantityDone"`
	RequiresInspection bool           `gorm:"default:false" json:"requiresInspection"`
	QualityStatus      string         `gorm:"size:16" json:"qualityStatus,omitempty"`
	SprintAdded        bool           `gorm:"default:false" json:"sprintAdded"`
	ActualStartDate    *time.Time     `json:"actualStartDate,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

// Quality review outcomes stored on a backlog.
const (
	QualityPending  = "PENDING"
	QualityApproved = "APPROVED"
	QualityRejected = "REJECTED"
)

// Team groups workers on a project.
type Team struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID uint           `gorm:"not null;index" json:"projectId"`
	Name      string         `gorm:"size:128;not null" json:"name"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NonExecutionReason explains why a task failed. Read-only lookup.
type NonExecutionReason struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"size:128;not null;uniqueIndex" json:"name"`
	Category string `gorm:"size:64" json:"category"`
}
