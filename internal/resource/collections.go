package resource

import (
	"net/mail"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/models"
	"gorm.io/gorm"
)

// Employees returns the employee collection.
func Employees(db *gorm.DB) *Repo[models.Employee] {
	return New(db, Spec[models.Employee]{
		Name: "employee",
		Filters: map[string]Filter{
			"projectId": {Column: "project_id"},
			"role":      {Column: "role"},
			"active":    {Column: "active", Bool: true},
			"search":    {Column: "name", Like: true},
		},
		Columns: map[string]string{
			"name":   "name",
			"email":  "email",
			"role":   "role",
			"active": "active",
		},
		Required: func(e *models.Employee) []string {
			var missing []string
			if e.ProjectID == 0 {
				missing = append(missing, "projectId")
			}
			if e.Name == "" {
				missing = append(missing, "name")
			}
			if e.Email == "" {
				missing = append(missing, "email")
			}
			return missing
		},
		Check: func(e *models.Employee) []apperr.FieldError {
			if _, err := mail.ParseAddress(e.Email); err != nil {
				return []apperr.FieldError{{Field: "email", Message: "is not a valid address"}}
			}
			return nil
		},
		Order: "name ASC, id ASC",
	})
}

// Incidents returns the safety incident collection.
func Incidents(db *gorm.DB) *Repo[models.SafetyIncident] {
	return New(db, Spec[models.SafetyIncident]{
		Name: "safety incident",
		Filters: map[string]Filter{
			"projectId": {Column: "project_id"},
			"severity":  {Column: "severity"},
			"search":    {Column: "title", Like: true},
		},
		Columns: map[string]string{
			"title":       "title",
			"severity":    "severity",
			"occurredAt":  "occurred_at",
			"description": "description",
		},
		Required: func(i *models.SafetyIncident) []string {
			var missing []string
			if i.ProjectID == 0 {
				missing = append(missing, "projectId")
			}
			if i.Title == "" {
				missing = append(missing, "title")
			}
			if i.Severity == "" {
				missing = append(missing, "severity")
			}
			if i.OccurredAt.IsZero() {
				missing = append(missing, "occurredAt")
			}
			return missing
		},
		Check: func(i *models.SafetyIncident) []apperr.FieldError {
			if !i.Severity.Valid() {
				return []apperr.FieldError{{Field: "severity", Message: "is not a known severity"}}
			}
			return nil
		},
		Order: "occurred_at DESC, id DESC",
	})
}

// Backlogs returns the backlog collection.
func Backlogs(db *gorm.DB) *Repo[models.Backlog] {
	return New(db, Spec[models.Backlog]{
		Name: "backlog",
		Filters: map[string]Filter{
			"projectId":   {Column: "project_id"},
			"sprintAdded": {Column: "sprint_added", Bool: true},
			"search":      {Column: "description", Like: true},
		},
		Columns: map[string]string{
			"description":        "description",
			"quantity":           "quantity",
			"requiresInspection": "requires_inspection",
		},
		Required: func(b *models.Backlog) []string {
			var missing []string
			if b.ProjectID == 0 {
				missing = append(missing, "projectId")
			}
			if b.Description == "" {
				missing = append(missing, "description")
			}
			return missing
		},
		Check: func(b *models.Backlog) []apperr.FieldError {
			if b.Quantity < 0 {
				return []apperr.FieldError{{Field: "quantity", Message: "must not be negative"}}
			}
			return nil
		},
	})
}

// Teams returns the team collection.
func Teams(db *gorm.DB) *Repo[models.Team] {
	return New(db, Spec[models.Team]{
		Name: "team",
		Filters: map[string]Filter{
			"projectId": {Column: "project_id"},
			"search":    {Column: "name", Like: true},
		},
		Columns: map[string]string{
			"name": "name",
		},
		Required: func(t *models.Team) []string {
			var missing []string
			if t.ProjectID == 0 {
				missing = append(missing, "projectId")
			}
			if t.Name == "" {
				missing = append(missing, "name")
			}
			return missing
		},
		Order: "name ASC, id ASC",
	})
}
