// Package sprint provides sprint and sprint task operations: lifecycle,
// the per-status task panel, status transitions and the sprint chart.
package sprint

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a sprint.
type CreateOpts struct {
	ProjectID uint                `json:"projectId"`
	Name      string              `json:"name"`
	Objective string              `json:"objective"`
	StartDate time.Time           `json:"startDate"`
	EndDate   time.Time           `json:"endDate"`
	Status    models.SprintStatus `json:"status"`
}

// Patch is a partial sprint update. Nil fields are left unchanged.
type Patch struct {
	Name      *string              `json:"name,omitempty"`
	Objective *string              `json:"objective,omitempty"`
	StartDate *time.Time           `json:"startDate,omitempty"`
	EndDate   *time.Time           `json:"endDate,omitempty"`
	Status    *models.SprintStatus `json:"status,omitempty"`
}

// List returns a project's sprints grouped into active, future and
// completed, each group paginated independently with the same page size.
func List(db *gorm.DB, projectID uint, page, perPage int) (*models.SprintGroups, error) {
	if projectID == 0 {
		return nil, apperr.Required("projectId")
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	fetch := func(status models.SprintStatus, order string) (models.Page[models.Sprint], error) {
		q := db.Model(&models.Sprint{}).
			Where("project_id = ? AND status = ?", projectID, status).
			Session(&gorm.Session{})

		var total int64
		if err := q.Count(&total).Error; err != nil {
			return models.Page[models.Sprint]{}, apperr.Internal(fmt.Errorf("sprint: count %s: %w", status, err))
		}
		var items []models.Sprint
		if err := q.Order(order).Offset((page - 1) * perPage).Limit(perPage).Find(&items).Error; err != nil {
			return models.Page[models.Sprint]{}, apperr.Internal(fmt.Errorf("sprint: list %s: %w", status, err))
		}
		return models.NewPage(items, page, perPage, total), nil
	}

	var groups models.SprintGroups
	var err error
	if groups.Active, err = fetch(models.SprintActive, "start_date ASC, id ASC"); err != nil {
		return nil, err
	}
	if groups.Future, err = fetch(models.SprintFuture, "start_date ASC, id ASC"); err != nil {
		return nil, err
	}
	if groups.Completed, err = fetch(models.SprintCompleted, "end_date DESC, id DESC"); err != nil {
		return nil, err
	}
	return &groups, nil
}

// ListActive returns every active sprint, optionally limited to a project.
func ListActive(db *gorm.DB, projectID uint) ([]models.Sprint, error) {
	q := db.Where("status = ?", models.SprintActive)
	if projectID != 0 {
		q = q.Where("project_id = ?", projectID)
	}
	var sprints []models.Sprint
	if err := q.Order("project_id ASC, start_date ASC").Find(&sprints).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("sprint: list active: %w", err))
	}
	return sprints, nil
}

// Get retrieves a sprint by ID.
func Get(db *gorm.DB, id uint) (*models.Sprint, error) {
	var s models.Sprint
	if err := db.First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("sprint %d not found", id)
		}
		return nil, apperr.Internal(fmt.Errorf("sprint: get %d: %w", id, err))
	}
	return &s, nil
}

// Create creates a sprint. The status defaults to FUTURE.
func Create(db *gorm.DB, opts CreateOpts) (*models.Sprint, error) {
	var missing []string
	if opts.ProjectID == 0 {
		missing = append(missing, "projectId")
	}
	if strings.TrimSpace(opts.Name) == "" {
		missing = append(missing, "name")
	}
	if opts.StartDate.IsZero() {
		missing = append(missing, "startDate")
	}
	if opts.EndDate.IsZero() {
		missing = append(missing, "endDate")
	}
	if len(missing) > 0 {
		return nil, apperr.Required(missing...)
	}
	if opts.Status == "" {
		opts.Status = models.SprintFuture
	}
	if err := checkSprint(opts.StartDate, opts.EndDate, opts.Status); err != nil {
		return nil, err
	}

	s := models.Sprint{
		ProjectID: opts.ProjectID,
		Name:      strings.TrimSpace(opts.Name),
		Objective: opts.Objective,
		StartDate: opts.StartDate,
		EndDate:   opts.EndDate,
		Status:    opts.Status,
	}
	if err := db.Create(&s).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("sprint: create: %w", err))
	}
	return &s, nil
}

// Update applies a partial update to a sprint.
func Update(db *gorm.DB, id uint, p Patch) (*models.Sprint, error) {
	s, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	start, end, status := s.StartDate, s.EndDate, s.Status
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, apperr.Required("name")
		}
		updates["name"] = name
	}
	if p.Objective != nil {
		updates["objective"] = *p.Objective
	}
	if p.StartDate != nil {
		start = *p.StartDate
		updates["start_date"] = start
	}
	if p.EndDate != nil {
		end = *p.EndDate
		updates["end_date"] = end
	}
	if p.Status != nil {
		status = *p.Status
		updates["status"] = status
	}
	if err := checkSprint(start, end, status); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return s, nil
	}

	if err := db.Model(&models.Sprint{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("sprint: update %d: %w", id, err))
	}
	return Get(db, id)
}

// Delete soft-deletes a sprint and every task in it, freeing their
// backlog items for another sprint.
func Delete(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.Sprint{}, id)
		if result.Error != nil {
			return apperr.Internal(fmt.Errorf("sprint: delete %d: %w", id, result.Error))
		}
		if result.RowsAffected == 0 {
			return apperr.NotFound("sprint %d not found", id)
		}
		var backlogIDs []uint
		if err := tx.Model(&models.SprintTask{}).Where("sprint_id = ?", id).Pluck("backlog_id", &backlogIDs).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: list tasks of %d: %w", id, err))
		}
		if err := tx.Where("sprint_id = ?", id).Delete(&models.SprintTask{}).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: delete tasks of %d: %w", id, err))
		}
		if len(backlogIDs) > 0 {
			if err := tx.Model(&models.Backlog{}).Where("id IN ?", backlogIDs).Update("sprint_added", false).Error; err != nil {
				return apperr.Internal(fmt.Errorf("sprint: free backlog of %d: %w", id, err))
			}
		}
		return nil
	})
}

func checkSprint(start, end time.Time, status models.SprintStatus) error {
	var bad []apperr.FieldError
	if !status.Valid() {
		bad = append(bad, apperr.FieldError{Field: "status", Message: "is not a known sprint status"})
	}
	if end.Before(start) {
		bad = append(bad, apperr.FieldError{Field: "endDate", Message: "must not be before startDate"})
	}
	if len(bad) > 0 {
		return apperr.Validation("invalid sprint", bad...)
	}
	return nil
}
