package sprint

import (
	"errors"
	"fmt"
	"time"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
	"gorm.io/gorm"
)

// PageReq is the page requested for one panel bucket.
type PageReq struct {
	Page    int
	PerPage int
}

// PanelQuery selects a sprint's task panel.
type PanelQuery struct {
	ProjectID    uint
	SprintID     uint
	TeamID       *uint
	ScheduledFor *time.Time
	// Search matches a task ID.
	Search uint
	// Pages holds per-bucket pagination; missing buckets get page 1.
	Pages map[models.TaskStatus]PageReq
}

// TaskOpts holds parameters for adding a backlog item to a sprint.
type TaskOpts struct {
	SprintID       uint               `json:"sprintId"`
	BacklogID      uint               `json:"backlogId"`
	TeamID         *uint              `json:"teamId,omitempty"`
	AssignedUserID *uint              `json:"assignedUserId,omitempty"`
	ScheduledFor   *time.Time         `json:"scheduledFor,omitempty"`
	Criticality    models.Criticality `json:"criticality,omitempty"`
}

// StatusUpdate is the body of a task status change.
type StatusUpdate struct {
	StatusCode               models.TaskStatus `json:"statusCode"`
	NonExecutionReasonID     *uint             `json:"nonExecutionReasonId,omitempty"`
	NonExecutionObservations string            `json:"nonExecutionObservations,omitempty"`
	QuantityDone             *float64          `json:"quantityDone,omitempty"`
}

const defaultBucketPerPage = 10

// Panel returns the sprint's tasks split into the five status buckets, each
// paginated on its own, plus whether the project has any team.
func Panel(db *gorm.DB, q PanelQuery) (*models.TaskPanel, error) {
	var missing []string
	if q.ProjectID == 0 {
		missing = append(missing, "projectId")
	}
	if q.SprintID == 0 {
		missing = append(missing, "sprintId")
	}
	if len(missing) > 0 {
		return nil, apperr.Required(missing...)
	}

	base := db.Model(&models.SprintTask{}).
		Joins("JOIN backlogs ON backlogs.id = sprint_tasks.backlog_id AND backlogs.deleted_at IS NULL").
		Where("sprint_tasks.sprint_id = ? AND backlogs.project_id = ?", q.SprintID, q.ProjectID)
	if q.TeamID != nil {
		base = base.Where("sprint_tasks.team_id = ?", *q.TeamID)
	}
	if q.Search != 0 {
		base = base.Where("sprint_tasks.id = ?", q.Search)
	}
	if q.ScheduledFor != nil {
		y, m, d := q.ScheduledFor.Date()
		day := time.Date(y, m, d, 0, 0, 0, 0, q.ScheduledFor.Location())
		base = base.Where("sprint_tasks.scheduled_for >= ? AND sprint_tasks.scheduled_for < ?", day, day.AddDate(0, 0, 1))
	}
	base = base.Session(&gorm.Session{})

	var panel models.TaskPanel
	for _, status := range models.AllTaskStatuses() {
		req := q.Pages[status]
		if req.Page < 1 {
			req.Page = 1
		}
		if req.PerPage < 1 {
			req.PerPage = defaultBucketPerPage
		}

		bucket := base.Where("sprint_tasks.status_code = ?", status).Session(&gorm.Session{})
		var total int64
		if err := bucket.Count(&total).Error; err != nil {
			return nil, apperr.Internal(fmt.Errorf("sprint: count %s tasks: %w", status, err))
		}
		var items []models.SprintTask
		err := bucket.Preload("Backlog").Preload("Team").Preload("NonExecutionReason").
			Order("sprint_tasks.created_at DESC, sprint_tasks.id DESC").
			Offset((req.Page - 1) * req.PerPage).
			Limit(req.PerPage).
			Find(&items).Error
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("sprint: list %s tasks: %w", status, err))
		}
		*panel.Bucket(status) = models.NewPage(items, req.Page, req.PerPage, total)
	}

	var teams int64
	if err := db.Model(&models.Team{}).Where("project_id = ?", q.ProjectID).Count(&teams).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("sprint: count teams: %w", err))
	}
	panel.HasTeamCreated = teams > 0
	return &panel, nil
}

// GetTask retrieves a sprint task with its backlog, team and reason.
func GetTask(db *gorm.DB, id uint) (*models.SprintTask, error) {
	var t models.SprintTask
	err := db.Preload("Backlog").Preload("Team").Preload("NonExecutionReason").First(&t, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("task %d not found", id)
		}
		return nil, apperr.Internal(fmt.Errorf("sprint: get task %d: %w", id, err))
	}
	return &t, nil
}

// CreateTask adds a backlog item to a sprint as a PENDING task.
func CreateTask(db *gorm.DB, opts TaskOpts) (*models.SprintTask, error) {
	var missing []string
	if opts.SprintID == 0 {
		missing = append(missing, "sprintId")
	}
	if opts.BacklogID == 0 {
		missing = append(missing, "backlogId")
	}
	if len(missing) > 0 {
		return nil, apperr.Required(missing...)
	}
	if opts.Criticality != "" && !opts.Criticality.Valid() {
		return nil, apperr.Validation("invalid task", apperr.FieldError{Field: "criticality", Message: "is not a known criticality"})
	}

	var id uint
	err := db.Transaction(func(tx *gorm.DB) error {
		s, err := Get(tx, opts.SprintID)
		if err != nil {
			return err
		}

		var backlog models.Backlog
		if err := tx.First(&backlog, opts.BacklogID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.Validation("invalid task", apperr.FieldError{Field: "backlogId", Message: "does not exist"})
			}
			return apperr.Internal(fmt.Errorf("sprint: get backlog %d: %w", opts.BacklogID, err))
		}
		if backlog.ProjectID != s.ProjectID {
			return apperr.Validation("invalid task", apperr.FieldError{Field: "backlogId", Message: "belongs to another project"})
		}

		if opts.TeamID != nil {
			var team models.Team
			if err := tx.First(&team, *opts.TeamID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Validation("invalid task", apperr.FieldError{Field: "teamId", Message: "does not exist"})
				}
				return apperr.Internal(fmt.Errorf("sprint: get team %d: %w", *opts.TeamID, err))
			}
		}

		var dup int64
		if err := tx.Model(&models.SprintTask{}).
			Where("sprint_id = ? AND backlog_id = ?", opts.SprintID, opts.BacklogID).
			Count(&dup).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: check duplicate task: %w", err))
		}
		if dup > 0 {
			return apperr.Conflict("backlog %d is already in sprint %d", opts.BacklogID, opts.SprintID)
		}

		t := models.SprintTask{
			SprintID:       opts.SprintID,
			BacklogID:      opts.BacklogID,
			TeamID:         opts.TeamID,
			AssignedUserID: opts.AssignedUserID,
			ScheduledFor:   opts.ScheduledFor,
			Criticality:    opts.Criticality,
			StatusCode:     models.StatusPending,
		}
		if err := tx.Create(&t).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: create task: %w", err))
		}
		if err := tx.Model(&models.Backlog{}).Where("id = ?", opts.BacklogID).Update("sprint_added", true).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: mark backlog %d: %w", opts.BacklogID, err))
		}
		id = t.ID
		return recomputeProgress(tx, opts.SprintID)
	})
	if err != nil {
		return nil, err
	}
	return GetTask(db, id)
}

// DeleteTask soft-deletes a sprint task and frees its backlog item.
func DeleteTask(db *gorm.DB, id uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var t models.SprintTask
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("task %d not found", id)
			}
			return apperr.Internal(fmt.Errorf("sprint: get task %d: %w", id, err))
		}
		if err := tx.Delete(&t).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: delete task %d: %w", id, err))
		}
		if err := tx.Model(&models.Backlog{}).Where("id = ?", t.BacklogID).Update("sprint_added", false).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: free backlog %d: %w", t.BacklogID, err))
		}
		return recomputeProgress(tx, t.SprintID)
	})
}

// UpdateTaskStatus moves a task along the board. Only the transitions in
// kanban.Transitions are accepted. Completing a task whose backlog item
// requires inspection lands it in INSPECTION instead of DONE.
func UpdateTaskStatus(db *gorm.DB, id uint, u StatusUpdate) (*models.SprintTask, error) {
	if !u.StatusCode.Valid() {
		return nil, apperr.Validation("invalid status", apperr.FieldError{Field: "statusCode", Message: "is not a known status"})
	}
	action, ok := kanban.ActionFor(u.StatusCode)
	if !ok {
		return nil, apperr.Conflict("status %s cannot be set directly", u.StatusCode)
	}
	if action == kanban.ActionFail && (u.NonExecutionReasonID == nil || *u.NonExecutionReasonID == 0) {
		return nil, apperr.Required("nonExecutionReasonId")
	}
	if u.QuantityDone != nil && *u.QuantityDone < 0 {
		return nil, apperr.Validation("invalid status", apperr.FieldError{Field: "quantityDone", Message: "must not be negative"})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var t models.SprintTask
		if err := tx.Preload("Backlog").First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("task %d not found", id)
			}
			return apperr.Internal(fmt.Errorf("sprint: get task %d: %w", id, err))
		}
		if _, err := kanban.Target(t.StatusCode, action); err != nil {
			return err
		}

		now := time.Now()
		updates := map[string]interface{}{"status_code": u.StatusCode}
		if u.QuantityDone != nil {
			updates["quantity_done"] = *u.QuantityDone
		}

		switch action {
		case kanban.ActionStart:
			updates["actual_start_time"] = now
			if err := tx.Model(&models.Backlog{}).
				Where("id = ? AND actual_start_date IS NULL", t.BacklogID).
				Update("actual_start_date", now).Error; err != nil {
				return apperr.Internal(fmt.Errorf("sprint: stamp backlog %d start: %w", t.BacklogID, err))
			}
		case kanban.ActionComplete:
			updates["actual_end_time"] = now
			updates["executed_at"] = now
			if t.Backlog != nil && t.Backlog.RequiresInspection {
				updates["status_code"] = models.StatusInspection
				if err := tx.Model(&models.Backlog{}).Where("id = ?", t.BacklogID).
					Update("quality_status", models.QualityPending).Error; err != nil {
					return apperr.Internal(fmt.Errorf("sprint: flag backlog %d for inspection: %w", t.BacklogID, err))
				}
			}
		case kanban.ActionFail:
			var reason models.NonExecutionReason
			if err := tx.First(&reason, *u.NonExecutionReasonID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Validation("invalid status", apperr.FieldError{Field: "nonExecutionReasonId", Message: "does not exist"})
				}
				return apperr.Internal(fmt.Errorf("sprint: get reason %d: %w", *u.NonExecutionReasonID, err))
			}
			updates["non_execution_reason_id"] = reason.ID
			updates["non_execution_observations"] = u.NonExecutionObservations
			updates["actual_end_time"] = now
		}

		if err := tx.Model(&models.SprintTask{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: update task %d status: %w", id, err))
		}
		return recomputeProgress(tx, t.SprintID)
	})
	if err != nil {
		return nil, err
	}
	return GetTask(db, id)
}

// ReviewInspection settles a task waiting in INSPECTION. Approval moves it
// to DONE; rejection sends it back to PENDING with its completion cleared.
func ReviewInspection(db *gorm.DB, id uint, approved bool) (*models.SprintTask, error) {
	err := db.Transaction(func(tx *gorm.DB) error {
		var t models.SprintTask
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("task %d not found", id)
			}
			return apperr.Internal(fmt.Errorf("sprint: get task %d: %w", id, err))
		}
		if t.StatusCode != models.StatusInspection {
			return apperr.Conflict("task %d is %s, not awaiting inspection", id, t.StatusCode.Meta().Label)
		}

		quality := models.QualityApproved
		updates := map[string]interface{}{"status_code": models.StatusDone}
		if !approved {
			quality = models.QualityRejected
			updates = map[string]interface{}{
				"status_code":     models.StatusPending,
				"actual_end_time": nil,
				"executed_at":     nil,
			}
		}
		if err := tx.Model(&models.SprintTask{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: review task %d: %w", id, err))
		}
		if err := tx.Model(&models.Backlog{}).Where("id = ?", t.BacklogID).Update("quality_status", quality).Error; err != nil {
			return apperr.Internal(fmt.Errorf("sprint: set backlog %d quality: %w", t.BacklogID, err))
		}
		return recomputeProgress(tx, t.SprintID)
	})
	if err != nil {
		return nil, err
	}
	return GetTask(db, id)
}

// recomputeProgress stores the rounded share of DONE tasks on the sprint.
func recomputeProgress(tx *gorm.DB, sprintID uint) error {
	var total, done int64
	if err := tx.Model(&models.SprintTask{}).Where("sprint_id = ?", sprintID).Count(&total).Error; err != nil {
		return apperr.Internal(fmt.Errorf("sprint: count tasks of %d: %w", sprintID, err))
	}
	if err := tx.Model(&models.SprintTask{}).Where("sprint_id = ? AND status_code = ?", sprintID, models.StatusDone).Count(&done).Error; err != nil {
		return apperr.Internal(fmt.Errorf("sprint: count done tasks of %d: %w", sprintID, err))
	}
	progress := kanban.Percent(int(done), int(total))
	if err := tx.Model(&models.Sprint{}).Where("id = ?", sprintID).Update("progress_percentage", progress).Error; err != nil {
		return apperr.Internal(fmt.Errorf("sprint: update progress of %d: %w", sprintID, err))
	}
	return nil
}
