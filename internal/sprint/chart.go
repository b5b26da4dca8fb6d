package sprint

import (
	"fmt"
	"log"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
	"gorm.io/gorm"
)

// Chart returns per-status counts, percent done and the burndown series
// for a sprint, optionally limited to one team.
func Chart(db *gorm.DB, sprintID uint, teamID *uint) (*kanban.Summary, error) {
	s, err := Get(db, sprintID)
	if err != nil {
		return nil, err
	}

	tasks, err := Tasks(db, sprintID, teamID)
	if err != nil {
		return nil, err
	}

	board, err := kanban.Classify(tasks)
	if err != nil {
		log.Printf("sprint: chart %d: %v", sprintID, err)
	}
	summary := kanban.Summarize(board, s.StartDate, s.EndDate)
	return &summary, nil
}

// Tasks returns every task in a sprint, optionally limited to one team.
func Tasks(db *gorm.DB, sprintID uint, teamID *uint) ([]models.SprintTask, error) {
	q := db.Where("sprint_id = ?", sprintID)
	if teamID != nil {
		q = q.Where("team_id = ?", *teamID)
	}
	var tasks []models.SprintTask
	if err := q.Preload("Backlog").Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("sprint: tasks of %d: %w", sprintID, err))
	}
	return tasks, nil
}

// ListReasons returns every non-execution reason.
func ListReasons(db *gorm.DB) ([]models.NonExecutionReason, error) {
	var reasons []models.NonExecutionReason
	if err := db.Order("category ASC, name ASC").Find(&reasons).Error; err != nil {
		return nil, apperr.Internal(fmt.Errorf("sprint: list reasons: %w", err))
	}
	return reasons, nil
}
