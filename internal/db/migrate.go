package db

import (
	"fmt"
	"time"

	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns every GORM model the server persists.
func AllModels() []interface{} {
	return []interface{}{
		&models.Team{},
		&models.Backlog{},
		&models.NonExecutionReason{},
		&models.Sprint{},
		&models.SprintTask{},
		&models.Employee{},
		&models.SafetyIncident{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// DropAll drops every table in reverse dependency order.
func DropAll(db *gorm.DB) error {
	all := AllModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("db: drop %T: %w", all[i], err)
		}
	}
	return nil
}

// DefaultReasons is the stock list of non-execution reasons.
var DefaultReasons = []models.NonExecutionReason{
	{Name: "Rain", Category: "weather"},
	{Name: "Strong wind", Category: "weather"},
	{Name: "Missing material", Category: "material"},
	{Name: "Defective material", Category: "material"},
	{Name: "Crew shortage", Category: "crew"},
	{Name: "Medical leave", Category: "crew"},
	{Name: "Broken equipment", Category: "equipment"},
	{Name: "Equipment unavailable", Category: "equipment"},
	{Name: "Work accident", Category: "safety"},
	{Name: "Safety interdiction", Category: "safety"},
	{Name: "Awaiting clearance", Category: "safety"},
	{Name: "Design error", Category: "design"},
	{Name: "Design review", Category: "design"},
	{Name: "Power outage", Category: "other"},
	{Name: "Other", Category: "other"},
}

// SeedReasons upserts the default non-execution reasons by name.
func SeedReasons(db *gorm.DB) error {
	for _, r := range DefaultReasons {
		reason := r
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"category"}),
		}).Create(&reason)
		if result.Error != nil {
			return fmt.Errorf("db: seed reason %q: %w", r.Name, result.Error)
		}
	}
	return nil
}

// SeedDemo creates a team, a few backlog items and an active sprint with
// tasks spread across the board for projectID. It does nothing when the
// project already has a sprint.
func SeedDemo(db *gorm.DB, projectID uint, now time.Time) error {
	var count int64
	if err := db.Model(&models.Sprint{}).Where("project_id = ?", projectID).Count(&count).Error; err != nil {
		return fmt.Errorf("db: seed demo: count sprints: %w", err)
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		team := models.Team{ProjectID: projectID, Name: "Mechanical crew"}
		if err := tx.Create(&team).Error; err != nil {
			return fmt.Errorf("db: seed demo team: %w", err)
		}

		backlogs := []models.Backlog{
			{ProjectID: projectID, Description: "Install pipe rack section A", Quantity: 40},
			{ProjectID: projectID, Description: "Weld flange joints line 3", Quantity: 24, RequiresInspection: true},
			{ProjectID: projectID, Description: "Pull cable tray CT-12", Quantity: 120},
			{ProjectID: projectID, Description: "Paint structural steel bay 2", Quantity: 300},
		}
		if err := tx.Create(&backlogs).Error; err != nil {
			return fmt.Errorf("db: seed demo backlogs: %w", err)
		}

		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		sprint := models.Sprint{
			ProjectID: projectID,
			Name:      "Sprint 1",
			Objective: "Mechanical completion of area 100",
			StartDate: day.AddDate(0, 0, -3),
			EndDate:   day.AddDate(0, 0, 4),
			Status:    models.SprintActive,
		}
		if err := tx.Create(&sprint).Error; err != nil {
			return fmt.Errorf("db: seed demo sprint: %w", err)
		}

		started := day.AddDate(0, 0, -2)
		finished := day.AddDate(0, 0, -1)
		statuses := []models.TaskStatus{models.StatusDone, models.StatusInProgress, models.StatusPending, models.StatusPending}
		for i, b := range backlogs {
			task := models.SprintTask{
				SprintID:   sprint.ID,
				BacklogID:  b.ID,
				TeamID:     &team.ID,
				StatusCode: statuses[i],
			}
			if statuses[i] != models.StatusPending {
				task.ActualStartTime = &started
			}
			if statuses[i] == models.StatusDone {
				task.ActualEndTime = &finished
				task.ExecutedAt = &finished
			}
			if err := tx.Create(&task).Error; err != nil {
				return fmt.Errorf("db: seed demo task: %w", err)
			}
			if err := tx.Model(&models.Backlog{}).Where("id = ?", b.ID).Update("sprint_added", true).Error; err != nil {
				return fmt.Errorf("db: seed demo backlog %d: %w", b.ID, err)
			}
		}

		return tx.Model(&sprint).Update("progress_percentage", kanban.Percent(1, len(backlogs))).Error
	})
}
