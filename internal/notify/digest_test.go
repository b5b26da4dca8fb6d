package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/industryview/industryview/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&models.Backlog{}, &models.Team{}, &models.NonExecutionReason{}, &models.Sprint{}, &models.SprintTask{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedSprint(t *testing.T, db *gorm.DB, project uint, name string, status models.SprintStatus, done, total int) {
	t.Helper()
	s := models.Sprint{
		ProjectID: project,
		Name:      name,
		Status:    status,
		StartDate: time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
	}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("create sprint: %v", err)
	}
	for i := 0; i < total; i++ {
		ts := models.StatusPending
		if i < done {
			ts = models.StatusDone
		}
		b := models.Backlog{ProjectID: project, Description: "item"}
		db.Create(&b)
		db.Create(&models.SprintTask{SprintID: s.ID, BacklogID: b.ID, StatusCode: ts})
	}
}

func TestNewDigest_Validation(t *testing.T) {
	db := openTestDB(t)
	if _, err := NewDigest(DigestOpts{Notifier: NewMock()}); err == nil {
		t.Error("expected error without db")
	}
	if _, err := NewDigest(DigestOpts{DB: db}); err == nil {
		t.Error("expected error without notifier")
	}
	if _, err := NewDigest(DigestOpts{DB: db, Notifier: NewMock(), Cron: "every day"}); err == nil {
		t.Error("expected error for bad cron")
	}
}

func TestDigest_RunOnce(t *testing.T) {
	db := openTestDB(t)
	seedSprint(t, db, 1, "Sprint A", models.SprintActive, 1, 4)
	seedSprint(t, db, 1, "Sprint B", models.SprintFuture, 0, 2)
	seedSprint(t, db, 2, "Sprint C", models.SprintActive, 2, 2)

	mock := NewMock()
	d, err := NewDigest(DigestOpts{DB: db, Notifier: mock, ProjectID: 1})
	if err != nil {
		t.Fatalf("NewDigest: %v", err)
	}
	n, err := d.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce: %v", err)
	}
	if n != 1 || mock.SentCount() != 1 {
		t.Fatalf("sent = %d (mock %d), want 1", n, mock.SentCount())
	}
	evt, _ := mock.LastSent()
	if evt.Title != "Sprint digest: Sprint A" {
		t.Errorf("Title = %q", evt.Title)
	}

	all, _ := NewDigest(DigestOpts{DB: db, Notifier: mock})
	if n, err := all.RunOnce(context.Background()); err != nil || n != 2 {
		t.Errorf("all projects = %d, %v; want 2", n, err)
	}
}

func TestDigest_RunOnce_SendError(t *testing.T) {
	db := openTestDB(t)
	seedSprint(t, db, 1, "Sprint A", models.SprintActive, 0, 1)
	seedSprint(t, db, 1, "Sprint B", models.SprintActive, 0, 1)

	mock := NewMock()
	mock.Err = errors.New("webhook down")
	d, _ := NewDigest(DigestOpts{DB: db, Notifier: mock})
	n, err := d.RunOnce(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if n != 0 {
		t.Errorf("sent = %d, want 0", n)
	}
}

func TestDigest_RunStopsOnCancel(t *testing.T) {
	db := openTestDB(t)
	d, _ := NewDigest(DigestOpts{DB: db, Notifier: NewMock(), Cron: "0 18 * * 1-5"})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestDigest_RunRequiresCron(t *testing.T) {
	d, _ := NewDigest(DigestOpts{DB: openTestDB(t), Notifier: NewMock()})
	if err := d.Run(context.Background()); err == nil {
		t.Error("expected error without cron")
	}
}
