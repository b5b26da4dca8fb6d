package client

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/industryview/industryview/internal/api"
	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/config"
	"github.com/industryview/industryview/internal/db"
	"github.com/industryview/industryview/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stack struct {
	client  *Client
	sprints *Sprints
	gdb     *gorm.DB
}

// newStack serves the real API over an in-memory database.
func newStack(t *testing.T) *stack {
	t.Helper()
	return newStackWithConfig(t, "project_id: 1\nserver:\n  token: t0k\n")
}

func newStackWithConfig(t *testing.T, yaml string) *stack {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(gdb))
	require.NoError(t, db.SeedReasons(gdb))

	cfg, err := config.Parse([]byte(yaml))
	require.NoError(t, err)
	router, err := api.NewRouter(api.StartOpts{DB: gdb, Config: cfg})
	require.NoError(t, err)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + cfg.Server.BasePath, Token: cfg.API.Token, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return &stack{client: c, sprints: NewSprints(c, Scope{ProjectID: 1, UserID: 5}), gdb: gdb}
}

func (s *stack) sprintWithTasks(t *testing.T, n int) (*models.Sprint, []models.SprintTask) {
	t.Helper()
	ctx := context.Background()
	sp, err := s.sprints.CreateSprint(ctx, SprintInput{
		Name:      "Sprint 1",
		StartDate: time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		Status:    models.SprintActive,
	})
	require.NoError(t, err)

	backlogs := Backlogs(s.client, s.sprints.Scope(), nil)
	var tasks []models.SprintTask
	for i := 0; i < n; i++ {
		b, err := backlogs.Create(ctx, models.Backlog{ProjectID: 1, Description: "item"})
		require.NoError(t, err)
		task, err := s.sprints.CreateTask(ctx, TaskInput{SprintID: sp.ID, BacklogID: b.ID})
		require.NoError(t, err)
		tasks = append(tasks, *task)
	}
	return sp, tasks
}

func TestSprints_Roundtrip(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	sp, tasks := s.sprintWithTasks(t, 3)
	assert.Equal(t, uint(1), sp.ProjectID, "project comes from the scope")

	got, err := s.sprints.GetSprint(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sprint 1", got.Name)

	groups, err := s.sprints.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, groups.Active.ItemsTotal)

	reasons, err := s.sprints.Reasons(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, reasons)

	_, err = s.sprints.UpdateTaskStatus(ctx, tasks[0].ID, StatusUpdate{StatusCode: models.StatusInProgress})
	require.NoError(t, err)
	reason := reasons[0].ID
	failed, err := s.sprints.UpdateTaskStatus(ctx, tasks[0].ID, StatusUpdate{
		StatusCode:               models.StatusFailed,
		NonExecutionReasonID:     &reason,
		NonExecutionObservations: "material missing",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, failed.StatusCode)
	require.NotNil(t, failed.NonExecutionReasonID)
	assert.Equal(t, reason, *failed.NonExecutionReasonID)

	_, err = s.sprints.UpdateTaskStatus(ctx, tasks[1].ID, StatusUpdate{StatusCode: models.StatusDone})
	assert.True(t, apperr.Is(err, apperr.KindConflict), "got %v", err)

	chart, err := s.sprints.Chart(ctx, sp.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, chart.Total)
	assert.Equal(t, 1, chart.Failed)
	assert.Len(t, chart.Burndown, 5)

	require.NoError(t, s.sprints.DeleteTask(ctx, tasks[2].ID))
	err = s.sprints.DeleteTask(ctx, tasks[2].ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
}

func TestSprints_FullPanelWalksPages(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	sp, tasks := s.sprintWithTasks(t, 103)

	_, err := s.sprints.UpdateTaskStatus(ctx, tasks[0].ID, StatusUpdate{StatusCode: models.StatusInProgress})
	require.NoError(t, err)

	panel, err := s.sprints.Panel(ctx, sp.ID, PanelFilter{}, map[models.TaskStatus]PageReq{
		models.StatusPending: {Page: 1, PerPage: 100},
	})
	require.NoError(t, err)
	assert.Len(t, panel.Pending.Items, 100)
	assert.Equal(t, 2, panel.Pending.PageTotal)

	set, err := s.sprints.FullPanel(ctx, sp.ID, PanelFilter{})
	require.NoError(t, err)
	assert.Len(t, set.Tasks, 103)
	seen := map[uint]bool{}
	for _, task := range set.Tasks {
		assert.False(t, seen[task.ID], "task %d returned twice", task.ID)
		seen[task.ID] = true
	}
	assert.False(t, set.HasTeamCreated)
}

func TestSprints_FullPanelUsesAllowedPageSize(t *testing.T) {
	s := newStackWithConfig(t, "project_id: 1\nserver:\n  token: t0k\npagination:\n  allowed_per_page: [2, 5]\n  default_per_page: 5\n")
	ctx := context.Background()
	sp, _ := s.sprintWithTasks(t, 7)

	_, err := s.sprints.FullPanel(ctx, sp.ID, PanelFilter{})
	require.Error(t, err, "the default bucket size is not allowed here")
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	pag := config.PaginationConfig{AllowedPerPage: []int{2, 5}}
	set, err := s.sprints.WithPanelPerPage(pag.Largest()).FullPanel(ctx, sp.ID, PanelFilter{})
	require.NoError(t, err)
	assert.Len(t, set.Tasks, 7)
}

func TestSprints_ReviewInspection(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	sp, _ := s.sprintWithTasks(t, 0)

	b, err := Backlogs(s.client, s.sprints.Scope(), nil).Create(ctx, models.Backlog{
		ProjectID: 1, Description: "Hydro test", RequiresInspection: true,
	})
	require.NoError(t, err)
	task, err := s.sprints.CreateTask(ctx, TaskInput{SprintID: sp.ID, BacklogID: b.ID})
	require.NoError(t, err)

	_, err = s.sprints.UpdateTaskStatus(ctx, task.ID, StatusUpdate{StatusCode: models.StatusInProgress})
	require.NoError(t, err)
	done, err := s.sprints.UpdateTaskStatus(ctx, task.ID, StatusUpdate{StatusCode: models.StatusDone})
	require.NoError(t, err)
	assert.Equal(t, models.StatusInspection, done.StatusCode)

	rejected, err := s.sprints.ReviewInspection(ctx, task.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, rejected.StatusCode)
}

func TestCollections_AgainstServer(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()
	scope := s.sprints.Scope()

	employees := Employees(s.client, scope, nil)
	_, err := employees.Create(ctx, models.Employee{ProjectID: 1, Name: "Ana"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	for _, name := range []string{"Ana", "Bia", "Caio", "Duda", "Enzo", "Fabi"} {
		_, err := employees.Create(ctx, models.Employee{ProjectID: 1, Name: name, Email: name + "@site.io", Active: true})
		require.NoError(t, err)
	}
	page, err := employees.List(ctx, Filters{"search": "a"}, 1, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 5, page.ItemsTotal)

	teams := Teams(s.client, scope, nil)
	team, err := teams.Create(ctx, models.Team{ProjectID: 1, Name: "Welders"})
	require.NoError(t, err)
	renamed, err := teams.Update(ctx, team.ID, map[string]any{"name": "Pipe welders"})
	require.NoError(t, err)
	assert.Equal(t, "Pipe welders", renamed.Name)
	require.NoError(t, teams.Remove(ctx, team.ID))
	assert.True(t, apperr.Is(teams.Remove(ctx, team.ID), apperr.KindNotFound))

	incidents := Incidents(s.client, scope, nil)
	_, err = incidents.Create(ctx, models.SafetyIncident{
		ProjectID: 1, Title: "Slip", Severity: models.AllSeverities()[0], OccurredAt: time.Now(),
	})
	require.NoError(t, err)
}
