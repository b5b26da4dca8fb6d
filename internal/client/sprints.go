package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
)

// DefaultPanelPerPage is the page size FullPanel walks buckets with unless
// WithPanelPerPage sets one the server allows.
const DefaultPanelPerPage = 100

// SprintInput is the body of a sprint create.
type SprintInput struct {
	ProjectID uint                `json:"projectId"`
	Name      string              `json:"name"`
	Objective string              `json:"objective,omitempty"`
	StartDate time.Time           `json:"startDate"`
	EndDate   time.Time           `json:"endDate"`
	Status    models.SprintStatus `json:"status,omitempty"`
}

// TaskInput is the body of an add-task request.
type TaskInput struct {
	SprintID     uint       `json:"sprintId"`
	BacklogID    uint       `json:"backlogId"`
	TeamID       *uint      `json:"teamId,omitempty"`
	ScheduledFor *time.Time `json:"scheduledFor,omitempty"`
}

// StatusUpdate is the body of a task status change.
type StatusUpdate struct {
	StatusCode               models.TaskStatus `json:"statusCode"`
	NonExecutionReasonID     *uint             `json:"nonExecutionReasonId,omitempty"`
	NonExecutionObservations string            `json:"nonExecutionObservations,omitempty"`
}

// PageReq is the page requested for one panel bucket.
type PageReq struct {
	Page    int
	PerPage int
}

// PanelFilter narrows the task panel.
type PanelFilter struct {
	TeamID       *uint
	ScheduledFor *time.Time
	Search       uint // task ID
}

// TaskSet is every task of a sprint panel, all bucket pages included.
type TaskSet struct {
	Tasks          []models.SprintTask
	HasTeamCreated bool
}

// Sprints is the client for sprints and their task board.
type Sprints struct {
	c            *Client
	scope        Scope
	panelPerPage int
}

// NewSprints creates a sprint client bound to scope.
func NewSprints(c *Client, scope Scope) *Sprints {
	return &Sprints{c: c, scope: scope, panelPerPage: DefaultPanelPerPage}
}

// WithPanelPerPage sets the bucket page size FullPanel requests. It must be
// one of the server's allowed page sizes; n < 1 keeps the current size.
func (s *Sprints) WithPanelPerPage(n int) *Sprints {
	if n > 0 {
		s.panelPerPage = n
	}
	return s
}

// Scope returns the project and user the client acts for.
func (s *Sprints) Scope() Scope { return s.scope }

// List returns the scope project's sprints grouped by status.
func (s *Sprints) List(ctx context.Context, page, perPage int) (*models.SprintGroups, error) {
	q := url.Values{}
	q.Set("projectId", formatID(s.scope.ProjectID))
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))
	var out models.SprintGroups
	if err := s.c.Do(ctx, http.MethodGet, "/sprints", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetSprint fetches one sprint.
func (s *Sprints) GetSprint(ctx context.Context, id uint) (*models.Sprint, error) {
	var out models.Sprint
	if err := s.c.Do(ctx, http.MethodGet, "/sprints/"+formatID(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateSprint creates a sprint in the scope project.
func (s *Sprints) CreateSprint(ctx context.Context, in SprintInput) (*models.Sprint, error) {
	if in.ProjectID == 0 {
		in.ProjectID = s.scope.ProjectID
	}
	var out models.Sprint
	if err := s.c.Do(ctx, http.MethodPost, "/sprints", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Panel fetches one page of every status bucket.
func (s *Sprints) Panel(ctx context.Context, sprintID uint, f PanelFilter, pages map[models.TaskStatus]PageReq) (*models.TaskPanel, error) {
	q := url.Values{}
	q.Set("projectId", formatID(s.scope.ProjectID))
	q.Set("sprintId", formatID(sprintID))
	if f.TeamID != nil {
		q.Set("teamId", formatID(*f.TeamID))
	}
	if f.ScheduledFor != nil {
		q.Set("scheduledFor", f.ScheduledFor.Format(kanban.DateLayout))
	}
	if f.Search != 0 {
		q.Set("search", formatID(f.Search))
	}
	for status, p := range pages {
		key := status.BucketKey()
		if p.Page > 0 {
			q.Set(key+"Page", strconv.Itoa(p.Page))
		}
		if p.PerPage > 0 {
			q.Set(key+"PerPage", strconv.Itoa(p.PerPage))
		}
	}

	var out models.TaskPanel
	if err := s.c.Do(ctx, http.MethodGet, "/sprints/tasks", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FullPanel walks every page of every bucket so the caller always gets the
// sprint's complete task set.
func (s *Sprints) FullPanel(ctx context.Context, sprintID uint, f PanelFilter) (*TaskSet, error) {
	set := &TaskSet{}
	for page := 1; ; page++ {
		pages := make(map[models.TaskStatus]PageReq)
		for _, st := range models.AllTaskStatuses() {
			pages[st] = PageReq{Page: page, PerPage: s.panelPerPage}
		}
		panel, err := s.Panel(ctx, sprintID, f, pages)
		if err != nil {
			return nil, err
		}
		set.HasTeamCreated = panel.HasTeamCreated

		more := false
		for _, st := range models.AllTaskStatuses() {
			b := panel.Bucket(st)
			if page <= b.PageTotal {
				set.Tasks = append(set.Tasks, b.Items...)
			}
			if page < b.PageTotal {
				more = true
			}
		}
		if !more {
			return set, nil
		}
	}
}

// CreateTask adds a backlog item to a sprint.
func (s *Sprints) CreateTask(ctx context.Context, in TaskInput) (*models.SprintTask, error) {
	var out models.SprintTask
	if err := s.c.Do(ctx, http.MethodPost, "/sprints/tasks", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTask fetches one task.
func (s *Sprints) GetTask(ctx context.Context, id uint) (*models.SprintTask, error) {
	var out models.SprintTask
	if err := s.c.Do(ctx, http.MethodGet, "/sprints/tasks/"+formatID(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTaskStatus sends one status change.
func (s *Sprints) UpdateTaskStatus(ctx context.Context, id uint, u StatusUpdate) (*models.SprintTask, error) {
	var out models.SprintTask
	if err := s.c.Do(ctx, http.MethodPatch, "/sprints/tasks/"+formatID(id)+"/status", nil, u, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReviewInspection approves or rejects a task awaiting inspection.
func (s *Sprints) ReviewInspection(ctx context.Context, id uint, approved bool) (*models.SprintTask, error) {
	var out models.SprintTask
	body := map[string]bool{"approved": approved}
	if err := s.c.Do(ctx, http.MethodPost, "/sprints/tasks/"+formatID(id)+"/inspection", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTask removes a task from its sprint.
func (s *Sprints) DeleteTask(ctx context.Context, id uint) error {
	return s.c.Do(ctx, http.MethodDelete, "/sprints/tasks/"+formatID(id), nil, nil, nil)
}

// Chart fetches the server-computed counts and burndown series.
func (s *Sprints) Chart(ctx context.Context, sprintID uint, teamID *uint) (*kanban.Summary, error) {
	var q url.Values
	if teamID != nil {
		q = url.Values{"teamId": {formatID(*teamID)}}
	}
	var out kanban.Summary
	if err := s.c.Do(ctx, http.MethodGet, "/sprints/"+formatID(sprintID)+"/chart", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reasons lists the non-execution reasons.
func (s *Sprints) Reasons(ctx context.Context) ([]models.NonExecutionReason, error) {
	var out []models.NonExecutionReason
	if err := s.c.Do(ctx, http.MethodGet, "/non-execution-reasons", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
