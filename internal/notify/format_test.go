package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
)

func TestFormatTaskFailed(t *testing.T) {
	s := models.Sprint{ID: 1, Name: "Sprint 4"}
	task := models.SprintTask{
		ID:                       12,
		StatusCode:               models.StatusFailed,
		NonExecutionObservations: "  crane out of service  ",
		Backlog:                  &models.Backlog{Description: "Lift HVAC unit"},
		NonExecutionReason:       &models.NonExecutionReason{Name: "Equipment breakdown"},
		Team:                     &models.Team{Name: "Rigging"},
	}

	evt := FormatTaskFailed(s, task)
	if evt.Title != "Task failed: Lift HVAC unit" {
		t.Errorf("Title = %q", evt.Title)
	}
	if evt.Body != "crane out of service" {
		t.Errorf("Body = %q", evt.Body)
	}
	if evt.Color != models.StatusFailed.Meta().Color {
		t.Errorf("Color = %q", evt.Color)
	}
	want := map[string]string{"Sprint": "Sprint 4", "Task": "#12", "Reason": "Equipment breakdown", "Team": "Rigging"}
	if len(evt.Fields) != len(want) {
		t.Fatalf("fields = %+v", evt.Fields)
	}
	for _, f := range evt.Fields {
		if want[f.Name] != f.Value {
			t.Errorf("field %s = %q, want %q", f.Name, f.Value, want[f.Name])
		}
	}
}

func TestFormatTaskFailed_Minimal(t *testing.T) {
	evt := FormatTaskFailed(models.Sprint{Name: "S"}, models.SprintTask{ID: 3})
	if evt.Title != "Task failed: Task #3" {
		t.Errorf("Title = %q", evt.Title)
	}
	if evt.Body != "" || len(evt.Fields) != 2 {
		t.Errorf("evt = %+v", evt)
	}
}

func TestFormatDigest(t *testing.T) {
	s := models.Sprint{Name: "Sprint 1", EndDate: time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)}
	sum := kanban.Summary{
		Total: 4, Pending: 1, InProgress: 1, Done: 1, Failed: 1, PercentDone: 25,
		Burndown: []kanban.Point{
			{Date: "2026-04-06", Ideal: 4, Actual: 4},
			{Date: "2026-04-07", Ideal: 3, Actual: 3},
			{Date: "2026-04-08", Ideal: 2, Actual: 3},
		},
	}
	now := time.Date(2026, 4, 7, 18, 0, 0, 0, time.UTC)

	evt := FormatDigest(s, sum, now)
	if evt.Title != "Sprint digest: Sprint 1" {
		t.Errorf("Title = %q", evt.Title)
	}
	if !strings.Contains(evt.Body, "1 of 4 tasks done (25%), 1 failed") {
		t.Errorf("Body = %q", evt.Body)
	}
	if !strings.Contains(evt.Body, "Remaining 3, ideal 3.0 as of 2026-04-07") {
		t.Errorf("Body = %q", evt.Body)
	}
	if evt.Color != ColorWarning {
		t.Errorf("Color = %q, want warning", evt.Color)
	}
	if last := evt.Fields[len(evt.Fields)-1]; last.Value != "2026-04-10" {
		t.Errorf("Ends = %q", last.Value)
	}
}

func TestFormatDigest_Colors(t *testing.T) {
	now := time.Now()
	if c := FormatDigest(models.Sprint{}, kanban.Summary{Total: 2, Done: 2}, now).Color; c != ColorSuccess {
		t.Errorf("all done color = %q", c)
	}
	if c := FormatDigest(models.Sprint{}, kanban.Summary{}, now).Color; c != ColorInfo {
		t.Errorf("empty color = %q", c)
	}
}

func TestLatestPoint(t *testing.T) {
	points := []kanban.Point{{Date: "2026-04-06"}, {Date: "2026-04-07"}}
	tests := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before start", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC), "2026-04-06"},
		{"during", time.Date(2026, 4, 6, 12, 0, 0, 0, time.UTC), "2026-04-06"},
		{"after end", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), "2026-04-07"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := latestPoint(points, tt.now)
			if !ok || p.Date != tt.want {
				t.Errorf("latestPoint = %+v, %v; want %s", p, ok, tt.want)
			}
		})
	}
	if _, ok := latestPoint(nil, time.Now()); ok {
		t.Error("latestPoint(nil) should report false")
	}
}
