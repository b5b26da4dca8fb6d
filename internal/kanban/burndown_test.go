package kanban

import (
	"math"
	"testing"
	"time"

	"github.com/industryview/industryview/internal/models"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func doneAt(id uint, at time.Time) models.SprintTask {
	return models.SprintTask{ID: id, StatusCode: models.StatusDone, ExecutedAt: &at}
}

func TestBurndown_ZeroTasks(t *testing.T) {
	points := Burndown(day(1), day(5), nil)
	if len(points) != 5 {
		t.Fatalf("len = %d, want 5", len(points))
	}
	for _, p := range points {
		for _, v := range []float64{p.Ideal, p.IdealPercent, p.ActualPercent} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("point %s has non-finite value: %+v", p.Date, p)
			}
		}
		if p.Actual != 0 {
			t.Errorf("point %s Actual = %d, want 0", p.Date, p.Actual)
		}
		if p.Ideal != 0 {
			t.Errorf("point %s Ideal = %v, want 0", p.Date, p.Ideal)
		}
	}
}

func TestBurndown_IdealLine(t *testing.T) {
	tasks := []models.SprintTask{
		{ID: 1, StatusCode: models.StatusPending},
		{ID: 2, StatusCode: models.StatusPending},
		{ID: 3, StatusCode: models.StatusPending},
		{ID: 4, StatusCode: models.StatusPending},
	}
	points := Burndown(day(1), day(5), tasks)
	want := []float64{4, 3, 2, 1, 0}
	for i, p := range points {
		if math.Abs(p.Ideal-want[i]) > 1e-9 {
			t.Errorf("day %d Ideal = %v, want %v", i, p.Ideal, want[i])
		}
	}
	if points[0].IdealPercent != 100 || points[4].IdealPercent != 0 {
		t.Errorf("ideal percents = %v..%v", points[0].IdealPercent, points[4].IdealPercent)
	}
	if points[0].Date != "2026-03-01" || points[4].Date != "2026-03-05" {
		t.Errorf("dates = %s..%s", points[0].Date, points[4].Date)
	}
}

func TestBurndown_ActualFromCompletionTimes(t *testing.T) {
	tasks := []models.SprintTask{
		doneAt(1, day(2).Add(15*time.Hour)),
		doneAt(2, day(4).Add(23*time.Hour+59*time.Minute)),
		{ID: 3, StatusCode: models.StatusInProgress},
		// Failed tasks stay remaining even with a timestamp.
		{ID: 4, StatusCode: models.StatusFailed, ExecutedAt: ptr(day(2))},
	}
	points := Burndown(day(1), day(5), tasks)
	want := []int{4, 3, 3, 2, 2}
	for i, p := range points {
		if p.Actual != want[i] {
			t.Errorf("%s Actual = %d, want %d", p.Date, p.Actual, want[i])
		}
	}
	if points[4].ActualPercent != 50 {
		t.Errorf("last ActualPercent = %v, want 50", points[4].ActualPercent)
	}
}

func TestBurndown_CompletionBeforeStartCountsAsDone(t *testing.T) {
	tasks := []models.SprintTask{doneAt(1, day(1).Add(-48*time.Hour))}
	points := Burndown(day(1), day(2), tasks)
	if points[0].Actual != 0 {
		t.Errorf("Actual = %d, want 0", points[0].Actual)
	}
}

func TestBurndown_SingleDay(t *testing.T) {
	tasks := []models.SprintTask{{ID: 1, StatusCode: models.StatusPending}}
	points := Burndown(day(3).Add(8*time.Hour), day(3).Add(17*time.Hour), tasks)
	if len(points) != 1 {
		t.Fatalf("len = %d, want 1", len(points))
	}
	if points[0].Ideal != 1 || points[0].Actual != 1 {
		t.Errorf("point = %+v", points[0])
	}
}

func TestBurndown_EndBeforeStart(t *testing.T) {
	if got := Burndown(day(5), day(1), nil); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestBurndown_Recomputes(t *testing.T) {
	tasks := []models.SprintTask{{ID: 1, StatusCode: models.StatusPending}}
	before := Burndown(day(1), day(3), tasks)

	tasks[0] = doneAt(1, day(1))
	after := Burndown(day(1), day(3), tasks)

	if before[0].Actual != 1 || after[0].Actual != 0 {
		t.Errorf("before=%d after=%d", before[0].Actual, after[0].Actual)
	}
}

func ptr(t time.Time) *time.Time { return &t }

func TestSummarize(t *testing.T) {
	tasks := []models.SprintTask{
		{ID: 1, StatusCode: models.StatusPending},
		{ID: 2, StatusCode: models.StatusInProgress},
		doneAt(3, day(2)),
		{ID: 4, StatusCode: models.StatusFailed},
		{ID: 5, StatusCode: models.StatusInspection},
	}
	board, err := Classify(tasks)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	s := Summarize(board, day(1), day(3))
	if s.Total != 5 || s.Pending != 1 || s.InProgress != 1 || s.Done != 1 || s.Failed != 1 || s.Inspection != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.PercentDone != 20 {
		t.Errorf("PercentDone = %d, want 20", s.PercentDone)
	}
	if len(s.Burndown) != 3 || s.Burndown[2].Actual != 4 {
		t.Errorf("burndown = %+v", s.Burndown)
	}
}
