package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/industryview/industryview/internal/kanban"
	"github.com/industryview/industryview/internal/models"
)

// FormatTaskFailed describes a task that was just marked FAILED.
func FormatTaskFailed(s models.Sprint, t models.SprintTask) Event {
	evt := Event{
		Title: fmt.Sprintf("Task failed: %s", t.DisplayName()),
		Color: models.StatusFailed.Meta().Color,
		Fields: []Field{
			{Name: "Sprint", Value: s.Name, Short: true},
			{Name: "Task", Value: fmt.Sprintf("#%d", t.ID), Short: true},
		},
	}
	if t.NonExecutionReason != nil {
		evt.Fields = append(evt.Fields, Field{Name: "Reason", Value: t.NonExecutionReason.Name, Short: true})
	}
	if t.Team != nil {
		evt.Fields = append(evt.Fields, Field{Name: "Team", Value: t.Team.Name, Short: true})
	}
	if obs := strings.TrimSpace(t.NonExecutionObservations); obs != "" {
		evt.Body = obs
	}
	return evt
}

// FormatDigest summarizes the progress of one sprint as of now.
func FormatDigest(s models.Sprint, sum kanban.Summary, now time.Time) Event {
	var b strings.Builder
	fmt.Fprintf(&b, "%d of %d tasks done (%d%%)", sum.Done, sum.Total, sum.PercentDone)
	if sum.Failed > 0 {
		fmt.Fprintf(&b, ", %d failed", sum.Failed)
	}
	if p, ok := latestPoint(sum.Burndown, now); ok {
		fmt.Fprintf(&b, "\nRemaining %d, ideal %.1f as of %s", p.Actual, p.Ideal, p.Date)
	}

	return Event{
		Title: fmt.Sprintf("Sprint digest: %s", s.Name),
		Body:  b.String(),
		Color: digestColor(sum),
		Fields: []Field{
			{Name: models.StatusPending.Meta().Label, Value: fmt.Sprint(sum.Pending), Short: true},
			{Name: models.StatusInProgress.Meta().Label, Value: fmt.Sprint(sum.InProgress), Short: true},
			{Name: models.StatusInspection.Meta().Label, Value: fmt.Sprint(sum.Inspection), Short: true},
			{Name: "Ends", Value: s.EndDate.Format(kanban.DateLayout), Short: true},
		},
	}
}

// latestPoint is the last burndown point not after today's date, or the
// last point when the whole series is in the past.
func latestPoint(points []kanban.Point, now time.Time) (kanban.Point, bool) {
	if len(points) == 0 {
		return kanban.Point{}, false
	}
	today := now.Format(kanban.DateLayout)
	last := points[0]
	for _, p := range points {
		if p.Date > today {
			break
		}
		last = p
	}
	return last, true
}

func digestColor(sum kanban.Summary) string {
	switch {
	case sum.Total > 0 && sum.Done == sum.Total:
		return ColorSuccess
	case sum.Failed > 0:
		return ColorWarning
	default:
		return ColorInfo
	}
}
