package kanban

import (
	"time"

	"github.com/industryview/industryview/internal/models"
)

// DateLayout is the calendar-day format of burndown points.
const DateLayout = "2006-01-02"

// Point is one day of a burndown chart.
type Point struct {
	Date          string  `json:"date"`
	Ideal         float64 `json:"ideal"`
	Actual        int     `json:"actual"`
	IdealPercent  float64 `json:"idealPercent"`
	ActualPercent float64 `json:"actualPercent"`
}

// Burndown projects one point per calendar day in [start, end]. Ideal falls
// linearly from the total task count on the first day to zero on the last;
// a one-day sprint keeps the full total. Actual counts tasks without a
// completion time at or before the end of that day. Days are taken in
// start's location. The series is rebuilt from scratch on every call.
func Burndown(start, end time.Time, tasks []models.SprintTask) []Point {
	first := dayOf(start)
	last := dayOf(end.In(start.Location()))
	if last.Before(first) {
		return []Point{}
	}

	days := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days++
	}

	total := len(tasks)
	points := make([]Point, 0, days)
	d := first
	for i := 0; i < days; i++ {
		next := d.AddDate(0, 0, 1)

		ideal := float64(total)
		if days > 1 {
			ideal = float64(total) * (1 - float64(i)/float64(days-1))
		}

		remaining := 0
		for _, t := range tasks {
			c := t.CompletedAt()
			if c == nil || !c.Before(next) {
				remaining++
			}
		}

		points = append(points, Point{
			Date:          d.Format(DateLayout),
			Ideal:         ideal,
			Actual:        remaining,
			IdealPercent:  ratio(ideal, total),
			ActualPercent: ratio(float64(remaining), total),
		})
		d = next
	}
	return points
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func ratio(v float64, total int) float64 {
	if total == 0 {
		return 0
	}
	return v / float64(total) * 100
}
