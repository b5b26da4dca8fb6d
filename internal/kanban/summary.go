package kanban

import "time"

// Summary is the sprint chart: per-status counts, percent done and the
// burndown series.
type Summary struct {
	Total       int     `json:"total"`
	Pending     int     `json:"pending"`
	InProgress  int     `json:"inProgress"`
	Done        int     `json:"done"`
	Failed      int     `json:"failed"`
	Inspection  int     `json:"inspection"`
	PercentDone int     `json:"percentDone"`
	Burndown    []Point `json:"burndown"`
}

// Summarize builds the chart for a classified board over [start, end].
func Summarize(b Board, start, end time.Time) Summary {
	return Summary{
		Total:       b.Total(),
		Pending:     len(b.Pending),
		InProgress:  len(b.InProgress),
		Done:        len(b.Done),
		Failed:      len(b.Failed),
		Inspection:  len(b.Inspection),
		PercentDone: b.Progress(),
		Burndown:    Burndown(start, end, b.All()),
	}
}
