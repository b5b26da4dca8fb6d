// Package kanban holds the pure sprint board rules: bucketing tasks by
// status, the legal status transitions, and the burndown projection.
// Nothing here performs I/O.
package kanban

import (
	"math"
	"strconv"
	"strings"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/models"
)

// Board is a sprint's tasks partitioned by status code. Unknown holds
// tasks whose status is not one of the five known codes.
type Board struct {
	Pending    []models.SprintTask `json:"pending"`
	InProgress []models.SprintTask `json:"inProgress"`
	Done       []models.SprintTask `json:"done"`
	Failed     []models.SprintTask `json:"failed"`
	Inspection []models.SprintTask `json:"inspection"`
	Unknown    []models.SprintTask `json:"unknown,omitempty"`
}

// Classify partitions tasks into buckets by StatusCode, preserving input
// order within each bucket. Tasks with an unrecognized status land in
// Unknown and are reported through an integrity error; the board is
// still usable.
func Classify(tasks []models.SprintTask) (Board, error) {
	b := Board{
		Pending:    make([]models.SprintTask, 0),
		InProgress: make([]models.SprintTask, 0),
		Done:       make([]models.SprintTask, 0),
		Failed:     make([]models.SprintTask, 0),
		Inspection: make([]models.SprintTask, 0),
	}
	for _, t := range tasks {
		switch t.StatusCode {
		case models.StatusPending:
			b.Pending = append(b.Pending, t)
		case models.StatusInProgress:
			b.InProgress = append(b.InProgress, t)
		case models.StatusDone:
			b.Done = append(b.Done, t)
		case models.StatusFailed:
			b.Failed = append(b.Failed, t)
		case models.StatusInspection:
			b.Inspection = append(b.Inspection, t)
		default:
			b.Unknown = append(b.Unknown, t)
		}
	}
	if len(b.Unknown) > 0 {
		ids := make([]string, len(b.Unknown))
		for i, t := range b.Unknown {
			ids[i] = strconv.FormatUint(uint64(t.ID), 10) + "=" + strconv.Quote(string(t.StatusCode))
		}
		return b, apperr.Integrity("kanban: %d task(s) with unknown status: %s", len(b.Unknown), strings.Join(ids, ", "))
	}
	return b, nil
}

// Bucket returns the tasks in the bucket for status s.
func (b Board) Bucket(s models.TaskStatus) []models.SprintTask {
	switch s {
	case models.StatusPending:
		return b.Pending
	case models.StatusInProgress:
		return b.InProgress
	case models.StatusDone:
		return b.Done
	case models.StatusFailed:
		return b.Failed
	case models.StatusInspection:
		return b.Inspection
	}
	return nil
}

// Total counts every task on the board, unknown ones included.
func (b Board) Total() int {
	return len(b.Pending) + len(b.InProgress) + len(b.Done) + len(b.Failed) + len(b.Inspection) + len(b.Unknown)
}

// All flattens the board back into one slice in bucket order.
func (b Board) All() []models.SprintTask {
	out := make([]models.SprintTask, 0, b.Total())
	for _, s := range models.AllTaskStatuses() {
		out = append(out, b.Bucket(s)...)
	}
	return append(out, b.Unknown...)
}

// Find returns the task with the given ID.
func (b Board) Find(id uint) (models.SprintTask, bool) {
	for _, t := range b.All() {
		if t.ID == id {
			return t, true
		}
	}
	return models.SprintTask{}, false
}

// Progress is the rounded percentage of DONE tasks, 0 for an empty board.
func (b Board) Progress() int {
	return Percent(len(b.Done), b.Total())
}

// Percent rounds part/total to a whole percentage, 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
