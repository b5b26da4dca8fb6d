package kanban

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/industryview/industryview/internal/apperr"
	"github.com/industryview/industryview/internal/models"
)

func task(id uint, s models.TaskStatus) models.SprintTask {
	return models.SprintTask{ID: id, SprintID: 1, BacklogID: id + 100, StatusCode: s}
}

func ids(tasks []models.SprintTask) []uint {
	out := make([]uint, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func sameIDs(a, b []uint) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestClassify_Scenario(t *testing.T) {
	a := task(1, models.StatusPending)
	b := task(2, models.StatusInProgress)
	c := task(3, models.StatusDone)

	board, err := Classify([]models.SprintTask{a, b, c})
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !sameIDs(ids(board.Pending), []uint{1}) {
		t.Errorf("Pending = %v, want [1]", ids(board.Pending))
	}
	if !sameIDs(ids(board.InProgress), []uint{2}) {
		t.Errorf("InProgress = %v, want [2]", ids(board.InProgress))
	}
	if !sameIDs(ids(board.Done), []uint{3}) {
		t.Errorf("Done = %v, want [3]", ids(board.Done))
	}
	if len(board.Failed) != 0 || len(board.Inspection) != 0 {
		t.Errorf("Failed/Inspection should be empty: %v %v", ids(board.Failed), ids(board.Inspection))
	}
	if board.Failed == nil || board.Inspection == nil {
		t.Error("empty buckets should be non-nil")
	}
	if got := board.Progress(); got != 33 {
		t.Errorf("Progress = %d, want 33", got)
	}
}

func TestClassify_PartitionCompleteness(t *testing.T) {
	statuses := models.AllTaskStatuses()
	var tasks []models.SprintTask
	for i := uint(1); i <= 40; i++ {
		tasks = append(tasks, task(i, statuses[int(i)%len(statuses)]))
	}

	rng := rand.New(rand.NewSource(7))
	for round := 0; round < 25; round++ {
		shuffled := append([]models.SprintTask(nil), tasks...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		board, err := Classify(shuffled)
		if err != nil {
			t.Fatalf("round %d: %v", round, err)
		}
		if board.Total() != len(tasks) {
			t.Fatalf("round %d: Total = %d, want %d", round, board.Total(), len(tasks))
		}

		seen := make(map[uint]int)
		for _, s := range statuses {
			for _, tk := range board.Bucket(s) {
				if tk.StatusCode != s {
					t.Errorf("round %d: task %d (%s) in %s bucket", round, tk.ID, tk.StatusCode, s)
				}
				seen[tk.ID]++
			}
		}
		for _, tk := range tasks {
			if seen[tk.ID] != 1 {
				t.Errorf("round %d: task %d appears %d times", round, tk.ID, seen[tk.ID])
			}
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	tasks := []models.SprintTask{
		task(5, models.StatusFailed),
		task(1, models.StatusPending),
		task(9, models.StatusPending),
		task(2, models.StatusInspection),
	}
	first, _ := Classify(tasks)
	second, _ := Classify(tasks)
	for _, s := range models.AllTaskStatuses() {
		if !sameIDs(ids(first.Bucket(s)), ids(second.Bucket(s))) {
			t.Errorf("%s: %v != %v", s, ids(first.Bucket(s)), ids(second.Bucket(s)))
		}
	}
	if !sameIDs(ids(first.Pending), []uint{1, 9}) {
		t.Errorf("Pending order = %v, want input order [1 9]", ids(first.Pending))
	}
	if tasks[0].StatusCode != models.StatusFailed {
		t.Error("Classify mutated its input")
	}
}

func TestClassify_UnknownStatusSurfaced(t *testing.T) {
	tasks := []models.SprintTask{
		task(1, models.StatusPending),
		task(2, models.TaskStatus("BLOCKED")),
	}
	board, err := Classify(tasks)
	if err == nil {
		t.Fatal("expected integrity error for unknown status")
	}
	if !apperr.Is(err, apperr.KindIntegrity) {
		t.Errorf("error kind = %v, want integrity", apperr.KindOf(err))
	}
	if !sameIDs(ids(board.Unknown), []uint{2}) {
		t.Errorf("Unknown = %v, want [2]", ids(board.Unknown))
	}
	if board.Total() != 2 {
		t.Errorf("Total = %d, want 2 (unknown tasks are not dropped)", board.Total())
	}
}

func TestClassify_Empty(t *testing.T) {
	board, err := Classify(nil)
	if err != nil {
		t.Fatalf("Classify(nil): %v", err)
	}
	if board.Total() != 0 || board.Progress() != 0 {
		t.Errorf("empty board Total=%d Progress=%d", board.Total(), board.Progress())
	}
}

func TestBoard_AllAndFind(t *testing.T) {
	board, _ := Classify([]models.SprintTask{
		task(3, models.StatusDone),
		task(1, models.StatusPending),
		task(2, models.StatusInProgress),
	})
	got := ids(board.All())
	sorted := append([]uint(nil), got...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	if !sameIDs(sorted, []uint{1, 2, 3}) {
		t.Errorf("All = %v", got)
	}
	if tk, ok := board.Find(2); !ok || tk.StatusCode != models.StatusInProgress {
		t.Errorf("Find(2) = %+v, %v", tk, ok)
	}
	if _, ok := board.Find(99); ok {
		t.Error("Find(99) should miss")
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		part, total, want int
	}{
		{1, 3, 33},
		{2, 3, 67},
		{0, 0, 0},
		{5, 5, 100},
		{1, 8, 13},
	}
	for _, tt := range tests {
		if got := Percent(tt.part, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.part, tt.total, got, tt.want)
		}
	}
}
