package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

// gormTag extracts the gorm tag from a struct field.
func gormTag(t *testing.T, typ reflect.Type, fieldName string) string {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	return f.Tag.Get("gorm")
}

// assertGormTag checks that a struct field's gorm tag contains the expected value.
func assertGormTag(t *testing.T, typ reflect.Type, fieldName, expected string) {
	t.Helper()
	tag := gormTag(t, typ, fieldName)
	if !strings.Contains(tag, expected) {
		t.Errorf("%s.%s gorm tag = %q, want to contain %q", typ.Name(), fieldName, tag, expected)
	}
}

// assertFieldType checks that a struct field has the expected Go type.
func assertFieldType(t *testing.T, typ reflect.Type, fieldName, expectedType string) {
	t.Helper()
	f, ok := typ.FieldByName(fieldName)
	if !ok {
		t.Fatalf("%s.%s: field not found", typ.Name(), fieldName)
	}
	got := f.Type.String()
	if got != expectedType {
		t.Errorf("%s.%s type = %q, want %q", typ.Name(), fieldName, got, expectedType)
	}
}

func TestSprintTask_Fields(t *testing.T) {
	typ := reflect.TypeOf(SprintTask{})

	assertGormTag(t, typ, "ID", "primaryKey")
	assertGormTag(t, typ, "SprintID", "not null")
	assertGormTag(t, typ, "SprintID", "index")
	assertGormTag(t, typ, "BacklogID", "not null")
	assertGormTag(t, typ, "StatusCode", "default:PENDING")
	assertGormTag(t, typ, "StatusCode", "index")
	assertGormTag(t, typ, "NonExecutionObservations", "type:text")
	assertGormTag(t, typ, "Backlog", "foreignKey:BacklogID")

	assertFieldType(t, typ, "StatusCode", "models.TaskStatus")
	assertFieldType(t, typ, "TeamID", "*uint")
	assertFieldType(t, typ, "NonExecutionReasonID", "*uint")
	assertFieldType(t, typ, "ScheduledFor", "*time.Time")
	assertFieldType(t, typ, "ExecutedAt", "*time.Time")
	assertFieldType(t, typ, "DeletedAt", "gorm.DeletedAt")
}

func TestSprint_Fields(t *testing.T) {
	typ := reflect.TypeOf(Sprint{})

	assertGormTag(t, typ, "ProjectID", "index")
	assertGormTag(t, typ, "Name", "not null")
	assertGormTag(t, typ, "Status", "default:FUTURE")
	assertFieldType(t, typ, "Status", "models.SprintStatus")
	assertFieldType(t, typ, "StartDate", "time.Time")
}

func TestNonExecutionReason_Fields(t *testing.T) {
	typ := reflect.TypeOf(NonExecutionReason{})
	assertGormTag(t, typ, "Name", "uniqueIndex")
	assertGormTag(t, typ, "Category", "size:64")
}

func TestTaskStatusMeta_Exhaustive(t *testing.T) {
	for _, s := range AllTaskStatuses() {
		meta, ok := TaskStatusMeta[s]
		if !ok {
			t.Errorf("TaskStatusMeta missing %q", s)
			continue
		}
		if meta.Label == "" || meta.Bg == "" || meta.Color == "" {
			t.Errorf("TaskStatusMeta[%q] incomplete: %+v", s, meta)
		}
	}
	if len(TaskStatusMeta) != len(AllTaskStatuses()) {
		t.Errorf("TaskStatusMeta has %d entries, want %d", len(TaskStatusMeta), len(AllTaskStatuses()))
	}
}

func TestSprintStatusMeta_Exhaustive(t *testing.T) {
	for _, s := range AllSprintStatuses() {
		if _, ok := SprintStatusMeta[s]; !ok {
			t.Errorf("SprintStatusMeta missing %q", s)
		}
	}
	if len(SprintStatusMeta) != len(AllSprintStatuses()) {
		t.Errorf("SprintStatusMeta has %d entries, want %d", len(SprintStatusMeta), len(AllSprintStatuses()))
	}
}

func TestCriticalityMeta_Exhaustive(t *testing.T) {
	for _, c := range AllCriticalities() {
		if _, ok := CriticalityMeta[c]; !ok {
			t.Errorf("CriticalityMeta missing %q", c)
		}
	}
	if len(CriticalityMeta) != len(AllCriticalities()) {
		t.Errorf("CriticalityMeta has %d entries, want %d", len(CriticalityMeta), len(AllCriticalities()))
	}
}

func TestSeverityMeta_Exhaustive(t *testing.T) {
	for _, s := range AllSeverities() {
		if !s.Valid() {
			t.Errorf("SeverityMeta missing %q", s)
		}
	}
	if len(SeverityMeta) != len(AllSeverities()) {
		t.Errorf("SeverityMeta has %d entries, want %d", len(SeverityMeta), len(AllSeverities()))
	}
}

func TestParseTaskStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    TaskStatus
		wantErr bool
	}{
		{"PENDING", StatusPending, false},
		{"in_progress", StatusInProgress, false},
		{"in-progress", StatusInProgress, false},
		{" done ", StatusDone, false},
		{"failed", StatusFailed, false},
		{"inspection", StatusInspection, false},
		{"blocked", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseTaskStatus(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTaskStatus(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTaskStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSprintTask_CompletedAt(t *testing.T) {
	now := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	end := now.Add(time.Hour)

	done := SprintTask{StatusCode: StatusDone, ExecutedAt: &now, ActualEndTime: &end}
	if got := done.CompletedAt(); got == nil || !got.Equal(now) {
		t.Errorf("CompletedAt = %v, want executedAt", got)
	}

	doneNoExec := SprintTask{StatusCode: StatusDone, ActualEndTime: &end}
	if got := doneNoExec.CompletedAt(); got == nil || !got.Equal(end) {
		t.Errorf("CompletedAt = %v, want actualEndTime fallback", got)
	}

	failed := SprintTask{StatusCode: StatusFailed, ExecutedAt: &now}
	if failed.CompletedAt() != nil {
		t.Error("failed task should not have a completion time")
	}
}

func TestSprintTask_DisplayName(t *testing.T) {
	if got := (SprintTask{ID: 42}).DisplayName(); got != "Task #42" {
		t.Errorf("DisplayName = %q", got)
	}
	withBacklog := SprintTask{ID: 1, Backlog: &Backlog{Description: "Install tracker row 3"}}
	if got := withBacklog.DisplayName(); got != "Install tracker row 3" {
		t.Errorf("DisplayName = %q", got)
	}
}

func TestSprintTask_JSONShape(t *testing.T) {
	reason := uint(7)
	task := SprintTask{ID: 3, SprintID: 1, BacklogID: 9, StatusCode: StatusFailed, NonExecutionReasonID: &reason}
	data, err := json.Marshal(task)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(data)
	for _, want := range []string{`"statusCode":"FAILED"`, `"nonExecutionReasonId":7`, `"sprintId":1`, `"backlogId":9`} {
		if !strings.Contains(s, want) {
			t.Errorf("json %s missing %s", s, want)
		}
	}
	if strings.Contains(s, "DeletedAt") {
		t.Errorf("json leaks DeletedAt: %s", s)
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		total     int64
		perPage   int
		wantPages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{100, 15, 7},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := PageCount(tt.total, tt.perPage); got != tt.wantPages {
			t.Errorf("PageCount(%d, %d) = %d, want %d", tt.total, tt.perPage, got, tt.wantPages)
		}
	}

	p := NewPage[Team](nil, 2, 5, 7)
	if p.Items == nil || p.ItemsReceived != 0 {
		t.Errorf("nil items should become an empty slice: %+v", p)
	}
	if p.CurPage != 2 || p.PerPage != 5 || p.ItemsTotal != 7 || p.PageTotal != 2 {
		t.Errorf("NewPage = %+v", p)
	}

	data, err := json.Marshal(NewPage([]Team{{ID: 1}}, 1, 10, 1))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"items"`, `"curPage":1`, `"perPage":10`, `"itemsReceived":1`, `"itemsTotal":1`, `"pageTotal":1`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("page JSON %s missing %s", data, key)
		}
	}
}

func TestTaskStatus_BucketKey(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range AllTaskStatuses() {
		k := s.BucketKey()
		if k == "" {
			t.Errorf("%s has no bucket key", s)
		}
		if seen[k] {
			t.Errorf("duplicate bucket key %q", k)
		}
		seen[k] = true
	}
	if TaskStatus("BLOCKED").BucketKey() != "" {
		t.Error("unknown status should have no bucket key")
	}
}

func TestTaskPanel_Tasks(t *testing.T) {
	var p TaskPanel
	p.Pending.Items = []SprintTask{{ID: 1}}
	p.Done.Items = []SprintTask{{ID: 2}, {ID: 3}}
	if got := len(p.Tasks()); got != 3 {
		t.Errorf("len(Tasks()) = %d, want 3", got)
	}
	if p.Bucket(StatusDone) != &p.Done {
		t.Error("Bucket(DONE) should point at Done")
	}
	if p.Bucket(TaskStatus("X")) != nil {
		t.Error("Bucket(unknown) should be nil")
	}
}
