package models

// bucketKeys names each status bucket on the wire.
var bucketKeys = map[TaskStatus]string{
	StatusPending:    "pending",
	StatusInProgress: "inProgress",
	StatusDone:       "done",
	StatusFailed:     "failed",
	StatusInspection: "inspection",
}

// BucketKey is the JSON and query-parameter prefix of s's board bucket.
func (s TaskStatus) BucketKey() string { return bucketKeys[s] }

// TaskPanel is one sprint's tasks, paginated per status bucket.
type TaskPanel struct {
	Pending        Page[SprintTask] `json:"pending"`
	InProgress     Page[SprintTask] `json:"inProgress"`
	Done           Page[SprintTask] `json:"done"`
	Failed         Page[SprintTask] `json:"failed"`
	Inspection     Page[SprintTask] `json:"inspection"`
	HasTeamCreated bool             `json:"hasTeamCreated"`
}

// Bucket returns a pointer to the page for status s, or nil.
func (p *TaskPanel) Bucket(s TaskStatus) *Page[SprintTask] {
	switch s {
	case StatusPending:
		return &p.Pending
	case StatusInProgress:
		return &p.InProgress
	case StatusDone:
		return &p.Done
	case StatusFailed:
		return &p.Failed
	case StatusInspection:
		return &p.Inspection
	}
	return nil
}

// Tasks flattens every bucket page into one slice.
func (p *TaskPanel) Tasks() []SprintTask {
	var out []SprintTask
	for _, s := range AllTaskStatuses() {
		out = append(out, p.Bucket(s).Items...)
	}
	return out
}

// SprintGroups is a project's sprints split by lifecycle, each paginated.
type SprintGroups struct {
	Active    Page[Sprint] `json:"active"`
	Future    Page[Sprint] `json:"future"`
	Completed Page[Sprint] `json:"completed"`
}
