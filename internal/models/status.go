package models

import (
	"fmt"
	"strings"
)

// DisplayMeta is how an enum value is rendered as a badge.
type DisplayMeta struct {
	Label string `json:"label"`
	Bg    string `json:"bg"`
	Color string `json:"color"`
}

// TaskStatus is the closed set of sprint task states.
type TaskStatus string

const (
	StatusPending    TaskStatus = "PENDING"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusDone       TaskStatus = "DONE"
	StatusFailed     TaskStatus = "FAILED"
	StatusInspection TaskStatus = "INSPECTION"
)

// AllTaskStatuses lists every task status in board order.
func AllTaskStatuses() []TaskStatus {
	return []TaskStatus{StatusPending, StatusInProgress, StatusDone, StatusFailed, StatusInspection}
}

// TaskStatusMeta holds the badge for every TaskStatus.
var TaskStatusMeta = map[TaskStatus]DisplayMeta{
	StatusPending:    {Label: "Pending", Bg: "#f1f5f9", Color: "#475569"},
	StatusInProgress: {Label: "In progress", Bg: "#dbeafe", Color: "#1d4ed8"},
	StatusDone:       {Label: "Done", Bg: "#dcfce7", Color: "#15803d"},
	StatusFailed:     {Label: "Failed", Bg: "#fee2e2", Color: "#b91c1c"},
	StatusInspection: {Label: "Inspection", Bg: "#fef9c3", Color: "#a16207"},
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	_, ok := TaskStatusMeta[s]
	return ok
}

// Meta returns the badge for s.
func (s TaskStatus) Meta() DisplayMeta { return TaskStatusMeta[s] }

// ParseTaskStatus accepts any casing and dashes for underscores.
func ParseTaskStatus(v string) (TaskStatus, error) {
	s := TaskStatus(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(v), "-", "_")))
	if !s.Valid() {
		return "", fmt.Errorf("models: unknown task status %q", v)
	}
	return s, nil
}

// SprintStatus is the lifecycle of a sprint.
type SprintStatus string

const (
	SprintFuture    SprintStatus = "FUTURE"
	SprintActive    SprintStatus = "ACTIVE"
	SprintCompleted SprintStatus = "COMPLETED"
	SprintCancelled SprintStatus = "CANCELLED"
)

// AllSprintStatuses lists every sprint status.
func AllSprintStatuses() []SprintStatus {
	return []SprintStatus{SprintFuture, SprintActive, SprintCompleted, SprintCancelled}
}

var SprintStatusMeta = map[SprintStatus]DisplayMeta{
	SprintFuture:    {Label: "Future", Bg: "#ede9fe", Color: "#6d28d9"},
	SprintActive:    {Label: "Active", Bg: "#dbeafe", Color: "#1d4ed8"},
	SprintCompleted: {Label: "Completed", Bg: "#dcfce7", Color: "#15803d"},
	SprintCancelled: {Label: "Cancelled", Bg: "#f1f5f9", Color: "#64748b"},
}

// Valid reports whether s is a known sprint status.
func (s SprintStatus) Valid() bool {
	_, ok := SprintStatusMeta[s]
	return ok
}

// Criticality is informational and never affects transitions.
type Criticality string

const (
	CriticalityLow      Criticality = "LOW"
	CriticalityMedium   Criticality = "MEDIUM"
	CriticalityHigh     Criticality = "HIGH"
	CriticalityCritical Criticality = "CRITICAL"
)

func AllCriticalities() []Criticality {
	return []Criticality{CriticalityLow, CriticalityMedium, CriticalityHigh, CriticalityCritical}
}

var CriticalityMeta = map[Criticality]DisplayMeta{
	CriticalityLow:      {Label: "Low", Bg: "#dcfce7", Color: "#16a34a"},
	CriticalityMedium:   {Label: "Medium", Bg: "#fef9c3", Color: "#ca8a04"},
	CriticalityHigh:     {Label: "High", Bg: "#ffedd5", Color: "#ea580c"},
	CriticalityCritical: {Label: "Critical", Bg: "#fee2e2", Color: "#dc2626"},
}

// Valid reports whether c is a known criticality.
func (c Criticality) Valid() bool {
	_, ok := CriticalityMeta[c]
	return ok
}

// Severity grades a safety incident.
type Severity string

const (
	SeverityMinor    Severity = "MINOR"
	SeverityModerate Severity = "MODERATE"
	SeveritySerious  Severity = "SERIOUS"
	SeverityFatal    Severity = "FATAL"
)

func AllSeverities() []Severity {
	return []Severity{SeverityMinor, SeverityModerate, SeveritySerious, SeverityFatal}
}

var SeverityMeta = map[Severity]DisplayMeta{
	SeverityMinor:    {Label: "Minor", Bg: "#dcfce7", Color: "#16a34a"},
	SeverityModerate: {Label: "Moderate", Bg: "#fef9c3", Color: "#ca8a04"},
	SeveritySerious:  {Label: "Serious", Bg: "#ffedd5", Color: "#ea580c"},
	SeverityFatal:    {Label: "Fatal", Bg: "#fee2e2", Color: "#dc2626"},
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	_, ok := SeverityMeta[s]
	return ok
}
