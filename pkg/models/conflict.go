package models

// ConflictType classifies a detected conflict.
type ConflictType string

const (
	// ConflictDuplicate marks two tasks whose texts are near-identical.
	ConflictDuplicate ConflictType = "duplicate"
	// ConflictDeadline marks two tasks for the same assignee due the same day.
	ConflictDeadline ConflictType = "deadline_conflict"
	// ConflictMissingInfo marks a task lacking an assignee or a deadline.
	ConflictMissingInfo ConflictType = "missing_info"
)

// Severity is a qualitative conflict ranking used for display ordering only.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Conflict is a report over a task-list snapshot. Indices are valid only
// against the exact snapshot the conflict was computed from.
type Conflict struct {
	// Type classifies the conflict.
	Type ConflictType `json:"type"`
	// Description is a human-readable explanation.
	Description string `json:"description"`
	// AffectedTasks holds indices into the analyzed snapshot.
	AffectedTasks []int `json:"affected_tasks"`
	// Severity ranks the conflict for display.
	Severity Severity `json:"severity"`
	// Assignee is set for deadline conflicts.
	Assignee string `json:"assignee,omitempty"`
	// Date is the shared calendar date for deadline conflicts (YYYY-MM-DD).
	Date string `json:"date,omitempty"`
	// MissingFields lists the absent fields for missing-info conflicts.
	MissingFields []string `json:"missing_fields,omitempty"`
}
