package models

// Priority ranks a task for the read path. Lower rank sorts first.
type Priority string

const (
	// PriorityUrgent is assigned when the task text contains an urgent keyword.
	PriorityUrgent Priority = "urgent"
	// PriorityHigh is assigned when the task text contains a high-priority keyword.
	PriorityHigh Priority = "high"
	// PriorityMedium is assigned when a deadline is present but no keyword matches.
	PriorityMedium Priority = "medium"
	// PriorityNormal is the default priority.
	PriorityNormal Priority = "normal"
)

// Valid returns true if the priority is a known value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityUrgent, PriorityHigh, PriorityMedium, PriorityNormal:
		return true
	default:
		return false
	}
}

// Rank returns the sort rank for the priority. Unknown values rank last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	default:
		return 3
	}
}

// ActionItem is a candidate task produced by an extractor. It has not yet
// passed the human confirmation gate and carries the extractor's confidence.
type ActionItem struct {
	// Task is the action text.
	Task string `json:"task"`
	// Assignee is the responsible person, or "unassigned".
	Assignee string `json:"assignee,omitempty"`
	// Deadline is a free-text or normalized due date. May be empty.
	Deadline string `json:"deadline,omitempty"`
	// Priority is the inferred priority, if the extractor set one.
	Priority Priority `json:"priority,omitempty"`
	// Confidence is the extractor's certainty in [0,1].
	Confidence float64 `json:"confidence"`
}

// Task is an authoritative task. Tasks exist only after an action item was
// approved by a human or supplied through the direct-insert path.
type Task struct {
	// Task is the action text.
	Task string `json:"task"`
	// Assignee is the responsible person, or "unassigned".
	Assignee string `json:"assignee,omitempty"`
	// Deadline is a free-text or normalized due date. May be empty.
	Deadline string `json:"deadline,omitempty"`
	// Priority is assigned by task synthesis.
	Priority Priority `json:"priority"`
}

// Decision is a decision statement extracted from meeting text.
type Decision struct {
	// Decision is the decision text.
	Decision string `json:"decision"`
	// Confidence is the extractor's certainty in [0,1].
	Confidence float64 `json:"confidence"`
}

// Summary is the condensed view of an analyzed document or transcript.
type Summary struct {
	// Summary is the prose summary.
	Summary string `json:"summary"`
	// KeyPoints lists notable points.
	KeyPoints []string `json:"key_points,omitempty"`
	// Decisions lists decision statements.
	Decisions []string `json:"decisions,omitempty"`
}
