// Package orchestrator wires the agents, bus, and confirmation workflow
// into a running assistant.
package orchestrator

const (
	// EventDocumentProcessed indicates a source file has been turned into text.
	EventDocumentProcessed = "document_processed"
	// EventMeetingAnalyzed indicates action items and a summary were extracted.
	EventMeetingAnalyzed = "meeting_analyzed"
	// EventTasksSynthesized indicates the authoritative task list changed.
	EventTasksSynthesized = "tasks_synthesized"
	// EventConflictsDetected indicates a conflict pass over the task list finished.
	EventConflictsDetected = "conflicts_detected"
	// EventItemApproved indicates a human approved a confirmation item.
	EventItemApproved = "item_approved"
	// EventItemRejected indicates a human rejected a confirmation item.
	EventItemRejected = "item_rejected"
)

// Agent capabilities routed by the supervisor.
const (
	CapabilityParseDocument   = "parse_document"
	CapabilityExtractActions  = "extract_actions"
	CapabilitySummarize       = "summarize"
	CapabilitySynthesizeTasks = "synthesize_tasks"
	CapabilityDetectConflicts = "detect_conflicts"
)
