package llm

import (
	"testing"

	"github.com/taskloom/taskloom/pkg/models"
)

func TestExtractJSONStripsMarkdownFence(t *testing.T) {
	completion := "Here are the tasks:\n```json\n[{\"task\": \"Review PR\"}]\n```\nLet me know if you need more."

	got := extractJSON(completion)
	want := `[{"task": "Review PR"}]`
	if got != want {
		t.Errorf("extractJSON = %q, want %q", got, want)
	}
}

func TestExtractJSONFallsBackToBracketPair(t *testing.T) {
	completion := `Sure! {"summary": "short"} hope that helps`

	got := extractJSON(completion)
	want := `{"summary": "short"}`
	if got != want {
		t.Errorf("extractJSON = %q, want %q", got, want)
	}
}

func TestExtractJSONNoDocument(t *testing.T) {
	if got := extractJSON("no structured data here"); got != "" {
		t.Errorf("extractJSON = %q, want empty", got)
	}
}

func TestParseActionItemsBareArray(t *testing.T) {
	completion := `[
		{"task": "Send the agenda", "assignee": "sarah", "deadline": "Friday", "priority": "high", "confidence": 0.95},
		{"task": "", "assignee": "nobody"},
		{"task": "Book the room", "assignee": "john", "priority": "normal"}
	]`

	items := parseActionItems(completion)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Task != "Send the agenda" || items[0].Assignee != "sarah" {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[0].Confidence != 0.95 {
		t.Errorf("confidence = %v, want 0.95", items[0].Confidence)
	}
	if items[1].Confidence != 0.9 {
		t.Errorf("default confidence = %v, want 0.9", items[1].Confidence)
	}
}

func TestParseActionItemsTasksObject(t *testing.T) {
	completion := `{"tasks": [{"task": "Update the roadmap", "assignee": "unassigned"}]}`

	items := parseActionItems(completion)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Task != "Update the roadmap" {
		t.Errorf("task = %q", items[0].Task)
	}
}

func TestParseActionItemsInvalidJSON(t *testing.T) {
	if items := parseActionItems("[{broken"); items != nil {
		t.Errorf("got %v, want nil", items)
	}
}

func TestParseSummary(t *testing.T) {
	completion := `{"summary": "Planning sync", "key_points": ["budget approved"], "decisions": ["ship in Q2"]}`

	summary := parseSummary(completion)
	if summary.Summary != "Planning sync" {
		t.Errorf("summary = %q", summary.Summary)
	}
	if len(summary.KeyPoints) != 1 || summary.KeyPoints[0] != "budget approved" {
		t.Errorf("key points = %v", summary.KeyPoints)
	}
	if len(summary.Decisions) != 1 || summary.Decisions[0] != "ship in Q2" {
		t.Errorf("decisions = %v", summary.Decisions)
	}
}

func TestParseSummaryPlainTextFallback(t *testing.T) {
	summary := parseSummary("  The meeting covered hiring plans.  ")
	if summary.Summary != "The meeting covered hiring plans." {
		t.Errorf("summary = %q", summary.Summary)
	}
	if summary.KeyPoints != nil {
		t.Errorf("key points = %v, want nil", summary.KeyPoints)
	}
}

func TestParseConflicts(t *testing.T) {
	completion := `[
		{"type": "duplicate", "description": "Tasks 0 and 2 overlap", "affected_tasks": [0, 2], "severity": "medium"},
		{"type": "overload", "description": "Too much on one person", "affected_tasks": [1], "severity": "shouting"},
		{"type": "noise", "description": ""}
	]`

	conflicts := parseConflicts(completion)
	if len(conflicts) != 2 {
		t.Fatalf("got %d conflicts, want 2", len(conflicts))
	}
	if conflicts[0].Severity != models.SeverityMedium {
		t.Errorf("severity = %q", conflicts[0].Severity)
	}
	if len(conflicts[0].AffectedTasks) != 2 || conflicts[0].AffectedTasks[1] != 2 {
		t.Errorf("affected = %v", conflicts[0].AffectedTasks)
	}
	if conflicts[1].Severity != models.SeverityMedium {
		t.Errorf("unknown severity should default to medium, got %q", conflicts[1].Severity)
	}
}
