package llm

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/taskloom/taskloom/pkg/models"
)

// extractJSON locates the JSON document inside a completion. Models often
// wrap JSON in a markdown fence or surround it with prose; this strips the
// fence and falls back to the outermost bracket pair.
func extractJSON(completion string) string {
	text := strings.TrimSpace(completion)

	if idx := strings.Index(text, "```"); idx >= 0 {
		rest := text[idx+3:]
		rest = strings.TrimPrefix(rest, "json")
		if end := strings.Index(rest, "```"); end >= 0 {
			return strings.TrimSpace(rest[:end])
		}
	}

	start := strings.IndexAny(text, "[{")
	if start < 0 {
		return ""
	}
	var close byte = ']'
	if text[start] == '{' {
		close = '}'
	}
	end := strings.LastIndexByte(text, close)
	if end <= start {
		return ""
	}
	return text[start : end+1]
}

// parseActionItems decodes an action-item array from a completion.
// Malformed entries are skipped rather than failing the whole response.
func parseActionItems(completion string) []models.ActionItem {
	doc := extractJSON(completion)
	if doc == "" || !gjson.Valid(doc) {
		return nil
	}

	root := gjson.Parse(doc)
	// Accept either a bare array or {"tasks": [...]}.
	arr := root
	if root.IsObject() {
		arr = root.Get("tasks")
	}

	var items []models.ActionItem
	arr.ForEach(func(_, value gjson.Result) bool {
		task := strings.TrimSpace(value.Get("task").String())
		if task == "" {
			return true
		}
		confidence := value.Get("confidence").Float()
		if confidence <= 0 || confidence > 1 {
			confidence = 0.9
		}
		items = append(items, models.ActionItem{
			Task:       task,
			Assignee:   strings.TrimSpace(value.Get("assignee").String()),
			Deadline:   strings.TrimSpace(value.Get("deadline").String()),
			Priority:   models.Priority(value.Get("priority").String()),
			Confidence: confidence,
		})
		return true
	})
	return items
}

// parseSummary decodes a summary object from a completion.
func parseSummary(completion string) models.Summary {
	doc := extractJSON(completion)
	if doc == "" || !gjson.Valid(doc) {
		return models.Summary{Summary: strings.TrimSpace(completion)}
	}

	root := gjson.Parse(doc)
	summary := models.Summary{Summary: root.Get("summary").String()}
	root.Get("key_points").ForEach(func(_, v gjson.Result) bool {
		summary.KeyPoints = append(summary.KeyPoints, v.String())
		return true
	})
	root.Get("decisions").ForEach(func(_, v gjson.Result) bool {
		summary.Decisions = append(summary.Decisions, v.String())
		return true
	})
	return summary
}

// parseConflicts decodes a conflict array from a completion.
func parseConflicts(completion string) []models.Conflict {
	doc := extractJSON(completion)
	if doc == "" || !gjson.Valid(doc) {
		return nil
	}

	root := gjson.Parse(doc)
	arr := root
	if root.IsObject() {
		arr = root.Get("conflicts")
	}

	var conflicts []models.Conflict
	arr.ForEach(func(_, value gjson.Result) bool {
		desc := strings.TrimSpace(value.Get("description").String())
		if desc == "" {
			return true
		}
		severity := models.Severity(strings.ToLower(value.Get("severity").String()))
		switch severity {
		case models.SeverityLow, models.SeverityMedium, models.SeverityHigh:
		default:
			severity = models.SeverityMedium
		}
		var affected []int
		value.Get("affected_tasks").ForEach(func(_, idx gjson.Result) bool {
			affected = append(affected, int(idx.Int()))
			return true
		})
		conflicts = append(conflicts, models.Conflict{
			Type:          models.ConflictType(value.Get("type").String()),
			Description:   desc,
			AffectedTasks: affected,
			Severity:      severity,
		})
		return true
	})
	return conflicts
}
