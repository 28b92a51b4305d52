// Package extract implements the deterministic rule-based extraction of
// action items and decisions from free text. It is the fallback used
// whenever the LLM collaborator is unavailable, and the primary extractor
// when none is configured.
package extract

import (
	"regexp"
	"strings"

	"github.com/taskloom/taskloom/pkg/models"
)

var (
	// "Alice will/should/needs to/must <do something> [by <when>]"
	assigneePattern = regexp.MustCompile(`(?i)\b([A-Z][a-z]+)\s+(?:will|should|must|needs to)\s+(.+?)(?:\s+by\s+([\w,\- ]+))?[.!]?$`)
	// "TODO: ..." / "Action: ..." / "Task: ..."
	markerPattern = regexp.MustCompile(`(?i)^(?:TODO|Action|Task):\s*(.+?)[.!]?$`)
	// "@alice follow up with legal"
	mentionPattern = regexp.MustCompile(`^@(\w+)\s+(.+?)[.!]?$`)
	// "- do something" / "* do something" / "• do something"
	bulletPattern = regexp.MustCompile(`^[\s]*[-•*]\s*(.+?)[.!]?$`)
	// "decided:/agreed:/concluded:/decision:/resolution: ..."
	decisionPattern = regexp.MustCompile(`(?i)(?:decided|agreed|concluded|decision|resolution):\s*(.+?)[.!]?$`)
	// leading capitalized name, for guessing an assignee out of marker text
	leadingName = regexp.MustCompile(`^([A-Z][a-z]+)\b`)
)

// Extractor applies the regex rules to text, line by line.
type Extractor struct {
	rules Rules
}

// New creates an Extractor with the given rules.
func New(rules Rules) *Extractor {
	return &Extractor{rules: rules}
}

// NewDefault creates an Extractor with the built-in rules.
func NewDefault() *Extractor {
	return New(DefaultRules())
}

// ActionItems extracts candidate tasks from text. Each line is matched
// against the assignee, marker, mention, and bullet patterns in that
// order; the first match wins. Confidence reflects pattern specificity.
func (e *Extractor) ActionItems(text string) []models.ActionItem {
	var items []models.ActionItem

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < e.rules.MinLineLength || len(line) > e.rules.MaxLineLength {
			continue
		}

		if m := assigneePattern.FindStringSubmatch(line); m != nil {
			items = append(items, models.ActionItem{
				Task:       strings.TrimSpace(m[2]),
				Assignee:   strings.TrimSpace(m[1]),
				Deadline:   strings.TrimSpace(m[3]),
				Confidence: 0.85,
			})
			continue
		}

		if m := markerPattern.FindStringSubmatch(line); m != nil {
			task := strings.TrimSpace(m[1])
			items = append(items, models.ActionItem{
				Task:       task,
				Assignee:   guessAssignee(task),
				Confidence: 0.8,
			})
			continue
		}

		if m := mentionPattern.FindStringSubmatch(line); m != nil {
			items = append(items, models.ActionItem{
				Task:       strings.TrimSpace(m[2]),
				Assignee:   strings.TrimSpace(m[1]),
				Confidence: 0.75,
			})
			continue
		}

		if m := bulletPattern.FindStringSubmatch(line); m != nil && e.hasActionVerb(line) {
			task := strings.TrimSpace(m[1])
			items = append(items, models.ActionItem{
				Task:       task,
				Assignee:   guessAssignee(task),
				Confidence: 0.7,
			})
		}
	}
	return items
}

// Decisions extracts decision statements from text.
func (e *Extractor) Decisions(text string) []models.Decision {
	var decisions []models.Decision
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if m := decisionPattern.FindStringSubmatch(line); m != nil {
			decisions = append(decisions, models.Decision{
				Decision:   strings.TrimSpace(m[1]),
				Confidence: 0.7,
			})
		}
	}
	return decisions
}

// Summarize keeps the first few non-empty lines of the text.
func (e *Extractor) Summarize(text string) models.Summary {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	n := e.rules.SummaryLines
	var summary string
	if len(lines) > n {
		summary = strings.Join(lines[:n], " ") + "..."
	} else {
		summary = strings.Join(lines, " ")
	}

	var decisions []string
	for _, d := range e.Decisions(text) {
		decisions = append(decisions, d.Decision)
	}
	return models.Summary{Summary: summary, Decisions: decisions}
}

// hasActionVerb reports whether the line contains a configured action verb.
func (e *Extractor) hasActionVerb(line string) bool {
	lower := strings.ToLower(line)
	for _, verb := range e.rules.ActionVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// guessAssignee takes a leading capitalized name as the assignee, falling
// back to "unassigned".
func guessAssignee(task string) string {
	if m := leadingName.FindStringSubmatch(task); m != nil {
		return m[1]
	}
	return "unassigned"
}
