package extract

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules configures the rule-based extractor. Zero-value fields fall back
// to the built-in defaults.
type Rules struct {
	// ActionVerbs gate bullet-line extraction: a bullet is only treated as
	// an action when it contains one of these verbs.
	ActionVerbs []string `yaml:"action_verbs"`
	// SummaryLines is how many leading lines the fallback summarizer keeps.
	SummaryLines int `yaml:"summary_lines"`
	// MinLineLength and MaxLineLength bound which lines are scanned.
	MinLineLength int `yaml:"min_line_length"`
	MaxLineLength int `yaml:"max_line_length"`
}

// defaultRules are the built-in extraction settings.
var defaultRules = Rules{
	ActionVerbs: []string{
		"complete", "review", "prepare", "schedule", "send",
		"update", "create", "implement", "fix", "investigate",
	},
	SummaryLines:  3,
	MinLineLength: 10,
	MaxLineLength: 200,
}

// DefaultRules returns a copy of the built-in rules.
func DefaultRules() Rules {
	r := defaultRules
	r.ActionVerbs = append([]string(nil), defaultRules.ActionVerbs...)
	return r
}

// LoadRules reads a YAML rules file and merges it over the defaults.
// An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read extraction rules: %w", err)
	}

	var loaded Rules
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Rules{}, fmt.Errorf("parse extraction rules: %w", err)
	}

	if len(loaded.ActionVerbs) > 0 {
		rules.ActionVerbs = loaded.ActionVerbs
	}
	if loaded.SummaryLines > 0 {
		rules.SummaryLines = loaded.SummaryLines
	}
	if loaded.MinLineLength > 0 {
		rules.MinLineLength = loaded.MinLineLength
	}
	if loaded.MaxLineLength > 0 {
		rules.MaxLineLength = loaded.MaxLineLength
	}
	return rules, nil
}
