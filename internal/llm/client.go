// Package llm defines the language-model collaborator contract and its
// Anthropic-backed implementation. The orchestration core treats the model
// as optional: every operation here has a deterministic rule-based
// fallback elsewhere, and ErrUnavailable signals that the fallback should
// run.
package llm

import (
	"context"
	"errors"

	"github.com/taskloom/taskloom/pkg/models"
)

// ErrUnavailable indicates the completion backend cannot be reached. It is
// never fatal; callers fall back to rule-based processing.
var ErrUnavailable = errors.New("llm backend unavailable")

// Client is the completion contract consumed by the extraction and
// conflict-detection agents.
type Client interface {
	// Available reports whether the backend is reachable and configured.
	Available(ctx context.Context) bool
	// Complete returns the model's completion for a prompt.
	Complete(ctx context.Context, prompt, system string) (string, error)
	// ExtractActionItems asks the model for candidate tasks in the text.
	ExtractActionItems(ctx context.Context, text string) ([]models.ActionItem, error)
	// Summarize asks the model for a summary with key points and decisions.
	Summarize(ctx context.Context, text string) (models.Summary, error)
	// DetectConflicts asks the model for conflicts among the tasks.
	DetectConflicts(ctx context.Context, tasks []models.Task) ([]models.Conflict, error)
}
