package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/taskloom/taskloom/pkg/models"
)

const extractSystemPrompt = `You extract action items from meeting notes and documents.
Respond with only a JSON array. Each element has the keys:
"task" (string), "assignee" (string, "unassigned" if unknown),
"deadline" (string, empty if none), "priority" (urgent|high|medium|normal),
"confidence" (number between 0 and 1).`

const summarizeSystemPrompt = `You summarize meeting notes and documents.
Respond with only a JSON object with the keys:
"summary" (string), "key_points" (array of strings), "decisions" (array of strings).`

const conflictSystemPrompt = `You analyze task lists for conflicts such as overlapping work,
contradictory deadlines, or overloaded assignees.
Respond with only a JSON array. Each element has the keys:
"type" (string), "description" (string), "affected_tasks" (array of zero-based indices),
"severity" (low|medium|high).`

// AnthropicConfig configures the Anthropic-backed client.
type AnthropicConfig struct {
	// APIKey is the Anthropic API key. Falls back to ANTHROPIC_API_KEY.
	APIKey string
	// Model is the model name; empty selects a default.
	Model string
	// MaxTokens caps the completion length.
	MaxTokens int
}

// AnthropicClient implements Client against the Anthropic Messages API.
type AnthropicClient struct {
	inner     anthropic.Client
	model     anthropic.Model
	maxTokens int
	apiKeySet bool
	logger    *zap.Logger
}

// NewAnthropicClient creates an AnthropicClient. Construction never fails:
// a missing API key just makes the client report unavailable so callers
// use their rule-based fallback.
func NewAnthropicClient(cfg AnthropicConfig, logger *zap.Logger) *AnthropicClient {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	model := anthropic.Model(cfg.Model)
	if model == "" {
		model = anthropic.ModelClaude3_5Haiku20241022
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}

	return &AnthropicClient{
		inner:     anthropic.NewClient(opts...),
		model:     model,
		maxTokens: maxTokens,
		apiKeySet: apiKey != "",
		logger:    logger,
	}
}

// Available reports whether the client is configured with credentials.
func (c *AnthropicClient) Available(_ context.Context) bool {
	return c.apiKeySet
}

// Complete sends a single-turn prompt and concatenates the text blocks of
// the response.
func (c *AnthropicClient) Complete(ctx context.Context, prompt, system string) (string, error) {
	if !c.apiKeySet {
		return "", ErrUnavailable
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: int64(c.maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if variant, ok := block.AsAny().(anthropic.TextBlock); ok {
			text.WriteString(variant.Text)
		}
	}
	return text.String(), nil
}

// ExtractActionItems asks the model for candidate tasks in the text.
func (c *AnthropicClient) ExtractActionItems(ctx context.Context, text string) ([]models.ActionItem, error) {
	completion, err := c.Complete(ctx, text, extractSystemPrompt)
	if err != nil {
		return nil, err
	}
	items := parseActionItems(completion)
	c.logger.Debug("model extracted action items", zap.Int("count", len(items)))
	return items, nil
}

// Summarize asks the model for a structured summary of the text.
func (c *AnthropicClient) Summarize(ctx context.Context, text string) (models.Summary, error) {
	completion, err := c.Complete(ctx, text, summarizeSystemPrompt)
	if err != nil {
		return models.Summary{}, err
	}
	return parseSummary(completion), nil
}

// DetectConflicts asks the model for conflicts among the tasks.
func (c *AnthropicClient) DetectConflicts(ctx context.Context, tasks []models.Task) ([]models.Conflict, error) {
	encoded, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode tasks: %w", err)
	}

	completion, err := c.Complete(ctx, string(encoded), conflictSystemPrompt)
	if err != nil {
		return nil, err
	}
	return parseConflicts(completion), nil
}
