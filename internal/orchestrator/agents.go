package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/agent"
	"github.com/taskloom/taskloom/internal/bus"
	"github.com/taskloom/taskloom/internal/confirm"
	"github.com/taskloom/taskloom/internal/conflict"
	"github.com/taskloom/taskloom/internal/extract"
	"github.com/taskloom/taskloom/internal/ingest"
	"github.com/taskloom/taskloom/internal/llm"
	"github.com/taskloom/taskloom/internal/memory"
	"github.com/taskloom/taskloom/internal/synth"
	"github.com/taskloom/taskloom/pkg/models"
)

// NewDocumentAgent creates the agent that turns source files into text.
// It publishes a document_processed event for each successful extraction.
func NewDocumentAgent(extractor ingest.TextExtractor, b *bus.Bus, logger *zap.Logger) *agent.Runtime {
	process := func(_ context.Context, item agent.WorkItem) (map[string]any, error) {
		path := stringField(item.Payload, "file_path")
		if path == "" {
			return nil, fmt.Errorf("parse_document: missing file_path")
		}

		text, err := extractor.Extract(path)
		if err != nil {
			return nil, err
		}

		b.Publish("document_agent", EventDocumentProcessed, map[string]any{
			"file_path": path,
			"text":      text,
		})
		return map[string]any{"file_path": path, "chars": len(text)}, nil
	}

	return agent.NewRuntime("document_agent", []string{CapabilityParseDocument}, b, process, logger)
}

// NewMeetingAgent creates the agent that extracts action items, decisions,
// and a summary from text. It prefers the LLM client when one is available
// and falls back to rule-based extraction otherwise. Every extracted action
// item is queued for human confirmation.
func NewMeetingAgent(client llm.Client, rules *extract.Extractor, panel *confirm.Panel, b *bus.Bus, logger *zap.Logger) *agent.Runtime {
	process := func(ctx context.Context, item agent.WorkItem) (map[string]any, error) {
		text := stringField(item.Payload, "text")
		source := stringField(item.Payload, "source")
		if source == "" {
			source = "manual"
		}

		switch item.Capability {
		case CapabilitySummarize:
			summary := summarizeText(ctx, client, rules, text, logger)
			return map[string]any{"summary": summary.Summary, "key_points": summary.KeyPoints}, nil

		case CapabilityExtractActions:
			actions := extractActions(ctx, client, rules, text, logger)
			decisions := rules.Decisions(text)
			summary := summarizeText(ctx, client, rules, text, logger)

			for _, action := range actions {
				if _, err := panel.AddForConfirmation("task", actionItemData(action), action.Confidence); err != nil {
					return nil, fmt.Errorf("queue for confirmation: %w", err)
				}
			}

			b.Publish("meeting_agent", EventMeetingAnalyzed, map[string]any{
				"source":       source,
				"actions":      actions,
				"action_count": len(actions),
				"decisions":    decisions,
				"summary":      summary.Summary,
			})
			return map[string]any{"source": source, "action_count": len(actions)}, nil

		default:
			return nil, fmt.Errorf("meeting_agent: unexpected capability %q", item.Capability)
		}
	}

	caps := []string{CapabilityExtractActions, CapabilitySummarize}
	return agent.NewRuntime("meeting_agent", caps, b, process, logger)
}

func extractActions(ctx context.Context, client llm.Client, rules *extract.Extractor, text string, logger *zap.Logger) []models.ActionItem {
	if client != nil && client.Available(ctx) {
		actions, err := client.ExtractActionItems(ctx, text)
		if err == nil {
			return actions
		}
		logger.Warn("model extraction failed, using rules", zap.Error(err))
	}
	return rules.ActionItems(text)
}

func summarizeText(ctx context.Context, client llm.Client, rules *extract.Extractor, text string, logger *zap.Logger) models.Summary {
	if client != nil && client.Available(ctx) {
		summary, err := client.Summarize(ctx, text)
		if err == nil {
			return summary
		}
		logger.Warn("model summary failed, using rules", zap.Error(err))
	}
	return rules.Summarize(text)
}

// NewTaskAgent creates the agent that folds approved action items into the
// authoritative task list. Each synthesis pass publishes a tasks_synthesized
// event with the updated list size.
func NewTaskAgent(s *synth.Synthesizer, episodic *memory.EpisodicStore, b *bus.Bus, logger *zap.Logger) *agent.Runtime {
	process := func(_ context.Context, item agent.WorkItem) (map[string]any, error) {
		actions := actionItemsField(item.Payload, "actions")

		before := s.Count()
		tasks := s.Synthesize(actions)

		if episodic != nil {
			for _, task := range tasks[before:] {
				ep := memory.Episode{
					EventType: "task",
					Content:   task.Task,
					Metadata: map[string]any{
						"assignee": task.Assignee,
						"deadline": task.Deadline,
						"priority": string(task.Priority),
					},
				}
				if err := episodic.Add(ep); err != nil {
					logger.Warn("record task episode", zap.Error(err))
				}
			}
		}

		b.Publish("task_agent", EventTasksSynthesized, map[string]any{
			"tasks": tasks,
			"count": len(tasks),
		})
		return map[string]any{"count": len(tasks)}, nil
	}

	return agent.NewRuntime("task_agent", []string{CapabilitySynthesizeTasks}, b, process, logger)
}

// NewConflictAgent creates the agent that analyzes the task list for
// duplicates, deadline collisions, and missing fields.
func NewConflictAgent(d *conflict.Detector, b *bus.Bus, logger *zap.Logger) *agent.Runtime {
	process := func(ctx context.Context, item agent.WorkItem) (map[string]any, error) {
		tasks := tasksField(item.Payload, "tasks")

		conflicts := d.Detect(ctx, tasks)

		b.Publish("conflict_detector", EventConflictsDetected, map[string]any{
			"conflicts": conflicts,
			"count":     len(conflicts),
		})
		return map[string]any{"count": len(conflicts)}, nil
	}

	return agent.NewRuntime("conflict_detector", []string{CapabilityDetectConflicts}, b, process, logger)
}

// actionItemData flattens an action item into the map shape stored on a
// confirmation item.
func actionItemData(a models.ActionItem) map[string]any {
	return map[string]any{
		"task":       a.Task,
		"assignee":   a.Assignee,
		"deadline":   a.Deadline,
		"priority":   string(a.Priority),
		"confidence": a.Confidence,
	}
}

// actionItemFromData is the inverse of actionItemData. It tolerates missing
// keys so hand-edited approval data cannot break synthesis.
func actionItemFromData(data map[string]any) models.ActionItem {
	item := models.ActionItem{
		Task:     stringField(data, "task"),
		Assignee: stringField(data, "assignee"),
		Deadline: stringField(data, "deadline"),
		Priority: models.Priority(stringField(data, "priority")),
	}
	if v, ok := data["confidence"].(float64); ok {
		item.Confidence = v
	}
	return item
}

func stringField(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}

func actionItemsField(payload map[string]any, key string) []models.ActionItem {
	if payload == nil {
		return nil
	}
	actions, _ := payload[key].([]models.ActionItem)
	return actions
}

func tasksField(payload map[string]any, key string) []models.Task {
	if payload == nil {
		return nil
	}
	tasks, _ := payload[key].([]models.Task)
	return tasks
}
