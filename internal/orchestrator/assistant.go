package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/agent"
	"github.com/taskloom/taskloom/internal/bus"
	"github.com/taskloom/taskloom/internal/config"
	"github.com/taskloom/taskloom/internal/confirm"
	"github.com/taskloom/taskloom/internal/conflict"
	"github.com/taskloom/taskloom/internal/extract"
	"github.com/taskloom/taskloom/internal/ingest"
	"github.com/taskloom/taskloom/internal/llm"
	"github.com/taskloom/taskloom/internal/memory"
	"github.com/taskloom/taskloom/internal/synth"
	"github.com/taskloom/taskloom/pkg/models"
)

// Assistant owns the full pipeline: event bus, agents, supervisor,
// confirmation panel, task synthesis, and the memory stores. Construct
// one per process with New, call Start, and Stop when done.
type Assistant struct {
	cfg    *config.Config
	logger *zap.Logger

	bus        *bus.Bus
	registry   *agent.Registry
	supervisor *Supervisor
	panel      *confirm.Panel
	synth      *synth.Synthesizer
	detector   *conflict.Detector
	episodic   *memory.EpisodicStore
	working    *memory.WorkingMemory
	client     llm.Client

	mu            sync.Mutex
	lastConflicts []models.Conflict
	started       bool
}

// New builds an assistant from the configuration. Storage paths that
// cannot be opened fail here; everything after Start recovers from
// agent-local errors instead of returning them.
func New(cfg *config.Config, client llm.Client, logger *zap.Logger) (*Assistant, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	panel, err := confirm.NewPanel(cfg.ConfirmationsPath(), logger)
	if err != nil {
		return nil, fmt.Errorf("open confirmation store: %w", err)
	}

	episodic, err := memory.OpenEpisodic(cfg.EpisodicPath())
	if err != nil {
		return nil, fmt.Errorf("open episodic store: %w", err)
	}

	rules, err := extract.LoadRules(cfg.Extract.RulesFile)
	if err != nil {
		episodic.Close()
		return nil, fmt.Errorf("load extraction rules: %w", err)
	}
	extractor := extract.New(rules)

	a := &Assistant{
		cfg:      cfg,
		logger:   logger,
		bus:      bus.New(logger),
		registry: agent.NewRegistry(),
		panel:    panel,
		synth:    synth.NewSynthesizer(logger),
		episodic: episodic,
		working:  memory.NewWorkingMemory(),
		client:   client,
	}

	var extra conflict.ExtraSource
	if client != nil {
		extra = client
	}
	a.detector = conflict.NewDetector(extra, logger)

	agents := []*agent.Runtime{
		NewDocumentAgent(ingest.NewPlainTextExtractor(), a.bus, logger),
		NewMeetingAgent(client, extractor, panel, a.bus, logger),
		NewTaskAgent(a.synth, episodic, a.bus, logger),
		NewConflictAgent(a.detector, a.bus, logger),
	}
	for _, rt := range agents {
		if err := a.registry.Register(rt); err != nil {
			episodic.Close()
			return nil, fmt.Errorf("register agent %s: %w", rt.ID(), err)
		}
	}
	a.supervisor = NewSupervisor(a.registry, logger)

	// All subscriptions happen before the bus starts so no published
	// event can miss a subscriber.
	a.bus.Subscribe(EventDocumentProcessed, a.onDocumentProcessed)
	a.bus.Subscribe(EventMeetingAnalyzed, a.onMeetingAnalyzed)
	a.bus.Subscribe(EventTasksSynthesized, a.onTasksSynthesized)
	a.bus.Subscribe(EventConflictsDetected, a.onConflictsDetected)

	return a, nil
}

// Start starts the bus and all agents.
func (a *Assistant) Start(ctx context.Context) {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return
	}
	a.started = true
	a.mu.Unlock()

	a.bus.Start()
	a.supervisor.Start(ctx)
	a.logger.Info("assistant started", zap.Int("agents", a.registry.Count()))
}

// Stop stops the agents and the bus, then closes the episodic store.
// In-flight work finishes and queued events are delivered before return.
func (a *Assistant) Stop() {
	a.mu.Lock()
	if !a.started {
		a.mu.Unlock()
		return
	}
	a.started = false
	a.mu.Unlock()

	a.supervisor.Stop()
	a.bus.Stop()
	if err := a.episodic.Close(); err != nil {
		a.logger.Warn("close episodic store", zap.Error(err))
	}
	a.logger.Info("assistant stopped")
}

// ProcessFile routes a source file into the pipeline. Unsupported
// formats fail immediately with an *ingest.ExtractionError.
func (a *Assistant) ProcessFile(path string) error {
	fileType := ingest.FileType(path)
	if fileType == "" {
		return &ingest.ExtractionError{Path: path, Format: strings.ToLower(filepath.Ext(path))}
	}

	return a.supervisor.RouteTask(agent.WorkItem{
		Capability: CapabilityParseDocument,
		Payload: map[string]any{
			"file_path": path,
			"file_type": fileType,
		},
	})
}

// ProcessText routes raw text (manual notes, pasted transcripts) straight
// to action extraction.
func (a *Assistant) ProcessText(text, source string) error {
	return a.supervisor.RouteTask(agent.WorkItem{
		Capability: CapabilityExtractActions,
		Payload: map[string]any{
			"text":   text,
			"source": source,
		},
	})
}

// RouteTask submits an arbitrary work item, for callers that know the
// capability they want.
func (a *Assistant) RouteTask(item agent.WorkItem) error {
	return a.supervisor.RouteTask(item)
}

// AgentStatuses returns the status of every registered agent.
func (a *Assistant) AgentStatuses() map[string]agent.Status {
	return a.supervisor.AgentStatuses()
}

// PendingConfirmations returns confirmation items awaiting a decision.
func (a *Assistant) PendingConfirmations() []confirm.Item {
	return a.panel.GetPending("")
}

// Approve approves a confirmation item, optionally with edited data, and
// feeds approved tasks into synthesis.
func (a *Assistant) Approve(id string, editedData map[string]any) (confirm.Item, error) {
	item, err := a.panel.Approve(id, editedData)
	if err != nil {
		return confirm.Item{}, err
	}

	a.bus.Publish("assistant", EventItemApproved, map[string]any{
		"id":   item.ID,
		"type": item.Type,
	})
	a.recordEpisode("item_approved", item.ID, map[string]any{"type": item.Type})

	if item.Type == "task" {
		action := actionItemFromData(item.Data)
		if err := a.supervisor.RouteTask(agent.WorkItem{
			Capability: CapabilitySynthesizeTasks,
			Payload:    map[string]any{"actions": []models.ActionItem{action}},
		}); err != nil {
			a.logger.Warn("approved task not synthesized", zap.Error(err))
		}
	}
	return item, nil
}

// Reject rejects a confirmation item with an optional reason.
func (a *Assistant) Reject(id, reason string) (confirm.Item, error) {
	item, err := a.panel.Reject(id, reason)
	if err != nil {
		return confirm.Item{}, err
	}

	a.bus.Publish("assistant", EventItemRejected, map[string]any{
		"id":     item.ID,
		"reason": reason,
	})
	a.recordEpisode("item_rejected", item.ID, map[string]any{"reason": reason})
	return item, nil
}

// Tasks returns the authoritative task list, highest priority first.
func (a *Assistant) Tasks() []models.Task {
	return a.synth.Tasks()
}

// DetectConflicts runs a synchronous conflict pass over the current task
// list and returns the findings.
func (a *Assistant) DetectConflicts(ctx context.Context) []models.Conflict {
	conflicts := a.detector.Detect(ctx, a.synth.Snapshot())

	a.mu.Lock()
	a.lastConflicts = conflicts
	a.mu.Unlock()
	return conflicts
}

// LastConflicts returns the findings of the most recent conflict pass,
// synchronous or agent-driven.
func (a *Assistant) LastConflicts() []models.Conflict {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Conflict(nil), a.lastConflicts...)
}

// ReplayApproved rebuilds the in-memory task list from previously
// approved confirmation items. Call once at process startup; the task
// list itself does not survive restarts, only its approved inputs do.
func (a *Assistant) ReplayApproved() {
	var actions []models.ActionItem
	for _, item := range a.panel.GetApproved() {
		if item.Type != "task" {
			continue
		}
		actions = append(actions, actionItemFromData(item.Data))
	}
	if len(actions) > 0 {
		a.synth.Synthesize(actions)
	}
}

// Idle reports whether the pipeline has no queued events or work items
// and no agent is mid-process.
func (a *Assistant) Idle() bool {
	if a.bus.Depth() != 0 {
		return false
	}
	for _, rt := range a.registry.AllAgents() {
		if rt.QueueDepth() != 0 || rt.Status() == agent.StatusProcessing {
			return false
		}
	}
	return true
}

// History returns recent episodes, newest first.
func (a *Assistant) History(age time.Duration, eventType string) ([]memory.Episode, error) {
	return a.episodic.Recent(age, eventType)
}

// Working exposes the shared working memory.
func (a *Assistant) Working() *memory.WorkingMemory {
	return a.working
}

func (a *Assistant) onDocumentProcessed(ev bus.Event) {
	path := stringField(ev.Payload, "file_path")
	text := stringField(ev.Payload, "text")
	a.logger.Info("document processed", zap.String("path", path), zap.Int("chars", len(text)))

	a.working.Write("last_document", path, 0)
	a.recordEpisode("document_processed", path, map[string]any{"chars": len(text)})

	if err := a.supervisor.RouteTask(agent.WorkItem{
		Capability: CapabilityExtractActions,
		Payload:    map[string]any{"text": text, "source": path},
	}); err != nil {
		a.logger.Warn("document text not analyzed", zap.Error(err))
	}
}

func (a *Assistant) onMeetingAnalyzed(ev bus.Event) {
	source := stringField(ev.Payload, "source")
	count, _ := ev.Payload["action_count"].(int)
	a.logger.Info("meeting analyzed",
		zap.String("source", source),
		zap.Int("actions", count))

	a.recordEpisode("meeting_analyzed", source, map[string]any{"actions": count})
}

func (a *Assistant) onTasksSynthesized(ev bus.Event) {
	tasks := tasksField(ev.Payload, "tasks")
	a.logger.Info("tasks synthesized", zap.Int("count", len(tasks)))

	if err := a.supervisor.RouteTask(agent.WorkItem{
		Capability: CapabilityDetectConflicts,
		Payload:    map[string]any{"tasks": tasks},
	}); err != nil {
		a.logger.Warn("conflict pass skipped", zap.Error(err))
	}
}

func (a *Assistant) onConflictsDetected(ev bus.Event) {
	conflicts, _ := ev.Payload["conflicts"].([]models.Conflict)

	a.mu.Lock()
	a.lastConflicts = conflicts
	a.mu.Unlock()

	if len(conflicts) > 0 {
		a.logger.Warn("conflicts detected", zap.Int("count", len(conflicts)))
	}
}

func (a *Assistant) recordEpisode(eventType, content string, metadata map[string]any) {
	ep := memory.Episode{EventType: eventType, Content: content, Metadata: metadata}
	if err := a.episodic.Add(ep); err != nil {
		a.logger.Warn("record episode", zap.Error(err))
	}
}
