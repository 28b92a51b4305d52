package agent

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/bus"
)

func noopProcess(_ context.Context, _ WorkItem) (map[string]any, error) {
	return nil, nil
}

func newTestAgent(id string, caps ...string) *Runtime {
	return NewRuntime(id, caps, bus.New(zap.NewNop()), noopProcess, zap.NewNop())
}

func TestRegistryFindByCapability(t *testing.T) {
	g := NewRegistry()
	extractor := newTestAgent("meeting_agent", "extract_actions", "summarize")
	tasker := newTestAgent("task_agent", "synthesize_tasks")

	if err := g.Register(extractor); err != nil {
		t.Fatalf("Register(extractor) failed: %v", err)
	}
	if err := g.Register(tasker); err != nil {
		t.Fatalf("Register(tasker) failed: %v", err)
	}

	found, ok := g.FindAgentForCapability("extract_actions")
	if !ok || found.ID() != "meeting_agent" {
		t.Errorf("FindAgentForCapability(extract_actions) = %v, want meeting_agent", found)
	}
	found, ok = g.FindAgentForCapability("synthesize_tasks")
	if !ok || found.ID() != "task_agent" {
		t.Errorf("FindAgentForCapability(synthesize_tasks) = %v, want task_agent", found)
	}
	if _, ok := g.FindAgentForCapability("translate"); ok {
		t.Error("expected no agent for unregistered capability")
	}
}

func TestRegistryRejectsDuplicateCapability(t *testing.T) {
	g := NewRegistry()
	if err := g.Register(newTestAgent("first", "extract_actions")); err != nil {
		t.Fatalf("Register(first) failed: %v", err)
	}

	err := g.Register(newTestAgent("second", "extract_actions", "summarize"))
	if err == nil {
		t.Fatal("expected duplicate capability registration to fail")
	}

	// The failed registration must not claim any capability.
	if _, ok := g.FindAgentForCapability("summarize"); ok {
		t.Error("failed registration leaked a capability claim")
	}
	if g.Count() != 1 {
		t.Errorf("Count() = %d, want 1", g.Count())
	}
}

func TestRegistryRejectsDuplicateAgentID(t *testing.T) {
	g := NewRegistry()
	if err := g.Register(newTestAgent("dup", "a")); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := g.Register(newTestAgent("dup", "b")); err == nil {
		t.Fatal("expected duplicate agent ID registration to fail")
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	g := NewRegistry()
	ids := []string{"document_agent", "meeting_agent", "task_agent", "conflict_detector"}
	for i, id := range ids {
		if err := g.Register(newTestAgent(id, id+"_cap")); err != nil {
			t.Fatalf("Register(%q) failed: %v", ids[i], err)
		}
	}

	all := g.AllAgents()
	if len(all) != len(ids) {
		t.Fatalf("AllAgents() returned %d agents, want %d", len(all), len(ids))
	}
	for i, a := range all {
		if a.ID() != ids[i] {
			t.Errorf("AllAgents()[%d] = %q, want %q", i, a.ID(), ids[i])
		}
	}
}

func TestRegistryStatuses(t *testing.T) {
	g := NewRegistry()
	a := newTestAgent("worker", "work")
	if err := g.Register(a); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	statuses := g.Statuses()
	if statuses["worker"] != StatusIdle {
		t.Errorf("status = %q, want %q", statuses["worker"], StatusIdle)
	}
}
