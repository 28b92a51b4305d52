package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/agent"
)

// RoutingMissError reports a work item whose capability no registered
// agent provides. The pipeline drops the item; the error exists so direct
// callers can tell the submission went nowhere.
type RoutingMissError struct {
	Capability string
	Available  []string
}

func (e *RoutingMissError) Error() string {
	return fmt.Sprintf("no agent for capability %q (available: %s)",
		e.Capability, strings.Join(e.Available, ", "))
}

// Supervisor routes work items to agents by capability and manages the
// agents' lifecycle.
type Supervisor struct {
	registry *agent.Registry
	logger   *zap.Logger
}

// NewSupervisor creates a supervisor over the given registry.
func NewSupervisor(registry *agent.Registry, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{registry: registry, logger: logger}
}

// RouteTask delivers the item to the agent providing its capability.
// Returns a *RoutingMissError when no agent matches; the item is dropped.
func (s *Supervisor) RouteTask(item agent.WorkItem) error {
	target, ok := s.registry.FindAgentForCapability(item.Capability)
	if !ok {
		err := &RoutingMissError{
			Capability: item.Capability,
			Available:  s.registry.Capabilities(),
		}
		s.logger.Warn("work item dropped", zap.String("capability", item.Capability))
		return err
	}

	s.logger.Debug("routing work item",
		zap.String("capability", item.Capability),
		zap.String("agent", target.ID()))
	target.Enqueue(item)
	return nil
}

// Start starts every registered agent.
func (s *Supervisor) Start(ctx context.Context) {
	for _, a := range s.registry.AllAgents() {
		a.Start(ctx)
	}
}

// Stop stops every registered agent, letting in-flight work finish.
func (s *Supervisor) Stop() {
	for _, a := range s.registry.AllAgents() {
		a.Stop()
	}
}

// AgentStatuses returns the current status of every registered agent.
func (s *Supervisor) AgentStatuses() map[string]agent.Status {
	return s.registry.Statuses()
}
