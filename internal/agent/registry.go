package agent

import (
	"fmt"
	"sync"
)

// Registry maps capability names to the agent that declared them. Each
// capability may be owned by exactly one agent: registering a second owner
// is a configuration error, surfaced at registration time rather than
// resolved by silent first-match routing.
type Registry struct {
	mu sync.RWMutex
	// agents preserves registration order.
	agents []*Runtime
	// byCapability maps a capability to its owning agent.
	byCapability map[string]*Runtime
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byCapability: make(map[string]*Runtime),
	}
}

// Register stores an agent and claims its capabilities. It fails if the
// agent ID or any capability is already registered; on failure nothing is
// recorded.
func (g *Registry) Register(a *Runtime) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, existing := range g.agents {
		if existing.ID() == a.ID() {
			return fmt.Errorf("agent %q already registered", a.ID())
		}
	}
	for _, cap := range a.Capabilities() {
		if owner, ok := g.byCapability[cap]; ok {
			return fmt.Errorf("capability %q already owned by agent %q", cap, owner.ID())
		}
	}

	g.agents = append(g.agents, a)
	for _, cap := range a.Capabilities() {
		g.byCapability[cap] = a
	}
	return nil
}

// FindAgentForCapability returns the agent owning the capability.
func (g *Registry) FindAgentForCapability(capability string) (*Runtime, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	a, ok := g.byCapability[capability]
	return a, ok
}

// AllAgents returns the registered agents in registration order.
func (g *Registry) AllAgents() []*Runtime {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]*Runtime(nil), g.agents...)
}

// Statuses returns the current status of every registered agent.
func (g *Registry) Statuses() map[string]Status {
	g.mu.RLock()
	agents := append([]*Runtime(nil), g.agents...)
	g.mu.RUnlock()

	statuses := make(map[string]Status, len(agents))
	for _, a := range agents {
		statuses[a.ID()] = a.Status()
	}
	return statuses
}

// Capabilities returns every registered capability.
func (g *Registry) Capabilities() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	caps := make([]string, 0, len(g.byCapability))
	for cap := range g.byCapability {
		caps = append(caps, cap)
	}
	return caps
}

// Count returns the number of registered agents.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.agents)
}
