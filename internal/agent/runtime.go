// Package agent provides the generic execution shell around a
// capability-specific processing function, plus the registry that maps
// capabilities to the agents owning them.
package agent

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/bus"
)

// Status reports what an agent's worker is currently doing.
type Status string

const (
	// StatusIdle means the worker is waiting for work.
	StatusIdle Status = "idle"
	// StatusProcessing means the worker is inside the process function.
	StatusProcessing Status = "processing"
	// StatusError means the most recent work item failed.
	StatusError Status = "error"
)

// Event types published by the runtime.
const (
	// EventWorkCompleted carries agent_id, work_item and result.
	EventWorkCompleted = "work_completed"
	// EventWorkFailed carries agent_id and error.
	EventWorkFailed = "work_failed"
)

// WorkItem is the unit of routed work: a capability tag plus an opaque
// payload whose shape the routing layer never validates.
type WorkItem struct {
	// Capability names the unit of work and is the sole routing key.
	Capability string
	// Payload carries capability-specific data.
	Payload map[string]any
}

// ProcessFunc handles one work item. The returned map becomes the result
// carried on the work_completed event; a non-nil error produces a
// work_failed event instead, and the worker keeps running.
type ProcessFunc func(ctx context.Context, item WorkItem) (map[string]any, error)

// Runtime owns a private FIFO queue and a dedicated worker goroutine for a
// single agent. Enqueue never blocks; the queue is unbounded. The worker
// processes one item fully before taking the next and always lets an
// in-flight item finish during shutdown.
type Runtime struct {
	id           string
	capabilities []string
	process      ProcessFunc
	bus          *bus.Bus
	logger       *zap.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []WorkItem
	status  Status
	running bool
	done    chan struct{}
}

// NewRuntime creates a stopped Runtime. The capability slice is copied and
// fixed for the lifetime of the agent.
func NewRuntime(id string, capabilities []string, b *bus.Bus, process ProcessFunc, logger *zap.Logger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runtime{
		id:           id,
		capabilities: append([]string(nil), capabilities...),
		process:      process,
		bus:          b,
		logger:       logger.With(zap.String("agent_id", id)),
		status:       StatusIdle,
	}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// ID returns the agent's unique identifier.
func (r *Runtime) ID() string { return r.id }

// Capabilities returns a copy of the agent's capability set.
func (r *Runtime) Capabilities() []string {
	return append([]string(nil), r.capabilities...)
}

// Status returns the worker's current status.
func (r *Runtime) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Enqueue appends a work item to the private queue and returns immediately.
// Items enqueued after Stop are accepted but not processed until the next
// Start.
func (r *Runtime) Enqueue(item WorkItem) {
	r.mu.Lock()
	r.queue = append(r.queue, item)
	r.mu.Unlock()
	r.cond.Signal()
}

// QueueDepth returns the number of items waiting to be processed.
func (r *Runtime) QueueDepth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Start launches the worker goroutine. Starting a running agent is a no-op.
func (r *Runtime) Start(ctx context.Context) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return
	}
	r.running = true
	r.done = make(chan struct{})
	r.mu.Unlock()

	go r.run(ctx)
}

// Stop signals the worker and waits for it to exit. An item already in
// flight finishes; remaining queued items stay queued.
func (r *Runtime) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	done := r.done
	r.mu.Unlock()
	r.cond.Signal()

	<-done
}

// run is the worker loop: pull one item, process it, report the outcome.
func (r *Runtime) run(ctx context.Context) {
	for {
		r.mu.Lock()
		for len(r.queue) == 0 && r.running {
			r.cond.Wait()
		}
		if !r.running {
			done := r.done
			r.status = StatusIdle
			r.mu.Unlock()
			close(done)
			return
		}
		item := r.queue[0]
		r.queue = r.queue[1:]
		r.status = StatusProcessing
		r.mu.Unlock()

		result, err := r.invoke(ctx, item)

		r.mu.Lock()
		if err != nil {
			r.status = StatusError
		} else {
			r.status = StatusIdle
		}
		r.mu.Unlock()

		if err != nil {
			r.logger.Warn("work item failed",
				zap.String("capability", item.Capability),
				zap.Error(err))
			r.bus.Publish(r.id, EventWorkFailed, map[string]any{
				"agent_id": r.id,
				"error":    err.Error(),
			})
			continue
		}

		if result != nil {
			r.bus.Publish(r.id, EventWorkCompleted, map[string]any{
				"agent_id":  r.id,
				"work_item": item,
				"result":    result,
			})
		}
	}
}

// invoke runs the process function, converting a panic into an error so a
// buggy processor cannot terminate the worker loop.
func (r *Runtime) invoke(ctx context.Context, item WorkItem) (result map[string]any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("process panicked: %v", rec)
		}
	}()
	return r.process(ctx, item)
}
