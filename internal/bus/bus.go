// Package bus implements the in-process publish/subscribe broker that
// decouples agents from one another and from the orchestrator.
package bus

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event is an immutable message delivered to subscribers. Ordering is
// per-callback-invocation within the dispatch goroutine, not globally total.
type Event struct {
	// ID uniquely identifies the event.
	ID string
	// SourceAgent is the ID of the publishing agent.
	SourceAgent string
	// Type is the routing key for subscribers.
	Type string
	// Payload carries event-specific data. Treated as opaque by the bus.
	Payload map[string]any
	// Timestamp is when the event was published.
	Timestamp time.Time
}

// Callback receives a dispatched event. A panicking callback is recovered
// and logged; it does not stop the dispatch loop or starve other callbacks.
type Callback func(Event)

// Bus is an asynchronous broker with a single dispatch goroutine. Publish
// never blocks the caller; the pending queue is unbounded. Subscriptions
// registered before Start are guaranteed to see every subsequent publish;
// subscriptions added while the bus is running are best-effort for events
// already enqueued.
type Bus struct {
	logger *zap.Logger

	mu          sync.Mutex
	cond        *sync.Cond
	pending     []Event
	subscribers map[string][]Callback
	running     bool
	done        chan struct{}
}

// New creates a stopped Bus. Call Start to begin dispatching.
func New(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &Bus{
		logger:      logger,
		subscribers: make(map[string][]Callback),
	}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Subscribe registers a callback for every subsequent publish of eventType.
// Callbacks for a type are invoked in registration order.
func (b *Bus) Subscribe(eventType string, cb Callback) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], cb)
}

// Publish enqueues an event and returns immediately.
func (b *Bus) Publish(sourceAgent, eventType string, payload map[string]any) {
	ev := Event{
		ID:          uuid.New().String(),
		SourceAgent: sourceAgent,
		Type:        eventType,
		Payload:     payload,
		Timestamp:   time.Now(),
	}

	b.mu.Lock()
	b.pending = append(b.pending, ev)
	b.mu.Unlock()
	b.cond.Signal()
}

// Start launches the dispatch goroutine. Starting a running bus is a no-op.
func (b *Bus) Start() {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.done = make(chan struct{})
	b.mu.Unlock()

	go b.dispatch()
}

// Stop signals the dispatch goroutine and waits for it to drain the events
// already enqueued and exit. Stopping a stopped bus is a no-op.
func (b *Bus) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	done := b.done
	b.mu.Unlock()
	b.cond.Signal()

	<-done
}

// dispatch drains the pending queue, invoking every registered callback for
// each event's type. It exits once Stop is observed and the queue is empty.
func (b *Bus) dispatch() {
	for {
		b.mu.Lock()
		for len(b.pending) == 0 && b.running {
			b.cond.Wait()
		}
		if len(b.pending) == 0 && !b.running {
			done := b.done
			b.mu.Unlock()
			close(done)
			return
		}
		ev := b.pending[0]
		b.pending = b.pending[1:]
		cbs := append([]Callback(nil), b.subscribers[ev.Type]...)
		b.mu.Unlock()

		for _, cb := range cbs {
			b.invoke(ev, cb)
		}
	}
}

// invoke runs a single callback, recovering panics so one bad subscriber
// cannot take down the dispatch loop.
func (b *Bus) invoke(ev Event, cb Callback) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("subscriber callback panicked",
				zap.String("event_type", ev.Type),
				zap.String("source_agent", ev.SourceAgent),
				zap.String("panic", fmt.Sprint(r)))
		}
	}()
	cb(ev)
}

// Depth returns the number of events waiting for dispatch.
func (b *Bus) Depth() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
