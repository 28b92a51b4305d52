package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/bus"
)

func collectEvents(b *bus.Bus, eventType string) <-chan bus.Event {
	ch := make(chan bus.Event, 16)
	b.Subscribe(eventType, func(ev bus.Event) { ch <- ev })
	return ch
}

func waitEvent(t *testing.T, ch <-chan bus.Event) bus.Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return bus.Event{}
	}
}

func TestRuntimeProcessesFIFO(t *testing.T) {
	b := bus.New(zap.NewNop())

	var mu sync.Mutex
	var seen []string
	done := make(chan struct{}, 3)

	r := NewRuntime("echo", []string{"echo"}, b, func(_ context.Context, item WorkItem) (map[string]any, error) {
		mu.Lock()
		seen = append(seen, item.Payload["n"].(string))
		mu.Unlock()
		done <- struct{}{}
		return map[string]any{"ok": true}, nil
	}, zap.NewNop())

	b.Start()
	defer b.Stop()
	r.Start(context.Background())
	defer r.Stop()

	for _, n := range []string{"a", "b", "c"} {
		r.Enqueue(WorkItem{Capability: "echo", Payload: map[string]any{"n": n}})
	}
	for i := 0; i < 3; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for work item")
		}
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 3 || seen[0] != "a" || seen[1] != "b" || seen[2] != "c" {
		t.Errorf("processed order = %v, want [a b c]", seen)
	}
}

func TestRuntimePublishesWorkCompleted(t *testing.T) {
	b := bus.New(zap.NewNop())
	completed := collectEvents(b, EventWorkCompleted)

	r := NewRuntime("worker", []string{"work"}, b, func(_ context.Context, item WorkItem) (map[string]any, error) {
		return map[string]any{"answer": 42}, nil
	}, zap.NewNop())

	b.Start()
	defer b.Stop()
	r.Start(context.Background())
	defer r.Stop()

	r.Enqueue(WorkItem{Capability: "work"})

	ev := waitEvent(t, completed)
	if ev.Payload["agent_id"] != "worker" {
		t.Errorf("agent_id = %v, want worker", ev.Payload["agent_id"])
	}
	result, ok := ev.Payload["result"].(map[string]any)
	if !ok || result["answer"] != 42 {
		t.Errorf("result = %v, want map with answer 42", ev.Payload["result"])
	}
}

func TestRuntimeSurvivesProcessingError(t *testing.T) {
	b := bus.New(zap.NewNop())
	failed := collectEvents(b, EventWorkFailed)
	completed := collectEvents(b, EventWorkCompleted)

	calls := 0
	r := NewRuntime("flaky", []string{"flaky"}, b, func(_ context.Context, _ WorkItem) (map[string]any, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return map[string]any{"ok": true}, nil
	}, zap.NewNop())

	b.Start()
	defer b.Stop()
	r.Start(context.Background())
	defer r.Stop()

	r.Enqueue(WorkItem{Capability: "flaky"})
	ev := waitEvent(t, failed)
	if ev.Payload["error"] != "boom" {
		t.Errorf("error payload = %v, want boom", ev.Payload["error"])
	}

	// The worker loop must still accept and process work after a failure.
	r.Enqueue(WorkItem{Capability: "flaky"})
	waitEvent(t, completed)

	if got := r.Status(); got != StatusIdle {
		t.Errorf("Status() after recovery = %q, want %q", got, StatusIdle)
	}
}

func TestRuntimeSurvivesPanic(t *testing.T) {
	b := bus.New(zap.NewNop())
	failed := collectEvents(b, EventWorkFailed)

	r := NewRuntime("panicky", []string{"panic"}, b, func(_ context.Context, _ WorkItem) (map[string]any, error) {
		panic("unexpected payload shape")
	}, zap.NewNop())

	b.Start()
	defer b.Stop()
	r.Start(context.Background())
	defer r.Stop()

	r.Enqueue(WorkItem{Capability: "panic"})
	waitEvent(t, failed)

	r.Enqueue(WorkItem{Capability: "panic"})
	waitEvent(t, failed)
}

func TestRuntimeStatusErrorAfterFailure(t *testing.T) {
	b := bus.New(zap.NewNop())
	failed := collectEvents(b, EventWorkFailed)

	r := NewRuntime("bad", []string{"bad"}, b, func(_ context.Context, _ WorkItem) (map[string]any, error) {
		return nil, errors.New("always fails")
	}, zap.NewNop())

	b.Start()
	defer b.Stop()
	r.Start(context.Background())
	defer r.Stop()

	r.Enqueue(WorkItem{Capability: "bad"})
	waitEvent(t, failed)

	if got := r.Status(); got != StatusError {
		t.Errorf("Status() = %q, want %q", got, StatusError)
	}
}

func TestRuntimeStopIsPrompt(t *testing.T) {
	b := bus.New(zap.NewNop())
	r := NewRuntime("idle", []string{"idle"}, b, func(_ context.Context, _ WorkItem) (map[string]any, error) {
		return nil, nil
	}, zap.NewNop())

	r.Start(context.Background())

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not return promptly for an idle worker")
	}
}

func TestRuntimeInFlightItemFinishesDuringStop(t *testing.T) {
	b := bus.New(zap.NewNop())

	entered := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{}, 1)

	r := NewRuntime("slow", []string{"slow"}, b, func(_ context.Context, _ WorkItem) (map[string]any, error) {
		close(entered)
		<-release
		finished <- struct{}{}
		return nil, nil
	}, zap.NewNop())

	b.Start()
	defer b.Stop()
	r.Start(context.Background())

	r.Enqueue(WorkItem{Capability: "slow"})
	<-entered

	stopped := make(chan struct{})
	go func() {
		r.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a work item was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return after the in-flight item finished")
	}
	<-finished
}
