package bus

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestFanOut(t *testing.T) {
	b := New(zap.NewNop())

	first := make(chan Event, 1)
	second := make(chan Event, 1)
	b.Subscribe("tasks_synthesized", func(ev Event) { first <- ev })
	b.Subscribe("tasks_synthesized", func(ev Event) { second <- ev })

	b.Start()
	defer b.Stop()

	b.Publish("task_agent", "tasks_synthesized", map[string]any{"count": 3})

	ev1 := waitEvent(t, first)
	ev2 := waitEvent(t, second)

	if ev1.ID != ev2.ID {
		t.Errorf("subscribers saw different events: %q vs %q", ev1.ID, ev2.ID)
	}
	if ev1.SourceAgent != "task_agent" {
		t.Errorf("SourceAgent = %q, want %q", ev1.SourceAgent, "task_agent")
	}
	if got := ev1.Payload["count"]; got != 3 {
		t.Errorf("payload count = %v, want 3", got)
	}

	// Exactly once each: no second delivery should arrive.
	select {
	case <-first:
		t.Error("first subscriber received a duplicate event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestTypeSelectivity(t *testing.T) {
	b := New(zap.NewNop())

	matched := make(chan Event, 1)
	other := make(chan Event, 1)
	b.Subscribe("document_processed", func(ev Event) { matched <- ev })
	b.Subscribe("conflicts_detected", func(ev Event) { other <- ev })

	b.Start()
	defer b.Stop()

	b.Publish("document_agent", "document_processed", nil)

	waitEvent(t, matched)
	select {
	case <-other:
		t.Error("subscriber received an event of a different type")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPanickingCallbackDoesNotStopDispatch(t *testing.T) {
	b := New(zap.NewNop())

	delivered := make(chan Event, 2)
	b.Subscribe("work_completed", func(Event) { panic("bad subscriber") })
	b.Subscribe("work_completed", func(ev Event) { delivered <- ev })

	b.Start()
	defer b.Stop()

	b.Publish("agent-1", "work_completed", nil)
	waitEvent(t, delivered)

	// Dispatch loop must still be alive for the next event.
	b.Publish("agent-1", "work_completed", nil)
	waitEvent(t, delivered)
}

func TestPublishDoesNotBlockWhenStopped(t *testing.T) {
	b := New(zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			b.Publish("agent-1", "work_completed", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked with no dispatcher running")
	}

	if b.Depth() != 1000 {
		t.Errorf("Depth() = %d, want 1000", b.Depth())
	}
}

func TestStopDrainsPendingEvents(t *testing.T) {
	b := New(zap.NewNop())

	delivered := make(chan Event, 10)
	b.Subscribe("work_completed", func(ev Event) { delivered <- ev })

	b.Start()
	for i := 0; i < 10; i++ {
		b.Publish("agent-1", "work_completed", nil)
	}
	b.Stop()

	if got := len(delivered); got != 10 {
		t.Errorf("delivered %d events before Stop returned, want 10", got)
	}
}

func TestCallbackOrder(t *testing.T) {
	b := New(zap.NewNop())

	order := make(chan int, 3)
	for i := 0; i < 3; i++ {
		i := i
		b.Subscribe("meeting_analyzed", func(Event) { order <- i })
	}

	b.Start()
	b.Publish("meeting_agent", "meeting_analyzed", nil)
	b.Stop()

	for want := 0; want < 3; want++ {
		if got := <-order; got != want {
			t.Fatalf("callback %d ran out of order (got %d)", want, got)
		}
	}
}
