package memory

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *EpisodicStore {
	t.Helper()
	store, err := OpenEpisodic(filepath.Join(t.TempDir(), "episodic.db"))
	if err != nil {
		t.Fatalf("OpenEpisodic: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAddAndRecent(t *testing.T) {
	store := openTestStore(t)

	err := store.Add(Episode{
		EventType:    "document_processed",
		SourceFile:   "notes.txt",
		Content:      "3 action items extracted",
		Participants: []string{"john", "sarah"},
		Metadata:     map[string]any{"items": float64(3)},
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	episodes, err := store.Recent(time.Hour, "")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(episodes) != 1 {
		t.Fatalf("got %d episodes, want 1", len(episodes))
	}

	ep := episodes[0]
	if ep.EventType != "document_processed" || ep.SourceFile != "notes.txt" {
		t.Errorf("unexpected episode: %+v", ep)
	}
	if len(ep.Participants) != 2 || ep.Participants[0] != "john" {
		t.Errorf("participants = %v", ep.Participants)
	}
	if ep.Metadata["items"] != float64(3) {
		t.Errorf("metadata = %v", ep.Metadata)
	}
	if ep.Timestamp.IsZero() {
		t.Error("timestamp not filled")
	}
}

func TestRecentFiltersByTypeAndAge(t *testing.T) {
	store := openTestStore(t)

	old := Episode{EventType: "document_processed", Timestamp: time.Now().Add(-48 * time.Hour)}
	if err := store.Add(old); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(Episode{EventType: "document_processed", Content: "fresh"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Add(Episode{EventType: "task_approved", Content: "other"}); err != nil {
		t.Fatal(err)
	}

	episodes, err := store.Recent(24*time.Hour, "document_processed")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(episodes) != 1 {
		t.Fatalf("got %d episodes, want 1", len(episodes))
	}
	if episodes[0].Content != "fresh" {
		t.Errorf("content = %q", episodes[0].Content)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	store := openTestStore(t)

	base := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		ep := Episode{EventType: "tick", Content: string(rune('a' + i)), Timestamp: base.Add(time.Duration(i) * time.Second)}
		if err := store.Add(ep); err != nil {
			t.Fatal(err)
		}
	}

	episodes, err := store.Recent(time.Hour, "tick")
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(episodes) != 3 {
		t.Fatalf("got %d episodes, want 3", len(episodes))
	}
	if episodes[0].Content != "c" || episodes[2].Content != "a" {
		t.Errorf("order = %q %q %q", episodes[0].Content, episodes[1].Content, episodes[2].Content)
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episodic.db")

	store, err := OpenEpisodic(path)
	if err != nil {
		t.Fatalf("OpenEpisodic: %v", err)
	}
	if err := store.Add(Episode{EventType: "document_processed"}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	reopened, err := OpenEpisodic(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}
