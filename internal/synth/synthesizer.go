// Package synth turns approved action items into the authoritative task
// list, discarding near-duplicates and assigning priorities.
package synth

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/textutil"
	"github.com/taskloom/taskloom/pkg/models"
)

// duplicateThreshold is the Jaccard similarity above which an incoming
// item is discarded. Strictly greater-than: a pair at exactly 0.8 is kept.
const duplicateThreshold = 0.8

var urgentKeywords = []string{"urgent", "asap", "immediately", "critical"}

var highKeywords = []string{"important", "priority", "soon"}

// Synthesizer owns the authoritative task list. It is safe for use from
// multiple goroutines; the list is only ever mutated under the mutex.
type Synthesizer struct {
	logger *zap.Logger

	mu    sync.Mutex
	tasks []models.Task
}

// NewSynthesizer creates an empty Synthesizer.
func NewSynthesizer(logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{logger: logger}
}

// Synthesize folds the action items into the authoritative list. Items
// whose text is a near-duplicate of an existing task are discarded; the
// rest are appended in arrival order with an inferred priority. Returns a
// snapshot of the full list after folding.
func (s *Synthesizer) Synthesize(items []models.ActionItem) []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if s.isDuplicate(item.Task) {
			s.logger.Debug("discarded duplicate action item", zap.String("task", item.Task))
			continue
		}
		s.tasks = append(s.tasks, models.Task{
			Task:     item.Task,
			Assignee: item.Assignee,
			Deadline: item.Deadline,
			Priority: InferPriority(item.Task, item.Deadline),
		})
	}
	return append([]models.Task(nil), s.tasks...)
}

// Tasks returns the authoritative list sorted by priority rank, preserving
// arrival order among tasks of equal priority.
func (s *Synthesizer) Tasks() []models.Task {
	s.mu.Lock()
	snapshot := append([]models.Task(nil), s.tasks...)
	s.mu.Unlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Priority.Rank() < snapshot[j].Priority.Rank()
	})
	return snapshot
}

// Snapshot returns the authoritative list in arrival order.
func (s *Synthesizer) Snapshot() []models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Task(nil), s.tasks...)
}

// Count returns the number of authoritative tasks.
func (s *Synthesizer) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Reset clears the authoritative list.
func (s *Synthesizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = nil
}

// isDuplicate reports whether text is a near-duplicate of any existing
// task. Caller holds s.mu.
func (s *Synthesizer) isDuplicate(text string) bool {
	for _, existing := range s.tasks {
		if textutil.Jaccard(text, existing.Task) > duplicateThreshold {
			return true
		}
	}
	return false
}

// InferPriority applies the fixed precedence: urgent keyword, then
// high-priority keyword, then deadline presence, then normal.
func InferPriority(taskText, deadline string) models.Priority {
	lower := strings.ToLower(taskText)
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return models.PriorityUrgent
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return models.PriorityHigh
		}
	}
	if strings.TrimSpace(deadline) != "" {
		return models.PriorityMedium
	}
	return models.PriorityNormal
}
