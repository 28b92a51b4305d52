// Package conflict analyzes a task-list snapshot for duplicates, deadline
// collisions, and missing mandatory fields. Detection is a pure function
// over the snapshot; reports are recomputed on demand and never stored as
// authoritative state.
package conflict

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"go.uber.org/zap"

	"github.com/taskloom/taskloom/internal/textutil"
	"github.com/taskloom/taskloom/pkg/models"
)

// duplicateThreshold matches the task-synthesis dedup threshold.
const duplicateThreshold = 0.8

// ExtraSource contributes additional conflicts of the same shape, e.g. an
// LLM-backed detector. Its absence or failure never changes the output of
// the three deterministic passes.
type ExtraSource interface {
	DetectConflicts(ctx context.Context, tasks []models.Task) ([]models.Conflict, error)
}

// Detector runs the three deterministic passes and, when configured, an
// extra source appended after them.
type Detector struct {
	extra  ExtraSource
	logger *zap.Logger
}

// NewDetector creates a Detector. extra may be nil.
func NewDetector(extra ExtraSource, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{extra: extra, logger: logger}
}

// Detect analyzes the snapshot. Output order: duplicates, then deadline
// conflicts, then missing-info, then any extra-source conflicts.
func (d *Detector) Detect(ctx context.Context, tasks []models.Task) []models.Conflict {
	conflicts := Analyze(tasks)

	if d.extra != nil {
		more, err := d.extra.DetectConflicts(ctx, tasks)
		if err != nil {
			d.logger.Warn("extra conflict source unavailable", zap.Error(err))
		} else {
			conflicts = append(conflicts, more...)
		}
	}
	return conflicts
}

// Analyze runs only the deterministic passes.
func Analyze(tasks []models.Task) []models.Conflict {
	var conflicts []models.Conflict
	conflicts = append(conflicts, detectDuplicates(tasks)...)
	conflicts = append(conflicts, detectDeadlineConflicts(tasks)...)
	conflicts = append(conflicts, detectMissingInfo(tasks)...)
	return conflicts
}

// detectDuplicates compares every unordered pair of task texts.
func detectDuplicates(tasks []models.Task) []models.Conflict {
	var conflicts []models.Conflict
	for i := 0; i < len(tasks); i++ {
		for j := i + 1; j < len(tasks); j++ {
			if textutil.Jaccard(tasks[i].Task, tasks[j].Task) > duplicateThreshold {
				conflicts = append(conflicts, models.Conflict{
					Type:          models.ConflictDuplicate,
					Description:   fmt.Sprintf("possible duplicate tasks: %q and %q", tasks[i].Task, tasks[j].Task),
					AffectedTasks: []int{i, j},
					Severity:      models.SeverityMedium,
				})
			}
		}
	}
	return conflicts
}

// deadlineEntry is a parsed deadline within an assignee group.
type deadlineEntry struct {
	index int
	date  time.Time
}

// detectDeadlineConflicts groups tasks by normalized assignee, parses each
// deadline leniently, and flags adjacent tasks due on the same calendar
// day. Unassigned tasks, empty deadlines, and unparsable deadlines are
// skipped, not errors.
func detectDeadlineConflicts(tasks []models.Task) []models.Conflict {
	groups := make(map[string][]deadlineEntry)
	var order []string

	for i, task := range tasks {
		assignee := strings.ToLower(strings.TrimSpace(task.Assignee))
		deadline := strings.TrimSpace(task.Deadline)
		if assignee == "" || assignee == "unassigned" || deadline == "" {
			continue
		}

		date, err := dateparse.ParseAny(deadline)
		if err != nil {
			continue
		}

		if _, seen := groups[assignee]; !seen {
			order = append(order, assignee)
		}
		groups[assignee] = append(groups[assignee], deadlineEntry{index: i, date: date})
	}

	var conflicts []models.Conflict
	for _, assignee := range order {
		entries := groups[assignee]
		sort.SliceStable(entries, func(a, b int) bool {
			return entries[a].date.Before(entries[b].date)
		})

		for k := 0; k < len(entries)-1; k++ {
			a, b := entries[k], entries[k+1]
			if sameDay(a.date, b.date) {
				conflicts = append(conflicts, models.Conflict{
					Type:          models.ConflictDeadline,
					Description:   fmt.Sprintf("%s has multiple tasks due on the same day", assignee),
					AffectedTasks: []int{a.index, b.index},
					Severity:      models.SeverityHigh,
					Assignee:      assignee,
					Date:          a.date.Format("2006-01-02"),
				})
			}
		}
	}
	return conflicts
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// detectMissingInfo emits one conflict per task lacking an assignee or a
// deadline.
func detectMissingInfo(tasks []models.Task) []models.Conflict {
	var conflicts []models.Conflict
	for i, task := range tasks {
		var missing []string
		assignee := strings.ToLower(strings.TrimSpace(task.Assignee))
		if assignee == "" || assignee == "unassigned" {
			missing = append(missing, "assignee")
		}
		if strings.TrimSpace(task.Deadline) == "" {
			missing = append(missing, "deadline")
		}
		if len(missing) > 0 {
			conflicts = append(conflicts, models.Conflict{
				Type:          models.ConflictMissingInfo,
				Description:   fmt.Sprintf("task missing: %s", strings.Join(missing, ", ")),
				AffectedTasks: []int{i},
				Severity:      models.SeverityLow,
				MissingFields: missing,
			})
		}
	}
	return conflicts
}
