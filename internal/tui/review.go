// Package tui provides the terminal user interface for reviewing
// confirmation items.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/taskloom/taskloom/internal/confirm"
)

// Decider applies human review decisions. The orchestrator's Assistant
// satisfies it.
type Decider interface {
	Approve(id string, editedData map[string]any) (confirm.Item, error)
	Reject(id, reason string) (confirm.Item, error)
}

type mode int

const (
	modeBrowse mode = iota
	modeReason
)

// ReviewModel is a bubbletea model that walks the pending confirmation
// queue, approving or rejecting items one at a time.
type ReviewModel struct {
	decider Decider
	items   []confirm.Item
	cursor  int
	mode    mode
	reason  textinput.Model
	err     error

	approved int
	rejected int

	width  int
	height int

	titleStyle    lipgloss.Style
	selectedStyle lipgloss.Style
	labelStyle    lipgloss.Style
	promptStyle   lipgloss.Style
	dimStyle      lipgloss.Style
	errStyle      lipgloss.Style
}

// NewReviewModel creates a review model over the given pending items.
func NewReviewModel(decider Decider, items []confirm.Item) ReviewModel {
	reason := textinput.New()
	reason.Placeholder = "rejection reason (optional)"
	reason.CharLimit = 200

	return ReviewModel{
		decider: decider,
		items:   items,
		reason:  reason,
		width:   80,
		height:  24,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Background(lipgloss.Color("236")).
			Padding(0, 2),
		selectedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true),
		labelStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Bold(true),
		promptStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		dimStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")),
		errStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
	}
}

// Init implements tea.Model.
func (m ReviewModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeReason {
			return m.updateReason(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m ReviewModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}

	case "y", "Y":
		if len(m.items) == 0 {
			return m, nil
		}
		item := m.items[m.cursor]
		if _, err := m.decider.Approve(item.ID, nil); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.approved++
		m.removeCurrent()
		if len(m.items) == 0 {
			return m, tea.Quit
		}

	case "n", "N":
		if len(m.items) == 0 {
			return m, nil
		}
		m.mode = modeReason
		m.reason.SetValue("")
		m.reason.Focus()
	}
	return m, nil
}

func (m ReviewModel) updateReason(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.reason.Blur()
		return m, nil

	case "enter":
		item := m.items[m.cursor]
		if _, err := m.decider.Reject(item.ID, m.reason.Value()); err != nil {
			m.err = err
			m.mode = modeBrowse
			return m, nil
		}
		m.err = nil
		m.rejected++
		m.mode = modeBrowse
		m.reason.Blur()
		m.removeCurrent()
		if len(m.items) == 0 {
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.reason, cmd = m.reason.Update(msg)
	return m, cmd
}

func (m *ReviewModel) removeCurrent() {
	m.items = append(m.items[:m.cursor], m.items[m.cursor+1:]...)
	if m.cursor >= len(m.items) && m.cursor > 0 {
		m.cursor--
	}
}

// View implements tea.Model.
func (m ReviewModel) View() string {
	var sb strings.Builder

	sb.WriteString(m.titleStyle.Render(" Pending Confirmations "))
	sb.WriteString("\n\n")

	if len(m.items) == 0 {
		sb.WriteString(m.dimStyle.Render("Nothing left to review."))
		sb.WriteString("\n")
		return sb.String()
	}

	for i, item := range m.items {
		line := fmt.Sprintf("  %s  %s", item.ID, itemTitle(item))
		if i == m.cursor {
			line = m.selectedStyle.Render("> " + strings.TrimLeft(line, " "))
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	item := m.items[m.cursor]
	sb.WriteString(m.labelStyle.Render("Task:       "))
	sb.WriteString(itemTitle(item))
	sb.WriteString("\n")
	sb.WriteString(m.labelStyle.Render("Assignee:   "))
	sb.WriteString(dataString(item, "assignee"))
	sb.WriteString("\n")
	sb.WriteString(m.labelStyle.Render("Deadline:   "))
	sb.WriteString(dataString(item, "deadline"))
	sb.WriteString("\n")
	sb.WriteString(m.labelStyle.Render("Confidence: "))
	sb.WriteString(fmt.Sprintf("%.2f", item.Confidence))
	sb.WriteString("\n\n")

	if m.err != nil {
		sb.WriteString(m.errStyle.Render("error: " + m.err.Error()))
		sb.WriteString("\n\n")
	}

	if m.mode == modeReason {
		sb.WriteString(m.promptStyle.Render("Reject with reason:"))
		sb.WriteString("\n")
		sb.WriteString(m.reason.View())
		sb.WriteString("\n")
		sb.WriteString(m.dimStyle.Render("(enter to confirm, esc to cancel)"))
	} else {
		sb.WriteString(m.promptStyle.Render("[Y]es approve / [N]o reject / [Q]uit"))
		sb.WriteString("\n")
		sb.WriteString(m.dimStyle.Render(fmt.Sprintf("(j/k to move, %d approved, %d rejected)", m.approved, m.rejected)))
	}
	return sb.String()
}

// Counts returns how many items were approved and rejected so far.
func (m ReviewModel) Counts() (approved, rejected int) {
	return m.approved, m.rejected
}

// Remaining returns the number of items still awaiting a decision.
func (m ReviewModel) Remaining() int {
	return len(m.items)
}

func itemTitle(item confirm.Item) string {
	if task, ok := item.Data["task"].(string); ok && task != "" {
		return task
	}
	return item.Type
}

func dataString(item confirm.Item, key string) string {
	if v, ok := item.Data[key].(string); ok && v != "" {
		return v
	}
	return "-"
}

// RunReview runs the review UI over the current pending queue and returns
// the approved/rejected counts.
func RunReview(decider Decider, items []confirm.Item) (approved, rejected int, err error) {
	program := tea.NewProgram(NewReviewModel(decider, items))
	final, err := program.Run()
	if err != nil {
		return 0, 0, err
	}
	model, ok := final.(ReviewModel)
	if !ok {
		return 0, 0, fmt.Errorf("unexpected model type %T", final)
	}
	approved, rejected = model.Counts()
	return approved, rejected, nil
}
