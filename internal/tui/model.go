package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hollyburn/rentflow/internal/engine"
	"github.com/hollyburn/rentflow/internal/recon"
)

// Action is the reviewer's choice for one suggestion.
type Action int

// Review actions.
const (
	ActionDefer Action = iota
	ActionAccept
	ActionSkip
)

// Decision records the outcome of reviewing one suggestion.
type Decision struct {
	OccurrenceID  string
	TransactionID string
	Action        Action
}

// Styles holds the lipgloss styles for the review view.
type Styles struct {
	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Selected   lipgloss.Style
	Unselected lipgloss.Style
	High       lipgloss.Style
	Medium     lipgloss.Style
	Faint      lipgloss.Style
}

// DefaultStyles returns the default review styles.
func DefaultStyles() Styles {
	return Styles{
		Title:      lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		Subtitle:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selected:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		Unselected: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		High:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Medium:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Faint:      lipgloss.NewStyle().Faint(true),
	}
}

// Model is the bubbletea model for reviewing match suggestions one at a
// time.
type Model struct {
	suggestions []engine.MatchSuggestion
	decisions   []Decision
	keymap      KeyMap
	styles      Styles
	help        help.Model
	index       int
	cursor      int
	width       int
	quitting    bool
}

// NewModel creates a review model over the given suggestions.
func NewModel(suggestions []engine.MatchSuggestion) Model {
	return Model{
		suggestions: suggestions,
		keymap:      DefaultKeyMap(),
		styles:      DefaultStyles(),
		help:        help.New(),
	}
}

// Decisions returns the recorded outcomes. Suggestions never reached before
// quitting are absent, which leaves their occurrences pending.
func (m Model) Decisions() []Decision {
	return m.decisions
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keymap.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keymap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}

		if m.done() {
			return m, tea.Quit
		}

		current := m.suggestions[m.index]

		switch {
		case key.Matches(msg, m.keymap.Up):
			if m.cursor > 0 {
				m.cursor--
			}

		case key.Matches(msg, m.keymap.Down):
			if m.cursor < len(current.Matches)-1 {
				m.cursor++
			}

		case key.Matches(msg, m.keymap.Accept):
			m.decisions = append(m.decisions, Decision{
				OccurrenceID:  current.Occurrence.ID,
				TransactionID: current.Matches[m.cursor].Transaction.ID,
				Action:        ActionAccept,
			})
			return m.advance()

		case key.Matches(msg, m.keymap.Skip):
			m.decisions = append(m.decisions, Decision{
				OccurrenceID: current.Occurrence.ID,
				Action:       ActionSkip,
			})
			return m.advance()

		case key.Matches(msg, m.keymap.Defer):
			m.decisions = append(m.decisions, Decision{
				OccurrenceID: current.Occurrence.ID,
				Action:       ActionDefer,
			})
			return m.advance()
		}
	}

	return m, nil
}

func (m Model) advance() (tea.Model, tea.Cmd) {
	m.index++
	m.cursor = 0
	if m.done() {
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) done() bool {
	return m.index >= len(m.suggestions)
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting || m.done() {
		return ""
	}

	current := m.suggestions[m.index]
	occ := current.Occurrence

	var b strings.Builder
	b.WriteString(m.styles.Title.Render(fmt.Sprintf("Review match %d of %d", m.index+1, len(m.suggestions))))
	b.WriteString("\n\n")

	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("%s  $%.2f due %s",
		current.Template.Description,
		occ.Amount,
		occ.DueDate.Format("Mon 2 Jan 2006"))))
	b.WriteString("\n\n")

	for i, match := range current.Matches {
		line := fmt.Sprintf("%s  $%.2f  %s  (%s, %dd off)",
			match.Transaction.Date.Format("2006-01-02"),
			match.Transaction.AbsAmount(),
			match.Transaction.Description,
			match.Confidence,
			match.DateDiffDays)

		tier := m.styles.Medium
		if match.Confidence == recon.ConfidenceHigh {
			tier = m.styles.High
		}

		if i == m.cursor {
			b.WriteString(m.styles.Selected.Render("> " + tier.Render(line)))
		} else {
			b.WriteString(m.styles.Unselected.Render("  " + line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keymap))

	return b.String()
}
