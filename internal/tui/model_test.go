package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollyburn/rentflow/internal/engine"
	"github.com/hollyburn/rentflow/internal/model"
	"github.com/hollyburn/rentflow/internal/recon"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func testSuggestions() []engine.MatchSuggestion {
	due := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	return []engine.MatchSuggestion{
		{
			Occurrence: model.ExpectedOccurrence{ID: "occ-1", DueDate: due, Amount: 650},
			Template:   model.RecurringTemplate{Description: "Rent - 12 Harbour St"},
			Matches: []recon.Match{
				{
					Transaction:  model.Transaction{ID: "txn-1", Date: due.AddDate(0, 0, 3), Amount: 630, Description: "RENT PAYMENT"},
					Confidence:   recon.ConfidenceMedium,
					DateDiffDays: 3,
				},
				{
					Transaction:  model.Transaction{ID: "txn-2", Date: due.AddDate(0, 0, 3), Amount: 640, Description: "TRANSFER"},
					Confidence:   recon.ConfidenceMedium,
					DateDiffDays: 3,
				},
			},
		},
		{
			Occurrence: model.ExpectedOccurrence{ID: "occ-2", DueDate: due.AddDate(0, 1, 0), Amount: 650},
			Template:   model.RecurringTemplate{Description: "Rent - 12 Harbour St"},
			Matches: []recon.Match{
				{
					Transaction:  model.Transaction{ID: "txn-3", Date: due.AddDate(0, 1, 0), Amount: 650, Description: "RENT PAYMENT"},
					Confidence:   recon.ConfidenceHigh,
					DateDiffDays: 0,
				},
			},
		},
	}
}

func step(t *testing.T, m tea.Model, msg tea.Msg) tea.Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next
}

func TestModelAcceptsHighlightedCandidate(t *testing.T) {
	var m tea.Model = NewModel(testSuggestions())

	// Move to the second candidate and accept it, then skip the second
	// suggestion.
	m = step(t, m, keyMsg("j"))
	m = step(t, m, keyMsg("enter"))
	m = step(t, m, keyMsg("s"))

	final, ok := m.(Model)
	require.True(t, ok)

	decisions := final.Decisions()
	require.Len(t, decisions, 2)
	assert.Equal(t, Decision{OccurrenceID: "occ-1", TransactionID: "txn-2", Action: ActionAccept}, decisions[0])
	assert.Equal(t, Decision{OccurrenceID: "occ-2", Action: ActionSkip}, decisions[1])
}

func TestModelDeferLeavesOccurrencePending(t *testing.T) {
	var m tea.Model = NewModel(testSuggestions())

	m = step(t, m, keyMsg("d"))

	final, ok := m.(Model)
	require.True(t, ok)
	require.Len(t, final.Decisions(), 1)
	assert.Equal(t, ActionDefer, final.Decisions()[0].Action)
}

func TestModelQuitKeepsPartialDecisions(t *testing.T) {
	var m tea.Model = NewModel(testSuggestions())

	m = step(t, m, keyMsg("enter"))
	m = step(t, m, keyMsg("q"))

	final, ok := m.(Model)
	require.True(t, ok)
	assert.Len(t, final.Decisions(), 1)
}

func TestModelCursorStaysInBounds(t *testing.T) {
	var m tea.Model = NewModel(testSuggestions())

	m = step(t, m, keyMsg("k"))
	m = step(t, m, keyMsg("j"))
	m = step(t, m, keyMsg("j"))
	m = step(t, m, keyMsg("j"))

	final, ok := m.(Model)
	require.True(t, ok)
	assert.Equal(t, 1, final.cursor)
}

func TestModelView(t *testing.T) {
	m := NewModel(testSuggestions())

	view := m.View()
	assert.Contains(t, view, "Review match 1 of 2")
	assert.Contains(t, view, "Rent - 12 Harbour St")
	assert.Contains(t, view, "RENT PAYMENT")

	// Finished model renders nothing.
	done := NewModel(nil)
	assert.True(t, strings.TrimSpace(done.View()) == "")
}
