package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hollyburn/rentflow/internal/engine"
)

// Review runs the interactive review over the suggestions and returns the
// reviewer's decisions. A quit before the end returns the decisions made so
// far; untouched occurrences stay pending.
func Review(ctx context.Context, suggestions []engine.MatchSuggestion) ([]Decision, error) {
	if len(suggestions) == 0 {
		return nil, nil
	}

	program := tea.NewProgram(NewModel(suggestions), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("review session failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}

	return m.Decisions(), nil
}

// ApplyDecisions persists review outcomes through the engine. Deferred
// decisions are no-ops.
func ApplyDecisions(ctx context.Context, eng *engine.ForecastEngine, decisions []Decision) error {
	for _, d := range decisions {
		switch d.Action {
		case ActionAccept:
			if err := eng.ConfirmMatch(ctx, d.OccurrenceID, d.TransactionID); err != nil {
				return err
			}
		case ActionSkip:
			if err := eng.SkipOccurrence(ctx, d.OccurrenceID); err != nil {
				return err
			}
		case ActionDefer:
		}
	}
	return nil
}
