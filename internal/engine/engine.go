// Package engine orchestrates the forecasting and reconciliation workflows:
// materializing expected occurrences from templates, matching them against
// imported transactions, flagging overdue occurrences, and suggesting new
// templates mined from history.
package engine

import (
	"io"
	"time"

	"github.com/hollyburn/rentflow/internal/service"
)

// ForecastEngine coordinates storage with the pure schedule, recon, and
// pattern packages.
type ForecastEngine struct {
	storage  service.Storage
	progress io.Writer
	config   Config
}

// Config holds configuration options for the forecast engine.
type Config struct {
	LookaheadDays         int
	HistoryLookbackDays   int
	SuggestionConfidence  float64
	DescriptionDriftRatio float64
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		LookaheadDays:         90,
		HistoryLookbackDays:   365,
		SuggestionConfidence:  0.7,
		DescriptionDriftRatio: 0.4,
	}
}

// New creates a forecast engine with the default configuration.
func New(storage service.Storage) *ForecastEngine {
	return NewWithConfig(storage, DefaultConfig())
}

// NewWithConfig creates a forecast engine with custom configuration.
func NewWithConfig(storage service.Storage, config Config) *ForecastEngine {
	if config.LookaheadDays <= 0 {
		config.LookaheadDays = DefaultConfig().LookaheadDays
	}
	if config.HistoryLookbackDays <= 0 {
		config.HistoryLookbackDays = DefaultConfig().HistoryLookbackDays
	}
	if config.DescriptionDriftRatio <= 0 {
		config.DescriptionDriftRatio = DefaultConfig().DescriptionDriftRatio
	}
	return &ForecastEngine{
		storage:  storage,
		progress: io.Discard,
		config:   config,
	}
}

// SetProgressWriter directs progress bar output, typically os.Stderr for
// interactive runs. The engine stays silent without one.
func (e *ForecastEngine) SetProgressWriter(w io.Writer) {
	if w != nil {
		e.progress = w
	}
}

// today returns the current date truncated to midnight UTC.
func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
