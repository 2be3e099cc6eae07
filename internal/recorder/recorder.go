package recorder

import (
	"time"

	"github.com/google/uuid"

	"FXSentinel/internal/model"
	"FXSentinel/internal/structure"
)

// Run is one persisted summary report.
type Run struct {
	ID        string
	Timestamp time.Time
	Category  string
	Rows      []RowRecord
}

// RowRecord is the rendered cells of one symbol plus its structure per timeframe.
type RowRecord struct {
	Symbol     string
	Cells      []string // in table column order, symbol excluded
	Structures []StructureSnapshot
}

// StructureSnapshot is the classified structure of a symbol at one timeframe.
type StructureSnapshot struct {
	RunID     string
	Timestamp time.Time
	Symbol    string
	Timeframe model.Timeframe
	Trend     model.Trend
	Highs     []structure.Extremum
	Lows      []structure.Extremum
}

// NewRun stamps a run with a fresh id.
func NewRun(category string, now time.Time) *Run {
	return &Run{ID: uuid.NewString(), Timestamp: now, Category: category}
}

// Recorder persists report history for later analysis.
type Recorder interface {
	RecordRun(run *Run) error
	// StructureHistory returns up to limit snapshots for symbol at tf, newest first.
	StructureHistory(symbol string, tf model.Timeframe, limit int) ([]StructureSnapshot, error)
	Close() error
}
