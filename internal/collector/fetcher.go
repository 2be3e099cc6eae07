package collector

import (
	"context"

	"FXSentinel/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// FetchBars returns up to count bars of symbol at tf, oldest first.
	FetchBars(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.OHLCV, error)
	Name() string
}
