package collector

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"FXSentinel/internal/model"
)

// barsPerYear is how many bars of each timeframe cover one year.
var barsPerYear = map[model.Timeframe]int{
	model.Daily:   252,
	model.Weekly:  52,
	model.Monthly: 12,
}

// Collector orchestrates data fetching for single symbols and whole categories.
type Collector struct {
	Fetcher     Fetcher
	Economy     EconomicFetcher // nil disables economic downloads
	Concurrency int
	Log         logrus.FieldLogger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{Fetcher: fetcher, Concurrency: 4, Log: logrus.StandardLogger()}
}

// LoadAssetData fetches daily, weekly and monthly bars covering years.
// It fails when any timeframe comes back empty.
func (c *Collector) LoadAssetData(ctx context.Context, symbol string, years int) (*model.AssetData, error) {
	if years <= 0 {
		return nil, fmt.Errorf("years must be positive, got %d", years)
	}
	data := &model.AssetData{Symbol: symbol, Bars: make(map[model.Timeframe][]model.OHLCV, len(model.Timeframes))}
	for _, tf := range model.Timeframes {
		bars, err := c.Fetcher.FetchBars(ctx, symbol, tf, years*barsPerYear[tf])
		if err != nil {
			return nil, fmt.Errorf("fetch %s %s bars: %w", symbol, tf, err)
		}
		if len(bars) == 0 {
			return nil, fmt.Errorf("fetch %s %s bars: no data", symbol, tf)
		}
		data.Bars[tf] = bars
	}
	data.FetchedAt = time.Now()
	return data, nil
}

// LoadPortfolio loads every symbol of category concurrently. A symbol that
// fails is logged and maps to nil; only context cancellation aborts the batch.
func (c *Collector) LoadPortfolio(ctx context.Context, category string, years int) (map[string]*model.AssetData, error) {
	symbols, err := Symbols(category)
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := make(map[string]*model.AssetData, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Concurrency, 1))
	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			data, err := c.LoadAssetData(gctx, sym, years)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				c.Log.WithFields(logrus.Fields{"symbol": sym, "fetcher": c.Fetcher.Name()}).WithError(err).Error("load asset data failed")
			}
			mu.Lock()
			out[sym] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.Log.WithFields(logrus.Fields{"category": category, "symbols": len(symbols)}).Info("portfolio loaded")
	return out, nil
}

// LoadCOT selects the legacy COT rows for symbol within the last years years
// of the data. An unmapped symbol yields nil without error.
func LoadCOT(symbol string, years int, records []model.COTRecord) ([]model.COTRecord, error) {
	name, ok := COTNames[symbol]
	if !ok {
		return nil, nil
	}
	needle := strings.ToLower(name)

	var matched []model.COTRecord
	var latest time.Time
	for _, r := range records {
		if !strings.Contains(strings.ToLower(r.Market), needle) {
			continue
		}
		matched = append(matched, r)
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("no COT data found for %s (%s)", symbol, name)
	}

	cutoff := latest.AddDate(-years, 0, 0)
	out := matched[:0]
	for _, r := range matched {
		if r.Date.After(cutoff) {
			out = append(out, r)
		}
	}
	return out, nil
}
