package collector

import (
	"context"
	"errors"
	"io/fs"

	"FXSentinel/internal/model"
	"FXSentinel/internal/store"
)

// StoreFetcher serves bars previously saved under Dir. A missing weekly or
// monthly file is rebuilt from the daily file.
type StoreFetcher struct {
	Dir string
}

func (f *StoreFetcher) Name() string { return "store" }

func (f *StoreFetcher) FetchBars(_ context.Context, symbol string, tf model.Timeframe, count int) ([]model.OHLCV, error) {
	category, ok := CategoryOf(symbol)
	if !ok {
		category = "other"
	}
	bars, err := store.LoadBars(store.BarsPath(f.Dir, category, symbol, tf))
	if errors.Is(err, fs.ErrNotExist) && tf != model.Daily {
		daily, derr := store.LoadBars(store.BarsPath(f.Dir, category, symbol, model.Daily))
		if derr != nil {
			return nil, errors.Join(err, derr)
		}
		bars, err = Resample(daily, tf), nil
	}
	if err != nil {
		return nil, err
	}
	return tail(bars, count), nil
}
