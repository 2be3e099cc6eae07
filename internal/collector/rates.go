package collector

import (
	"errors"
	"io/fs"

	"github.com/sirupsen/logrus"

	"FXSentinel/internal/model"
	"FXSentinel/internal/store"
)

// USDRates finds, for every non-US economy in Countries, the forex pair that
// prices its currency against USD and attaches the close from closes.
// CURUSD is preferred over USDCUR. Economies without a tracked pair or a
// positive close are left out.
func USDRates(closes map[string]float64) map[string]model.FXRate {
	forex := make(map[string]bool, len(Portfolio["forex"]))
	for _, s := range Portfolio["forex"] {
		forex[s] = true
	}

	out := make(map[string]model.FXRate)
	for _, c := range Countries {
		if c.Code == USD.Code {
			continue
		}
		if _, done := out[c.Code]; done {
			continue
		}
		pair, usdQuote := c.Currency+"USD", true
		if !forex[pair] {
			pair, usdQuote = "USD"+c.Currency, false
			if !forex[pair] {
				continue
			}
		}
		if px, ok := closes[pair]; ok && px > 0 {
			out[c.Code] = model.FXRate{Pair: pair, Rate: px, USDQuote: usdQuote}
		}
	}
	return out
}

// LatestFXCloses returns the last daily close of every forex symbol. Loaded
// assets are used first; symbols absent from assets are read from the bars
// stored under dir, when dir is set.
func LatestFXCloses(dir string, assets map[string]*model.AssetData) map[string]float64 {
	out := make(map[string]float64)
	for _, sym := range Portfolio["forex"] {
		if daily := assets[sym].Series(model.Daily); len(daily) > 0 {
			out[sym] = daily[len(daily)-1].Close
			continue
		}
		if dir == "" {
			continue
		}
		bars, err := store.LoadBars(store.BarsPath(dir, "forex", sym, model.Daily))
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logrus.WithField("symbol", sym).WithError(err).Warn("read stored FX close failed")
			}
			continue
		}
		if len(bars) > 0 {
			out[sym] = bars[len(bars)-1].Close
		}
	}
	return out
}
