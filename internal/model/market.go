package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Timeframe is the bar granularity of a series.
type Timeframe string

const (
	Daily   Timeframe = "D"
	Weekly  Timeframe = "W"
	Monthly Timeframe = "M"
)

// Timeframes lists the granularities loaded for every symbol, in report order.
var Timeframes = []Timeframe{Daily, Weekly, Monthly}

// AssetData holds the bars of one symbol for each timeframe.
type AssetData struct {
	Symbol    string
	Bars      map[Timeframe][]OHLCV
	FetchedAt time.Time
}

// Series returns the bars for tf, or nil when that timeframe was not loaded.
func (a *AssetData) Series(tf Timeframe) []OHLCV {
	if a == nil || a.Bars == nil {
		return nil
	}
	return a.Bars[tf]
}

// Closes extracts the close prices of bars in order.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}

// FXRate is the latest close of the USD pair pricing one currency.
// USDQuote is true for pairs like EURUSD, where the currency is the base.
type FXRate struct {
	Pair     string
	Rate     float64
	USDQuote bool
}
