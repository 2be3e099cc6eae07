package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"FXSentinel/internal/model"
)

// EconomicIndicators maps a file suffix under raw/economy/<CC>/ to the factor
// name used by macro scoring.
var EconomicIndicators = map[string]string{
	"gdp_growth":                "GDP_Growth",
	"interest_rate":             "Interest_Rate",
	"inflation_rate":            "Inflation_Rate",
	"consumer_price_index":      "CPI",
	"producer_price_index":      "PPI",
	"unemployment_rate":         "Unemployment",
	"trade_balance":             "Trade_Balance",
	"gov_debt":                  "Gov_Debt",
	"consumer_confidence_index": "Consumer_Confidence",
	"retail_sales":              "Retail_Sales",
	"money_supply":              "Money_Supply",
}

// EconomicPath returns raw/economy/<CC>/<cc>_<indicator>.csv under dir.
func EconomicPath(dir, country, indicator string) string {
	cc := strings.ToUpper(country)
	return filepath.Join(dir, "raw", "economy", cc, strings.ToLower(cc)+"_"+indicator+".csv")
}

// LoadEconomic returns the latest close of every indicator file present for
// country. Missing files are skipped.
func LoadEconomic(dir, country string) (map[string]float64, error) {
	out := make(map[string]float64)
	for suffix, name := range EconomicIndicators {
		bars, err := LoadBars(EconomicPath(dir, country, suffix))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(bars) == 0 {
			logrus.WithFields(logrus.Fields{"country": country, "indicator": name}).Debug("economic file has no rows")
			continue
		}
		out[name] = bars[len(bars)-1].Close
	}
	return out, nil
}

// ReadSeries parses a two-column time/value CSV, as served by economic data
// portals. The time column is "time", "date" or "observation_date", else the
// first; the value column is "close" or "value", else the last. Rows with a
// blank or "." value are skipped. Each value fills all four prices of a bar.
func ReadSeries(src io.Reader) ([]model.OHLCV, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("series: empty input")
		}
		return nil, err
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("series: want a time and a value column, got %v", header)
	}
	timeCol, valCol := 0, len(header)-1
	for _, name := range []string{"time", "date", "observation_date"} {
		if i, ok := lookup(header, name); ok {
			timeCol = i
			break
		}
	}
	for _, name := range []string{"close", "value"} {
		if i, ok := lookup(header, name); ok {
			valCol = i
			break
		}
	}

	var bars []model.OHLCV
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("series line %d: %w", line, err)
		}
		if len(rec) <= max(timeCol, valCol) {
			continue
		}
		t, err := parseTime(rec[timeCol])
		if err != nil {
			return nil, fmt.Errorf("series line %d: %w", line, err)
		}
		v, err := parseF(rec[valCol])
		if errors.Is(err, errBlank) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("series line %d: %w", line, err)
		}
		bars = append(bars, model.OHLCV{Time: t, Open: v, High: v, Low: v, Close: v})
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}
