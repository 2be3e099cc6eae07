package calculator

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"FXSentinel/internal/model"
)

// ErrInsufficientData is returned when a series is too short for the requested calculation.
var ErrInsufficientData = errors.New("not enough data")

// DefaultMAPeriods are the fast, mid and slow moving-average periods.
var DefaultMAPeriods = [3]int{30, 60, 90}

// SMA returns the simple moving average of prices aligned to the input.
// The first period-1 values are NaN.
func SMA(prices []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	out := make([]float64, len(prices))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(prices) < period {
		return out, nil
	}
	sma := trend.NewSmaWithPeriod[float64](period)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(prices)))
	offset := len(prices) - len(values)
	for i, v := range values {
		out[offset+i] = v
	}
	return out, nil
}

// MovingAverages computes the SMA of closes for every period.
func MovingAverages(bars []model.OHLCV, periods []int) (map[int][]float64, error) {
	closes := model.Closes(bars)
	out := make(map[int][]float64, len(periods))
	for _, p := range periods {
		ma, err := SMA(closes, p)
		if err != nil {
			return nil, fmt.Errorf("MA%d: %w", p, err)
		}
		out[p] = ma
	}
	return out, nil
}

// MATrend classifies the fast/mid/slow alignment on the last complete period of bars.
// The still-forming month (daily), quarter (weekly) or year (monthly) is ignored.
// bars may arrive in any order.
func MATrend(bars []model.OHLCV, tf model.Timeframe, periods [3]int) (*model.MATrend, error) {
	if len(bars) == 0 {
		return nil, ErrInsufficientData
	}
	sorted := make([]model.OHLCV, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
	bars = sorted

	mas, err := MovingAverages(bars, periods[:])
	if err != nil {
		return nil, err
	}
	fast, mid, slow := mas[periods[0]], mas[periods[1]], mas[periods[2]]

	last := bars[len(bars)-1].Time
	for i := len(bars) - 1; i >= 0; i-- {
		complete, err := completePeriod(bars[i].Time, last, tf)
		if err != nil {
			return nil, err
		}
		if !complete || math.IsNaN(fast[i]) || math.IsNaN(mid[i]) || math.IsNaN(slow[i]) {
			continue
		}
		return &model.MATrend{
			Trend:   alignment(fast[i], mid[i], slow[i]),
			Date:    bars[i].Time,
			Periods: periods,
			Fast:    fast[i],
			Mid:     mid[i],
			Slow:    slow[i],
		}, nil
	}
	return nil, ErrInsufficientData
}

func completePeriod(t, last time.Time, tf model.Timeframe) (bool, error) {
	switch tf {
	case model.Daily:
		return t.Year() != last.Year() || t.Month() != last.Month(), nil
	case model.Weekly:
		return t.Year() != last.Year() || quarter(t) != quarter(last), nil
	case model.Monthly:
		return t.Year() < last.Year(), nil
	}
	return false, fmt.Errorf("unsupported timeframe %q", tf)
}

func quarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

func alignment(fast, mid, slow float64) model.Trend {
	switch {
	case fast > slow && mid > slow:
		return model.Uptrend
	case fast < slow && mid < slow:
		return model.Downtrend
	case (fast > slow && mid < slow) || (fast < slow && mid > slow):
		return model.Sideways
	default:
		return model.Unknown
	}
}
