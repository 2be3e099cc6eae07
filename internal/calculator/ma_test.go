package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSentinel/internal/model"
)

func dailyBars(start time.Time, closes []float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return bars
}

func linear(n int, from, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = from + float64(i)*step
	}
	return out
}

func TestSMA(t *testing.T) {
	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.True(t, math.IsNaN(got[0]))
	assert.True(t, math.IsNaN(got[1]))
	assert.InDelta(t, 2.0, got[2], 1e-9)
	assert.InDelta(t, 3.0, got[3], 1e-9)
	assert.InDelta(t, 4.0, got[4], 1e-9)

	short, err := SMA([]float64{1, 2}, 3)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(short[1]))

	_, err = SMA([]float64{1, 2, 3}, 0)
	assert.Error(t, err)
}

func TestMATrend_DailySkipsCurrentMonth(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := dailyBars(start, linear(60, 100, 1)) // Jan 1 .. Feb 29

	got, err := MATrend(bars, model.Daily, [3]int{3, 5, 7})
	require.NoError(t, err)
	assert.Equal(t, model.Uptrend, got.Trend)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), got.Date)
	assert.InDelta(t, 129.0, got.Fast, 1e-9)
	assert.InDelta(t, 127.0, got.Slow, 1e-9)

	down, err := MATrend(dailyBars(start, linear(60, 200, -1)), model.Daily, [3]int{3, 5, 7})
	require.NoError(t, err)
	assert.Equal(t, model.Downtrend, down.Trend)
}

func TestMATrend_UnsortedInput(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := dailyBars(start, linear(60, 100, 1))
	want, err := MATrend(bars, model.Daily, [3]int{3, 5, 7})
	require.NoError(t, err)

	shuffled := make([]model.OHLCV, 0, len(bars))
	for i := len(bars) - 1; i >= 0; i -= 2 {
		shuffled = append(shuffled, bars[i])
	}
	for i := 0; i < len(bars); i += 2 {
		shuffled = append(shuffled, bars[i])
	}
	first := shuffled[0]

	got, err := MATrend(shuffled, model.Daily, [3]int{3, 5, 7})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, first, shuffled[0], "input left untouched")
}

func TestMATrend_MonthlySkipsCurrentYear(t *testing.T) {
	var bars []model.OHLCV
	for i := 0; i < 30; i++ {
		c := 100 + float64(i)
		bars = append(bars, model.OHLCV{Time: time.Date(2022, time.Month(1+i), 1, 0, 0, 0, 0, time.UTC), Close: c})
	}
	got, err := MATrend(bars, model.Monthly, [3]int{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), got.Date)
}

func TestMATrend_WeeklySkipsCurrentQuarter(t *testing.T) {
	start := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	var bars []model.OHLCV
	for i := 0; i < 20; i++ { // through mid May
		bars = append(bars, model.OHLCV{Time: start.AddDate(0, 0, 7*i), Close: 100 + float64(i)})
	}
	got, err := MATrend(bars, model.Weekly, [3]int{2, 3, 4})
	require.NoError(t, err)
	assert.Equal(t, 1, quarter(got.Date))
}

func TestMATrend_InsufficientData(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := MATrend(dailyBars(start, linear(20, 100, 1)), model.Daily, [3]int{3, 5, 7})
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = MATrend(nil, model.Daily, DefaultMAPeriods)
	assert.True(t, errors.Is(err, ErrInsufficientData))

	_, err = MATrend(dailyBars(start, linear(20, 100, 1)), model.Timeframe("Q"), [3]int{3, 5, 7})
	assert.Error(t, err)
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		fast, mid, slow float64
		want            model.Trend
	}{
		{3, 2, 1, model.Uptrend},
		{1, 2, 3, model.Downtrend},
		{3, 1, 2, model.Sideways},
		{1, 3, 2, model.Sideways},
		{2, 2, 2, model.Unknown},
		{3, 2, 2, model.Unknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, alignment(tt.fast, tt.mid, tt.slow), "%v/%v/%v", tt.fast, tt.mid, tt.slow)
	}
}
