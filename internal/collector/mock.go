package collector

import (
	"context"
	"math"
	"time"

	"FXSentinel/internal/model"
)

// MockFetcher returns deterministic data for development and testing.
type MockFetcher struct {
	Price float64
	// End is the date of the last generated daily bar; zero means today.
	End  time.Time
	Bars map[model.Timeframe][]model.OHLCV
}

func (m *MockFetcher) Name() string { return "mock" }

// FetchBars returns the fixed series for tf when set, otherwise a generated
// oscillating series resampled to tf.
func (m *MockFetcher) FetchBars(_ context.Context, _ string, tf model.Timeframe, count int) ([]model.OHLCV, error) {
	if bars, ok := m.Bars[tf]; ok {
		return tail(bars, count), nil
	}
	days := count
	switch tf {
	case model.Weekly:
		days = count * 7
	case model.Monthly:
		days = count * 31
	}
	return tail(Resample(m.generate(days), tf), count), nil
}

func (m *MockFetcher) generate(days int) []model.OHLCV {
	base := m.Price
	if base == 0 {
		base = 1.1
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	bars := make([]model.OHLCV, days)
	for i := 0; i < days; i++ {
		// slow drift plus a 40-day swing so structure detection has something to find
		p := base * (1 + 0.0002*float64(i-days/2) + 0.02*math.Sin(2*math.Pi*float64(i)/40))
		bars[i] = model.OHLCV{
			Time:   end.AddDate(0, 0, i-days+1),
			Open:   p * 0.999,
			High:   p * 1.003,
			Low:    p * 0.997,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

func tail(bars []model.OHLCV, n int) []model.OHLCV {
	if n > 0 && len(bars) > n {
		return bars[len(bars)-n:]
	}
	return bars
}
