package calculator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSentinel/internal/model"
)

// monthlyWithJuneGain closes flat at 100 except June, which gains 1%.
func monthlyWithJuneGain(fromYear, toYear int, lastMonth time.Month) []model.OHLCV {
	var bars []model.OHLCV
	for y := fromYear; y <= toYear; y++ {
		for m := time.January; m <= time.December; m++ {
			if y == toYear && m > lastMonth {
				break
			}
			c := 100.0
			if m == time.June {
				c = 101
			}
			bars = append(bars, model.OHLCV{Time: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC), Close: c})
		}
	}
	return bars
}

func TestSeasonalTrends(t *testing.T) {
	bars := monthlyWithJuneGain(2000, 2024, time.June)
	got, err := SeasonalTrends(bars, DefaultSeasonalThreshold)
	require.NoError(t, err)
	require.Len(t, got, len(SeasonalLookbacks))

	for i, st := range got {
		assert.Equal(t, SeasonalLookbacks[i], st.Years)
		assert.Equal(t, time.June, st.Month)
		assert.True(t, st.HasData)
		assert.InDelta(t, 1.0, st.Average, 1e-9)
		assert.Equal(t, model.Uptrend, st.Trend)
	}
	assert.Equal(t, "Last 20 Years", got[0].Label)
	assert.Equal(t, "Last 2 Years", got[4].Label)
}

func TestSeasonalTrends_Threshold(t *testing.T) {
	bars := monthlyWithJuneGain(2020, 2024, time.July) // July drops back ~0.99%
	got, err := SeasonalTrends(bars, DefaultSeasonalThreshold)
	require.NoError(t, err)
	assert.Equal(t, model.Downtrend, got[0].Trend)

	got, err = SeasonalTrends(bars, 2)
	require.NoError(t, err)
	assert.Equal(t, model.Sideways, got[0].Trend)
}

func TestSeasonalTrends_InsufficientData(t *testing.T) {
	_, err := SeasonalTrends(monthlyWithJuneGain(2024, 2024, time.January), DefaultSeasonalThreshold)
	assert.True(t, errors.Is(err, ErrInsufficientData))
}
