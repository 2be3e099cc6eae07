package calculator

import (
	"fmt"
	"math"
	"sort"

	"FXSentinel/internal/model"
)

// SeasonalLookbacks are the year spans averaged for the seasonal view, longest first.
var SeasonalLookbacks = []int{20, 15, 10, 5, 2}

// DefaultSeasonalThreshold is the average monthly change (percent) that counts as directional.
const DefaultSeasonalThreshold = 0.3

// SeasonalTrends averages the percent change of the last bar's calendar month
// across each lookback. monthlyBars must be one bar per month.
func SeasonalTrends(monthlyBars []model.OHLCV, threshold float64) ([]model.SeasonalTrend, error) {
	if len(monthlyBars) < 2 {
		return nil, ErrInsufficientData
	}
	bars := make([]model.OHLCV, len(monthlyBars))
	copy(bars, monthlyBars)
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })

	last := bars[len(bars)-1].Time
	month := last.Month()
	maxYear := last.Year()

	out := make([]model.SeasonalTrend, 0, len(SeasonalLookbacks))
	for _, years := range SeasonalLookbacks {
		start := maxYear - years
		sum, count := 0.0, 0
		for i := 1; i < len(bars); i++ {
			b := bars[i]
			if b.Time.Year() < start || b.Time.Month() != month || bars[i-1].Close == 0 {
				continue
			}
			sum += (b.Close/bars[i-1].Close - 1) * 100
			count++
		}

		st := model.SeasonalTrend{
			Label: fmt.Sprintf("Last %d Years", years),
			Years: years,
			Month: month,
			Trend: model.Unknown,
		}
		if count > 0 {
			st.HasData = true
			st.Average = math.Round(sum/float64(count)*1000) / 1000
			st.Trend = seasonalTrend(sum/float64(count), threshold)
		}
		out = append(out, st)
	}
	return out, nil
}

func seasonalTrend(avg, threshold float64) model.Trend {
	switch {
	case avg > threshold:
		return model.Uptrend
	case avg < -threshold:
		return model.Downtrend
	default:
		return model.Sideways
	}
}
