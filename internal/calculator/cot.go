package calculator

import (
	"errors"
	"math"
	"sort"
	"time"

	"github.com/markcheno/go-talib"

	"FXSentinel/internal/model"
)

// ErrNoCOTSignal is returned when no week reaches the configured extremes.
var ErrNoCOTSignal = errors.New("no extreme COT positioning found")

// COTIndex resamples records to weeks ending Friday and scales each group's
// open-interest-adjusted net position to 0~100 within a rolling window of weeks.
// Weeks with zero open interest keep their slot with NaN indexes and do not
// count toward the window extremes.
func COTIndex(records []model.COTRecord, weeks int) ([]model.COTWeek, error) {
	if weeks <= 0 {
		return nil, errors.New("weeks must be positive")
	}
	weekly := resampleFriday(records)

	out := make([]model.COTWeek, 0, len(weekly))
	var adjCom, adjLarge, adjRetail []float64
	for _, r := range weekly {
		w := model.COTWeek{
			Date:          r.Date,
			NetCommercial: r.CommercialLong - r.CommercialShort,
			NetLarge:      r.NoncommercialLong - r.NoncommercialShort,
			NetRetail:     r.RetailLong - r.RetailShort,
		}
		out = append(out, w)
		if r.OpenInterest == 0 {
			adjCom = append(adjCom, math.NaN())
			adjLarge = append(adjLarge, math.NaN())
			adjRetail = append(adjRetail, math.NaN())
			continue
		}
		adjCom = append(adjCom, w.NetCommercial/r.OpenInterest)
		adjLarge = append(adjLarge, w.NetLarge/r.OpenInterest)
		adjRetail = append(adjRetail, w.NetRetail/r.OpenInterest)
	}

	com := rollingIndex(adjCom, weeks)
	large := rollingIndex(adjLarge, weeks)
	retail := rollingIndex(adjRetail, weeks)
	for i := range out {
		out[i].CommercialIndex = com[i]
		out[i].LargeIndex = large[i]
		out[i].RetailIndex = retail[i]
	}
	return out, nil
}

// COTTrend walks back from the last complete month and returns the first week
// where commercials and retail sit at opposite extremes.
func COTTrend(index []model.COTWeek, upper, lower float64) (*model.COTTrend, error) {
	if len(index) == 0 {
		return nil, ErrInsufficientData
	}
	last := index[0].Date
	for _, w := range index {
		if w.Date.After(last) {
			last = w.Date
		}
	}

	for i := len(index) - 1; i >= 0; i-- {
		w := index[i]
		if w.Date.Year() == last.Year() && w.Date.Month() >= last.Month() {
			continue
		}
		com, ret := w.CommercialIndex, w.RetailIndex
		switch {
		case com >= upper && ret <= lower:
			return &model.COTTrend{Trend: model.Uptrend, Date: w.Date, Commercial: com, Retail: ret}, nil
		case com <= lower && ret >= upper:
			return &model.COTTrend{Trend: model.Downtrend, Date: w.Date, Commercial: com, Retail: ret}, nil
		}
	}
	return nil, ErrNoCOTSignal
}

// resampleFriday keeps the last record of each week ending Friday, labelled by that Friday.
func resampleFriday(records []model.COTRecord) []model.COTRecord {
	sorted := make([]model.COTRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	var out []model.COTRecord
	for _, r := range sorted {
		r.Date = weekEndingFriday(r.Date)
		if n := len(out); n > 0 && out[n-1].Date.Equal(r.Date) {
			out[n-1] = r
			continue
		}
		out = append(out, r)
	}
	return out
}

func weekEndingFriday(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	ahead := (int(time.Friday) - int(day.Weekday()) + 7) % 7
	return day.AddDate(0, 0, ahead)
}

// rollingIndex returns 100*(x-min)/(max-min) over a trailing window with a
// minimum of one observation. NaN inputs are ignored by the extremes and
// yield NaN; so does a window where max equals min.
func rollingIndex(series []float64, window int) []float64 {
	lo, hi := rollingExtremes(series, window)
	out := make([]float64, len(series))
	for i, x := range series {
		if math.IsNaN(x) || hi[i] == lo[i] {
			out[i] = math.NaN()
			continue
		}
		out[i] = 100 * (x - lo[i]) / (hi[i] - lo[i])
	}
	return out
}

// rollingExtremes returns the trailing min and max of series. A NaN still
// occupies its slot in the window but never becomes an extreme; a window
// holding only NaN reports +Inf/-Inf.
func rollingExtremes(series []float64, window int) (lo, hi []float64) {
	n := len(series)
	lo = make([]float64, n)
	hi = make([]float64, n)
	// NaN breaks talib's comparisons, so it is swapped for the neutral bound.
	minSrc := make([]float64, n)
	maxSrc := make([]float64, n)
	for i, x := range series {
		minSrc[i], maxSrc[i] = x, x
		if math.IsNaN(x) {
			minSrc[i], maxSrc[i] = math.Inf(1), math.Inf(-1)
		}
	}
	if window < 2 {
		copy(lo, minSrc)
		copy(hi, maxSrc)
		return lo, hi
	}

	// warmup bars use an expanding window
	warm := min(window-1, n)
	for i := 0; i < warm; i++ {
		lo[i], hi[i] = minSrc[i], maxSrc[i]
		if i > 0 {
			lo[i] = math.Min(lo[i-1], minSrc[i])
			hi[i] = math.Max(hi[i-1], maxSrc[i])
		}
	}
	if warm == n {
		return lo, hi
	}

	maxs := talib.Max(maxSrc, window)
	mins := talib.Min(minSrc, window)
	for i := warm; i < n; i++ {
		lo[i], hi[i] = mins[i], maxs[i]
	}
	return lo, hi
}
