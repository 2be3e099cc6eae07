package structure

import (
	"time"

	"FXSentinel/internal/model"
)

// Extremum is one validated swing point.
type Extremum struct {
	Position int
	Time     time.Time
	Price    float64
}

// Structure is the two-point market structure read from a Series.
type Structure struct {
	Timeframe model.Timeframe
	Trend     model.Trend
	Highs     []Extremum // up to the last two validated highs, oldest first
	Lows      []Extremum // up to the last two validated lows, oldest first
}

// Classify reads the last two validated highs and lows of s.
func Classify(s *Series) Structure {
	st := Structure{Timeframe: s.Timeframe}
	for _, i := range tail(s.ValidHighs(), 2) {
		st.Highs = append(st.Highs, Extremum{Position: i, Time: s.Points[i].Time, Price: s.Points[i].High})
	}
	for _, i := range tail(s.ValidLows(), 2) {
		st.Lows = append(st.Lows, Extremum{Position: i, Time: s.Points[i].Time, Price: s.Points[i].Low})
	}
	st.Trend = ClassifyExtrema(st.Highs, st.Lows)
	return st
}

// ClassifyExtrema compares the last two highs and the last two lows.
// Fewer than two of either is Indeterminate; ties fall through to Divergence.
func ClassifyExtrema(highs, lows []Extremum) model.Trend {
	if len(highs) < 2 || len(lows) < 2 {
		return model.Indeterminate
	}
	h0, h1 := highs[len(highs)-2].Price, highs[len(highs)-1].Price
	l0, l1 := lows[len(lows)-2].Price, lows[len(lows)-1].Price

	switch {
	case h1 > h0 && l1 > l0:
		return model.Uptrend
	case h1 < h0 && l1 < l0:
		return model.Downtrend
	default:
		return model.Divergence
	}
}

// Evaluate analyzes bars at tf and classifies the resulting structure.
func Evaluate(bars []model.OHLCV, tf model.Timeframe) (Structure, error) {
	s, err := Analyze(bars, tf)
	if err != nil {
		return Structure{}, err
	}
	return Classify(s), nil
}

func tail(xs []int, n int) []int {
	if len(xs) <= n {
		return xs
	}
	return xs[len(xs)-n:]
}
