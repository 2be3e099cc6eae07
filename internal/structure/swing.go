package structure

import (
	"fmt"
	"math"
	"sort"

	"FXSentinel/internal/model"
)

// Point is a bar augmented with its swing flags.
type Point struct {
	model.OHLCV
	IsSwingHigh    bool
	IsSwingLow     bool
	ValidSwingHigh bool
	ValidSwingLow  bool
}

// Series is the result of a structure analysis over one bar sequence.
// Points are in ascending time order and are never shared with the caller's input.
type Series struct {
	Timeframe model.Timeframe
	Window    int
	Points    []Point
}

// Analyze runs detection, validation and run filtering over bars at the window
// size defined for tf. The input slice is not modified.
func Analyze(bars []model.OHLCV, tf model.Timeframe) (*Series, error) {
	w, err := WindowSize(tf)
	if err != nil {
		return nil, err
	}
	s, err := AnalyzeWindow(bars, w)
	if err != nil {
		return nil, err
	}
	s.Timeframe = tf
	return s, nil
}

// AnalyzeWindow is Analyze with an explicit neighborhood size.
func AnalyzeWindow(bars []model.OHLCV, window int) (*Series, error) {
	if window < 1 {
		return nil, &ConfigurationError{Value: fmt.Sprintf("window=%d", window), Reason: "window must be positive"}
	}
	sorted := sortedCopy(bars)

	rawHighs, rawLows := Detect(sorted, window)
	validHighs, validLows := Validate(sorted, rawHighs, rawLows)
	// Highs are resolved first; the low pass only sees surviving highs as separators.
	highs := FilterHighs(sorted, validHighs, validLows)
	lows := FilterLows(sorted, validLows, highs)

	points := make([]Point, len(sorted))
	for i, b := range sorted {
		points[i].OHLCV = b
	}
	for _, i := range rawHighs {
		points[i].IsSwingHigh = true
	}
	for _, i := range rawLows {
		points[i].IsSwingLow = true
	}
	for _, i := range highs {
		points[i].ValidSwingHigh = true
	}
	for _, i := range lows {
		points[i].ValidSwingLow = true
	}
	return &Series{Window: window, Points: points}, nil
}

// Detect returns the positions of raw swing highs and swing lows. A bar is a
// swing high when its high is strictly above every high within window bars on
// either side; lows are symmetric. A bar with no neighbors is never flagged.
func Detect(bars []model.OHLCV, window int) (highs, lows []int) {
	n := len(bars)
	for i := 0; i < n; i++ {
		start := max(i-window, 0)
		end := min(i+window+1, n)
		if start == i && end == i+1 {
			continue
		}

		maxAround := math.Inf(-1)
		minAround := math.Inf(1)
		for j := start; j < end; j++ {
			if j == i {
				continue
			}
			maxAround = math.Max(maxAround, bars[j].High)
			minAround = math.Min(minAround, bars[j].Low)
		}

		if bars[i].High > maxAround {
			highs = append(highs, i)
		}
		if bars[i].Low < minAround {
			lows = append(lows, i)
		}
	}
	return highs, lows
}

// ValidHighs returns the positions flagged ValidSwingHigh.
func (s *Series) ValidHighs() []int {
	return s.positions(func(p Point) bool { return p.ValidSwingHigh })
}

// ValidLows returns the positions flagged ValidSwingLow.
func (s *Series) ValidLows() []int {
	return s.positions(func(p Point) bool { return p.ValidSwingLow })
}

// RawHighs returns the positions flagged IsSwingHigh.
func (s *Series) RawHighs() []int {
	return s.positions(func(p Point) bool { return p.IsSwingHigh })
}

// RawLows returns the positions flagged IsSwingLow.
func (s *Series) RawLows() []int {
	return s.positions(func(p Point) bool { return p.IsSwingLow })
}

func (s *Series) positions(keep func(Point) bool) []int {
	var out []int
	for i, p := range s.Points {
		if keep(p) {
			out = append(out, i)
		}
	}
	return out
}

// Bars returns the sorted bars the series was computed on.
func (s *Series) Bars() []model.OHLCV {
	bars := make([]model.OHLCV, len(s.Points))
	for i, p := range s.Points {
		bars[i] = p.OHLCV
	}
	return bars
}

func sortedCopy(bars []model.OHLCV) []model.OHLCV {
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}
