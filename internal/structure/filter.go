package structure

import (
	"sort"

	"FXSentinel/internal/model"
)

// FilterHighs collapses consecutive validated highs that no validated low
// separates, keeping the higher of each pair. The last high is always kept.
func FilterHighs(bars []model.OHLCV, highs, lows []int) []int {
	return collapseRuns(highs, lows, func(cur, next int) bool {
		return bars[cur].High > bars[next].High
	})
}

// FilterLows collapses consecutive validated lows that no high in highs
// separates, keeping the lower of each pair. The last low is always kept.
func FilterLows(bars []model.OHLCV, lows, highs []int) []int {
	return collapseRuns(lows, highs, func(cur, next int) bool {
		return bars[cur].Low < bars[next].Low
	})
}

// collapseRuns walks candidates with a cursor. A separated pair keeps the
// current candidate and moves on by one. An unseparated pair keeps the current
// candidate and skips the next when keepCurrent holds, otherwise drops the
// current candidate so the next one is compared against its own successor.
func collapseRuns(candidates, separators []int, keepCurrent func(cur, next int) bool) []int {
	if len(candidates) == 0 {
		return nil
	}
	out := make([]int, 0, len(candidates))
	for i := 0; i < len(candidates); {
		cur := candidates[i]
		if i == len(candidates)-1 {
			out = append(out, cur)
			break
		}
		next := candidates[i+1]
		switch {
		case separated(separators, cur, next):
			out = append(out, cur)
			i++
		case keepCurrent(cur, next):
			out = append(out, cur)
			i += 2
		default:
			i++
		}
	}
	// the last candidate is the largest position, so appending keeps order
	if last := candidates[len(candidates)-1]; out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}

// separated reports whether sorted separators holds a position strictly between a and b.
func separated(separators []int, a, b int) bool {
	i := sort.SearchInts(separators, a+1)
	return i < len(separators) && separators[i] < b
}
