package structure

import (
	"sort"

	"FXSentinel/internal/model"
)

// Validate keeps the raw candidates that are bracketed by the opposite type.
// A high is valid when the nearest raw low before it and the nearest raw low
// after it both exist and both sit strictly below it. Lows mirror this with
// the nearest raw highs. Each candidate is checked independently.
func Validate(bars []model.OHLCV, rawHighs, rawLows []int) (validHighs, validLows []int) {
	for _, p := range rawHighs {
		before, after, ok := bracket(rawLows, p)
		if ok && bars[before].Low < bars[p].High && bars[after].Low < bars[p].High {
			validHighs = append(validHighs, p)
		}
	}
	for _, p := range rawLows {
		before, after, ok := bracket(rawHighs, p)
		if ok && bars[before].High > bars[p].Low && bars[after].High > bars[p].Low {
			validLows = append(validLows, p)
		}
	}
	return validHighs, validLows
}

// bracket finds the nearest positions in sorted opposite strictly before and after p.
func bracket(opposite []int, p int) (before, after int, ok bool) {
	i := sort.SearchInts(opposite, p)
	if i == 0 {
		return 0, 0, false
	}
	j := sort.SearchInts(opposite, p+1)
	if j == len(opposite) {
		return 0, 0, false
	}
	return opposite[i-1], opposite[j], true
}
