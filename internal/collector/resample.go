package collector

import (
	"time"

	"FXSentinel/internal/model"
)

// Resample aggregates daily bars into weekly (ISO week) or monthly bars.
// Each bar is stamped with the time of its first daily bar. Daily input is
// returned unchanged.
func Resample(daily []model.OHLCV, tf model.Timeframe) []model.OHLCV {
	if len(daily) == 0 || tf == model.Daily {
		return daily
	}
	key := func(t time.Time) int {
		if tf == model.Monthly {
			return t.Year()*100 + int(t.Month())
		}
		y, w := t.ISOWeek()
		return y*100 + w
	}

	var out []model.OHLCV
	cur := daily[0]
	curKey := key(cur.Time)
	for _, d := range daily[1:] {
		if k := key(d.Time); k != curKey {
			out = append(out, cur)
			cur, curKey = d, k
			continue
		}
		cur.High = max(cur.High, d.High)
		cur.Low = min(cur.Low, d.Low)
		cur.Close = d.Close
		cur.Volume += d.Volume
	}
	return append(out, cur)
}
