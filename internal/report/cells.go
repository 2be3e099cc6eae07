package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"FXSentinel/internal/model"
	"FXSentinel/internal/structure"
)

const (
	na         = "N/A"
	dateLayout = "2006-01-02"
)

// fixed renders x with the given decimal places; NaN renders as "nan".
func fixed(x float64, places int32) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return "nan"
	}
	return decimal.NewFromFloat(x).StringFixed(places)
}

func naCell() Cell { return Cell{Trend: model.Unknown, Text: na} }

func maCell(ma *model.MATrend) Cell {
	if ma == nil {
		return naCell()
	}
	return Cell{
		Trend: ma.Trend,
		Text: fmt.Sprintf("%s\nDate: %s\nMA%d: %s\nMA%d: %s\nMA%d: %s",
			ma.Trend, ma.Date.Format(dateLayout),
			ma.Periods[0], fixed(ma.Fast, 5),
			ma.Periods[1], fixed(ma.Mid, 5),
			ma.Periods[2], fixed(ma.Slow, 5)),
	}
}

func extrema(label string, xs []structure.Extremum) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = x.Time.Format(dateLayout) + ":" + fixed(x.Price, 5)
	}
	return label + ":\n" + strings.Join(parts, ",\n")
}

func structureCell(st structure.Structure) Cell {
	if st.Trend == model.Indeterminate {
		return Cell{Trend: st.Trend, Text: string(st.Trend)}
	}
	return Cell{
		Trend: st.Trend,
		Text:  fmt.Sprintf("%s\n%s\n%s", st.Trend, extrema("Highs", st.Highs), extrema("Lows", st.Lows)),
	}
}

func cotCell(c *model.COTTrend) Cell {
	if c == nil {
		return naCell()
	}
	return Cell{
		Trend: c.Trend,
		Text: fmt.Sprintf("%s\nDate: %s\nCommercial COT Index: %s\nRetail COT Index: %s",
			c.Trend, c.Date.Format(dateLayout), fixed(c.Commercial, 2), fixed(c.Retail, 2)),
	}
}

func seasonalCells(trends []model.SeasonalTrend) []Cell {
	cells := make([]Cell, len(trends))
	for i, st := range trends {
		if !st.HasData {
			cells[i] = naCell()
			continue
		}
		cells[i] = Cell{Trend: st.Trend, Text: fmt.Sprintf("%s\nAvgs: %s%%", st.Trend, fixed(st.Average, 3))}
	}
	return cells
}

// noMacroData marks an FX row whose economies have no stored indicators.
const noMacroData = "no macro data"

func noMacroCell() Cell { return Cell{Trend: model.Unknown, Text: noMacroData} }

func scoreCell(sig *model.MacroSignal) Cell {
	if sig == nil {
		return Cell{Trend: model.Unknown, Text: "nan"}
	}
	trend := model.Sideways
	switch sig.Action {
	case model.ActionBuy:
		trend = model.Uptrend
	case model.ActionSell:
		trend = model.Downtrend
	}
	return Cell{
		Trend: trend,
		Text: fmt.Sprintf("%s\nFair: %s\nDev: %s%%\nDiff: %s",
			sig.Action, fixed(sig.FairValue, 5), fixed(sig.Deviation*100, 2), fixed(sig.ScoreDiff, 3)),
	}
}
