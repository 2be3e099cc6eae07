package report

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSentinel/internal/collector"
	"FXSentinel/internal/model"
	"FXSentinel/internal/structure"
)

var end = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

func loadAssets(t *testing.T, symbols ...string) map[string]*model.AssetData {
	t.Helper()
	c := collector.NewCollector(&collector.MockFetcher{Price: 1.1, End: end})
	out := make(map[string]*model.AssetData, len(symbols))
	for _, s := range symbols {
		data, err := c.LoadAssetData(context.Background(), s, 5)
		require.NoError(t, err)
		out[s] = data
	}
	return out
}

func TestHeaders(t *testing.T) {
	want := []string{
		"Symbol", "MA D (30 60 90)", "MA W (30 60 90)", "MA M (30 60 90)",
		"Structure D (5)", "Structure W (4)", "Structure M (3)",
		"COT", "Seasonal 2Y", "Seasonal 5Y", "Seasonal 10Y",
		"Seasonal 15Y", "Seasonal 20Y", "Score",
	}
	got := Headers([3]int{30, 60, 90})
	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i], got[i])
	}
}

func TestBuild(t *testing.T) {
	assets := loadAssets(t, "EURUSD", "BTCUSD")
	assets["GBPUSD"] = nil

	cotDate := end.AddDate(0, -3, 0)
	var cot []model.COTRecord
	for i := 0; i < 30; i++ {
		cot = append(cot, model.COTRecord{
			Market:         "EURO FX - CHICAGO MERCANTILE EXCHANGE",
			Date:           cotDate.AddDate(0, 0, 7*(i-30)),
			CommercialLong: float64(1000 + 10*i), CommercialShort: 1000,
			RetailLong: 500, RetailShort: float64(500 + 10*i),
			OpenInterest: 10000,
		})
	}

	in := Inputs{
		Assets: assets,
		COT:    cot,
		Economies: map[string]map[string]float64{
			"EU": {"GDP_Growth": 0.4, "Interest_Rate": 4.0},
			"US": {"GDP_Growth": 2.8, "Interest_Rate": 5.5},
			"JP": {"GDP_Growth": 1.0, "Interest_Rate": 0.1},
		},
		COTYears: 5,
	}
	opts := DefaultOptions()
	opts.MAPeriods = [3]int{5, 10, 20}

	rows, err := Build(context.Background(), in, opts)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "BTCUSD", rows[0].Symbol)
	assert.Equal(t, "EURUSD", rows[1].Symbol)

	eur := rows[1]
	assert.Len(t, eur.Structures, 3)
	for i := range eur.MA {
		assert.NotEqual(t, na, eur.MA[i].Text, "MA %s", model.Timeframes[i])
	}
	assert.Equal(t, model.Uptrend, eur.COT.Trend)
	assert.True(t, strings.HasPrefix(eur.COT.Text, "Uptrend\nDate: "))
	assert.Len(t, eur.Seasonal, 5)
	require.NotNil(t, eur.Macro)
	assert.Equal(t, "EU", eur.Macro.Domestic)
	assert.Equal(t, "US", eur.Macro.Foreign)
	assert.Equal(t, eur.Macro.Action, model.Action(strings.SplitN(eur.Score.Text, "\n", 2)[0]))

	btc := rows[0]
	assert.Nil(t, btc.Macro)
	assert.Equal(t, "nan", btc.Score.Text)
	assert.Equal(t, na, btc.COT.Text, "BTC COT rows absent from input")

	out := Render(rows, opts.MAPeriods)
	assert.Contains(t, out, "MA D (5 10 20)")
	assert.Contains(t, out, "Seasonal 20Y")
	assert.Contains(t, out, "EURUSD")

	msg := RenderHTML(rows, end)
	assert.Contains(t, msg, "<b>EURUSD</b>")
	assert.Contains(t, msg, "Macro: <b>")

	r, ok := Find(rows, "EURUSD")
	require.True(t, ok)
	detail := StructureHTML(r)
	assert.Contains(t, detail, "<b>D (5)</b>")
	assert.Contains(t, detail, "<b>M (3)</b>")
	_, ok = Find(rows, "XAUUSD")
	assert.False(t, ok)
}

func TestBuild_NoMacroData(t *testing.T) {
	rows, err := Build(context.Background(), Inputs{Assets: loadAssets(t, "EURUSD", "BTCUSD"), COTYears: 5}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	eur, _ := Find(rows, "EURUSD")
	assert.Nil(t, eur.Macro)
	assert.Equal(t, "no macro data", eur.Score.Text)
	btc, _ := Find(rows, "BTCUSD")
	assert.Equal(t, "nan", btc.Score.Text)

	msg := RenderHTML(rows, end)
	assert.Contains(t, msg, "<b>EURUSD</b>\n")
	assert.Equal(t, 1, strings.Count(msg, "Macro: no macro data"))
}

func TestBuild_ConvertsLocalCurrencyToUSD(t *testing.T) {
	in := Inputs{
		Assets: loadAssets(t, "EURUSD"),
		Economies: map[string]map[string]float64{
			"EU": {"Money_Supply": 10},
			"US": {"Money_Supply": 10},
		},
		FXCloses: map[string]float64{"EURUSD": 2},
	}
	opts := DefaultOptions()
	opts.Macro.Weights = map[string]float64{"Money_Supply": -0.05}

	rows, err := Build(context.Background(), in, opts)
	require.NoError(t, err)
	require.NotNil(t, rows[0].Macro)
	// EU 10 EUR becomes 20 USD: z-scores +1 and -1
	assert.InDelta(t, -0.1, rows[0].Macro.ScoreDiff, 1e-9)
	assert.Equal(t, 10.0, in.Economies["EU"]["Money_Supply"], "caller map left untouched")

}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Build(ctx, Inputs{Assets: loadAssets(t, "EURUSD")}, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCells(t *testing.T) {
	d := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	ma := maCell(&model.MATrend{Trend: model.Uptrend, Date: d, Periods: [3]int{30, 60, 90}, Fast: 1.1, Mid: 1.09, Slow: 1.08})
	assert.Equal(t, "Uptrend\nDate: 2024-01-31\nMA30: 1.10000\nMA60: 1.09000\nMA90: 1.08000", ma.Text)
	assert.Equal(t, na, maCell(nil).Text)

	st := structureCell(structure.Structure{
		Trend: model.Downtrend,
		Highs: []structure.Extremum{{Time: d, Price: 1.2}, {Time: d.AddDate(0, 1, 0), Price: 1.15}},
		Lows:  []structure.Extremum{{Time: d.AddDate(0, 0, 10), Price: 1.1}, {Time: d.AddDate(0, 1, 10), Price: 1.05}},
	})
	assert.Equal(t, "Downtrend\nHighs:\n2024-01-31:1.20000,\n2024-03-02:1.15000\nLows:\n2024-02-10:1.10000,\n2024-03-12:1.05000", st.Text)
	assert.Equal(t, "Indeterminate", structureCell(structure.Structure{Trend: model.Indeterminate}).Text)

	cot := cotCell(&model.COTTrend{Trend: model.Downtrend, Date: d, Commercial: 12.345, Retail: 88})
	assert.Equal(t, "Downtrend\nDate: 2024-01-31\nCommercial COT Index: 12.35\nRetail COT Index: 88.00", cot.Text)

	seasonal := seasonalCells([]model.SeasonalTrend{
		{HasData: true, Trend: model.Sideways, Average: -0.1},
		{Trend: model.Unknown},
	})
	assert.Equal(t, "Sideways\nAvgs: -0.100%", seasonal[0].Text)
	assert.Equal(t, na, seasonal[1].Text)

	score := scoreCell(&model.MacroSignal{Action: model.ActionBuy, FairValue: 1.1, Deviation: -0.02, ScoreDiff: 1})
	assert.Equal(t, model.Uptrend, score.Trend)
	assert.Equal(t, "BUY\nFair: 1.10000\nDev: -2.00%\nDiff: 1.000", score.Text)

	assert.Equal(t, "nan", fixed(math.NaN(), 2))
}

func TestRowCells(t *testing.T) {
	rows, err := Build(context.Background(), Inputs{Assets: loadAssets(t, "BTCUSD"), COTYears: 5}, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	cells := rows[0].Cells()
	require.Len(t, cells, len(Headers(DefaultOptions().MAPeriods))-1)
	assert.Equal(t, rows[0].MA[0].Text, cells[0])
	assert.Equal(t, rows[0].Structure[2].Text, cells[5])
	assert.Equal(t, na, cells[6])
	assert.Equal(t, rows[0].Seasonal[len(rows[0].Seasonal)-1].Text, cells[7])
	assert.Equal(t, "nan", cells[len(cells)-1])
}

func TestRenderSwings(t *testing.T) {
	data := loadAssets(t, "EURUSD")["EURUSD"]
	s, err := structure.Analyze(data.Series(model.Daily), model.Daily)
	require.NoError(t, err)
	highs, lows := s.ValidHighs(), s.ValidLows()
	require.NotEmpty(t, highs)
	require.NotEmpty(t, lows)

	out := RenderSwings("EURUSD", s)
	assert.Contains(t, out, "EURUSD D (window 5)")
	assert.Equal(t, len(highs), strings.Count(out, " High "))
	assert.Equal(t, len(lows), strings.Count(out, " Low "))

	last := s.Points[highs[len(highs)-1]]
	assert.Contains(t, out, last.Time.Format(dateLayout))
	assert.Contains(t, out, fixed(last.High, 5))
}
