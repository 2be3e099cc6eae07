package report

import (
	"context"
	"errors"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"FXSentinel/internal/calculator"
	"FXSentinel/internal/collector"
	"FXSentinel/internal/model"
	"FXSentinel/internal/strategy"
	"FXSentinel/internal/structure"
)

// Options configures the indicators that make up a report row.
type Options struct {
	MAPeriods         [3]int
	COTWeeks          int
	COTUpper          float64
	COTLower          float64
	SeasonalThreshold float64
	Macro             strategy.Params
	Concurrency       int
}

// DefaultOptions mirrors the defaults of each calculator.
func DefaultOptions() Options {
	return Options{
		MAPeriods:         calculator.DefaultMAPeriods,
		COTWeeks:          26,
		COTUpper:          80,
		COTLower:          20,
		SeasonalThreshold: calculator.DefaultSeasonalThreshold,
		Macro:             strategy.DefaultParams(),
		Concurrency:       4,
	}
}

// Cell is one report column: the trend it carries and its display text.
type Cell struct {
	Trend model.Trend
	Text  string
}

// Row is the per-symbol summary.
type Row struct {
	Symbol     string
	MA         [3]Cell // D, W, M
	Structure  [3]Cell // D, W, M
	COT        Cell
	Seasonal   []Cell // longest lookback first, as calculator.SeasonalLookbacks
	Score      Cell
	Structures map[model.Timeframe]structure.Structure
	Macro      *model.MacroSignal
}

// Inputs bundles everything Build reads.
type Inputs struct {
	Assets    map[string]*model.AssetData
	COT       []model.COTRecord            // legacy report, all markets
	Economies map[string]map[string]float64 // country code -> indicator -> latest value, local currency
	FXCloses  map[string]float64            // forex symbol -> latest daily close, overrides Assets
	COTYears  int
}

// Build computes one row per loaded symbol, in symbol order. Symbols with nil
// data are skipped. Individual indicator failures become N/A cells.
func Build(ctx context.Context, in Inputs, opts Options) ([]Row, error) {
	symbols := make([]string, 0, len(in.Assets))
	for sym, data := range in.Assets {
		if data == nil {
			logrus.WithField("symbol", sym).Warn("no data, symbol left out of report")
			continue
		}
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)
	in.Economies = economiesInUSD(in)

	rows := make([]Row, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opts.Concurrency, 1))
	for i, sym := range symbols {
		i, sym := i, sym
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rows[i] = buildRow(sym, in, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rows, nil
}

func buildRow(sym string, in Inputs, opts Options) Row {
	data := in.Assets[sym]
	log := logrus.WithField("symbol", sym)
	row := Row{Symbol: sym, Structures: make(map[model.Timeframe]structure.Structure, len(model.Timeframes))}

	for i, tf := range model.Timeframes {
		bars := data.Series(tf)

		ma, err := calculator.MATrend(bars, tf, opts.MAPeriods)
		if err != nil {
			log.WithField("timeframe", tf).WithError(err).Debug("MA trend unavailable")
		}
		row.MA[i] = maCell(ma)

		st, err := structure.Evaluate(bars, tf)
		if err != nil {
			log.WithField("timeframe", tf).WithError(err).Warn("structure evaluation failed")
			row.Structure[i] = naCell()
			continue
		}
		row.Structures[tf] = st
		row.Structure[i] = structureCell(st)
	}

	row.COT = cotCell(nil)
	if records, err := collector.LoadCOT(sym, in.COTYears, in.COT); err != nil {
		log.WithError(err).Warn("COT lookup failed")
	} else if records != nil {
		row.COT = cotCell(cotTrend(records, opts))
	}

	seasonal, err := calculator.SeasonalTrends(data.Series(model.Monthly), opts.SeasonalThreshold)
	if err != nil {
		log.WithError(err).Debug("seasonal trends unavailable")
	}
	row.Seasonal = seasonalCells(seasonal)

	row.Macro = macroSignal(sym, data, in.Economies, opts.Macro)
	row.Score = scoreCell(row.Macro)
	if base, quote, ok := collector.Pair(sym); ok && base != quote && row.Macro == nil {
		row.Score = noMacroCell()
	}
	return row
}

// economiesInUSD converts the local-currency indicators of in.Economies with
// the latest FX closes. Economies without a rate keep their reported values.
func economiesInUSD(in Inputs) map[string]map[string]float64 {
	if len(in.Economies) == 0 {
		return in.Economies
	}
	closes := collector.LatestFXCloses("", in.Assets)
	for sym, px := range in.FXCloses {
		closes[sym] = px
	}
	out, missing := strategy.EconomiesToUSD(in.Economies, collector.USDRates(closes))
	for _, cc := range missing {
		logrus.WithField("country", cc).Warn("no FX close, money supply and trade balance left unconverted")
	}
	return out
}

func cotTrend(records []model.COTRecord, opts Options) *model.COTTrend {
	index, err := calculator.COTIndex(records, opts.COTWeeks)
	if err != nil {
		return nil
	}
	trend, err := calculator.COTTrend(index, opts.COTUpper, opts.COTLower)
	if err != nil && !errors.Is(err, calculator.ErrNoCOTSignal) {
		logrus.WithError(err).Debug("COT trend unavailable")
	}
	return trend
}

func macroSignal(sym string, data *model.AssetData, economies map[string]map[string]float64, p strategy.Params) *model.MacroSignal {
	base, quote, ok := collector.Pair(sym)
	if !ok || base == quote {
		return nil
	}
	log := logrus.WithField("symbol", sym)
	if len(economies) == 0 {
		log.Warn("no economic data, macro score unavailable")
		return nil
	}
	daily := data.Series(model.Daily)
	if len(daily) == 0 {
		return nil
	}
	sig, err := strategy.Evaluate(base.Code, quote.Code, daily[len(daily)-1].Close, economies, p)
	if err != nil {
		log.WithError(err).Warn("macro valuation skipped")
		return nil
	}
	return sig
}

// Find returns the row for symbol.
func Find(rows []Row, symbol string) (Row, bool) {
	for _, r := range rows {
		if r.Symbol == symbol {
			return r, true
		}
	}
	return Row{}, false
}
