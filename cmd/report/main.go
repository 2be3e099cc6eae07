package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"FXSentinel/internal/collector"
	"FXSentinel/internal/config"
	"FXSentinel/internal/logging"
	"FXSentinel/internal/model"
	"FXSentinel/internal/report"
	"FXSentinel/internal/store"
	"FXSentinel/internal/structure"
)

func main() {
	var (
		cfgPath  string
		category string
		years    int
		offline  bool
		mock     bool
		save     bool
		swings   string
		tfStr    string
	)

	flag.StringVar(&cfgPath, "config", "configs/config.yaml", "config file")
	flag.StringVar(&category, "category", "", "portfolio category (default from config)")
	flag.IntVar(&years, "years", 0, "years of history (default from config)")
	flag.BoolVar(&offline, "offline", false, "read bars saved under the data dir instead of downloading")
	flag.BoolVar(&mock, "mock", false, "use generated bars")
	flag.BoolVar(&save, "save", false, "save downloaded bars under the data dir")
	flag.StringVar(&swings, "swings", "", "optional: list validated swing points of SYMBOL instead of the summary")
	flag.StringVar(&tfStr, "tf", "D", "timeframe for -swings (D, W, M)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(os.Stderr, "setup logging: %v\n", err)
		os.Exit(1)
	}
	if category != "" {
		cfg.Data.Category = strings.ToLower(category)
	}
	if years > 0 {
		cfg.Data.Years = years
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if offline && mock {
		fmt.Fprintln(os.Stderr, "error: -offline and -mock are exclusive")
		os.Exit(1)
	}
	collector.Portfolio = cfg.Portfolio

	var fetcher collector.Fetcher
	switch {
	case offline:
		fetcher = &collector.StoreFetcher{Dir: cfg.Data.Dir}
	case mock:
		fetcher = &collector.MockFetcher{}
	default:
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	}
	col := collector.NewCollector(fetcher)
	switch {
	case mock:
		col.Economy = &collector.MockEconomicFetcher{}
	case !offline:
		col.Economy = cfg.EconomicFetcher()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if swings != "" {
		tf, err := structure.ParseGranularity(tfStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad -tf: %v\n", err)
			os.Exit(1)
		}
		sym := strings.ToUpper(swings)
		data, err := col.LoadAssetData(ctx, sym, cfg.Data.Years)
		if err != nil {
			fmt.Fprintf(os.Stderr, "load %s: %v\n", sym, err)
			os.Exit(1)
		}
		s, err := structure.Analyze(data.Series(tf), tf)
		if err != nil {
			fmt.Fprintf(os.Stderr, "analyze %s: %v\n", sym, err)
			os.Exit(1)
		}
		fmt.Println(report.RenderSwings(sym, s))
		fmt.Printf("Trend: %s\n", structure.Classify(s).Trend)
		return
	}

	assets, err := col.LoadPortfolio(ctx, cfg.Data.Category, cfg.Data.Years)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load portfolio: %v\n", err)
		os.Exit(1)
	}
	if save && !offline {
		for sym, data := range assets {
			if data == nil {
				continue
			}
			for _, tf := range model.Timeframes {
				path := store.BarsPath(cfg.Data.Dir, cfg.Data.Category, sym, tf)
				if err := store.SaveBars(path, data.Series(tf)); err != nil {
					logrus.WithFields(logrus.Fields{"symbol": sym, "tf": tf}).WithError(err).Error("save bars failed")
				}
			}
		}
	}

	cot, err := store.LoadLegacyCOT(cfg.Data.COTFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logrus.WithError(err).Warn("COT data unavailable")
	}
	economies := loadEconomies(ctx, col, cfg.Data.Dir, cfg.Data.Years, save && !offline)
	rows, err := report.Build(ctx, report.Inputs{
		Assets:    assets,
		COT:       cot,
		Economies: economies,
		FXCloses:  collector.LatestFXCloses(cfg.Data.Dir, assets),
		COTYears:  cfg.Data.Years,
	}, cfg.ReportOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "build report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(report.Render(rows, cfg.MAPeriods()))
}

// loadEconomies downloads the indicators of every tracked economy when an
// economic source is set, otherwise reads the stored ones.
func loadEconomies(ctx context.Context, col *collector.Collector, dir string, years int, save bool) map[string]map[string]float64 {
	var symbols []string
	for sym := range collector.Countries {
		symbols = append(symbols, sym)
	}
	codes := collector.EconomyCountries(symbols)
	economies := make(map[string]map[string]float64, len(codes))

	if col.Economy != nil {
		series, failed, err := col.LoadEconomy(ctx, codes, years)
		if err != nil {
			logrus.WithError(err).Warn("economic download aborted")
			return economies
		}
		if len(failed) > 0 {
			logrus.WithField("series", failed).Warn("some economic series unavailable")
		}
		for cc, byIndicator := range series {
			values := make(map[string]float64, len(byIndicator))
			for ind, bars := range byIndicator {
				if save {
					if err := store.SaveBars(store.EconomicPath(dir, cc, ind), bars); err != nil {
						logrus.WithFields(logrus.Fields{"country": cc, "indicator": ind}).WithError(err).Error("save economic series failed")
					}
				}
				values[store.EconomicIndicators[ind]] = bars[len(bars)-1].Close
			}
			economies[cc] = values
		}
		return economies
	}

	for _, cc := range codes {
		values, err := store.LoadEconomic(dir, cc)
		if err != nil {
			logrus.WithField("country", cc).WithError(err).Warn("economic data unavailable")
			continue
		}
		if len(values) > 0 {
			economies[cc] = values
		}
	}
	return economies
}
