package scheduler

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"FXSentinel/internal/collector"
	"FXSentinel/internal/model"
	"FXSentinel/internal/notifier"
	"FXSentinel/internal/recorder"
	"FXSentinel/internal/report"
	"FXSentinel/internal/state"
	"FXSentinel/internal/store"
	"FXSentinel/internal/structure"
)

// historyLimit caps the snapshots returned by /history.
const historyLimit = 10

// Notifier delivers messages to the configured chat.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Settings are the data and indicator parameters used by every task.
type Settings struct {
	DataDir  string
	Category string
	Years    int
	COTFile  string
	Report   report.Options
}

// Scheduler manages the refresh and report tasks and answers bot commands.
type Scheduler struct {
	Cron      *cron.Cron
	Collector *collector.Collector // online source used by refresh
	Notifier  Notifier             // nil disables outgoing messages
	Recorder  recorder.Recorder
	State     *state.Tracker
	Settings  Settings
	Ctx       context.Context
	Now       func() time.Time

	mu     sync.Mutex
	latest map[string][]report.Row // by category
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, col *collector.Collector, n Notifier, rec recorder.Recorder, st *state.Tracker, settings Settings) *Scheduler {
	return &Scheduler{
		Cron:      cron.New(cron.WithSeconds()),
		Collector: col,
		Notifier:  n,
		Recorder:  rec,
		State:     st,
		Settings:  settings,
		Ctx:       ctx,
		Now:       time.Now,
		latest:    make(map[string][]report.Row),
	}
}

// RegisterAll registers the data refresh and the summary report tasks.
func (s *Scheduler) RegisterAll(refreshCron, reportCron string) error {
	if _, err := s.Cron.AddFunc(refreshCron, s.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	if _, err := s.Cron.AddFunc(reportCron, s.reportTask); err != nil {
		return fmt.Errorf("register report task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logrus.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	logrus.Info("scheduler stopped")
}

// RunNow refreshes the data and sends a report immediately (RUN_ON_START).
func (s *Scheduler) RunNow() {
	s.refreshTask()
	s.reportTask()
}

func (s *Scheduler) refreshTask() {
	logrus.WithField("category", s.Settings.Category).Info("running refresh task")
	start := time.Now()
	loaded, failed, err := s.Refresh(s.Ctx)
	if err != nil {
		logrus.WithError(err).Error("refresh failed")
		s.trySend(notifier.FormatError("refresh", err))
		return
	}
	s.trySend(notifier.FormatRefresh(s.Settings.Category, loaded, failed, time.Since(start)))
}

func (s *Scheduler) reportTask() {
	logrus.WithField("category", s.Settings.Category).Info("running report task")
	rows, run, err := s.Report(s.Ctx, s.Settings.Category)
	if err != nil {
		logrus.WithError(err).Error("report failed")
		s.trySend(notifier.FormatError("report", err))
		return
	}
	sent := s.trySend(report.RenderHTML(rows, run.Timestamp))
	s.markReport(run, sent)
}

// Refresh downloads the configured category and saves every timeframe under
// the data directory, then the economic series of the economies behind its
// FX symbols when an economic source is set. It returns the symbols saved
// and the symbols or CC:indicator series that failed.
func (s *Scheduler) Refresh(ctx context.Context) (loaded, failed []string, err error) {
	category := s.Settings.Category
	data, err := s.Collector.LoadPortfolio(ctx, category, s.Settings.Years)
	if err != nil {
		return nil, nil, err
	}
	for sym, asset := range data {
		if asset == nil {
			failed = append(failed, sym)
			continue
		}
		if err := saveAsset(s.Settings.DataDir, category, asset); err != nil {
			logrus.WithField("symbol", sym).WithError(err).Error("save bars failed")
			failed = append(failed, sym)
			continue
		}
		loaded = append(loaded, sym)
	}
	sort.Strings(loaded)
	sort.Strings(failed)

	symbols, _ := collector.Symbols(category)
	ecoFailed, err := s.refreshEconomy(ctx, collector.EconomyCountries(symbols))
	if err != nil {
		return nil, nil, err
	}
	failed = append(failed, ecoFailed...)
	if s.State != nil {
		s.State.MarkRefresh(category, s.Now(), loaded, failed)
	}
	return loaded, failed, nil
}

// refreshEconomy downloads and saves the indicators of countries.
func (s *Scheduler) refreshEconomy(ctx context.Context, countries []string) (failed []string, err error) {
	if len(countries) == 0 {
		return nil, nil
	}
	if s.Collector.Economy == nil {
		logrus.WithField("countries", countries).Warn("no economic source configured, macro data not refreshed")
		return nil, nil
	}
	series, failed, err := s.Collector.LoadEconomy(ctx, countries, s.Settings.Years)
	if err != nil {
		return nil, err
	}
	for _, cc := range countries {
		for ind, bars := range series[cc] {
			if err := store.SaveBars(store.EconomicPath(s.Settings.DataDir, cc, ind), bars); err != nil {
				logrus.WithFields(logrus.Fields{"country": cc, "indicator": ind}).WithError(err).Error("save economic series failed")
				failed = append(failed, collector.EconomyKey(cc, ind))
			}
		}
	}
	sort.Strings(failed)
	return failed, nil
}

func saveAsset(dir, category string, asset *model.AssetData) error {
	for _, tf := range model.Timeframes {
		if err := store.SaveBars(store.BarsPath(dir, category, asset.Symbol, tf), asset.Series(tf)); err != nil {
			return err
		}
	}
	return nil
}

// Report builds the summary of category from stored data, records it and
// caches the rows for /structure.
func (s *Scheduler) Report(ctx context.Context, category string) ([]report.Row, *recorder.Run, error) {
	symbols, err := collector.Symbols(category)
	if err != nil {
		return nil, nil, err
	}
	offline := collector.NewCollector(&collector.StoreFetcher{Dir: s.Settings.DataDir})
	assets, err := offline.LoadPortfolio(ctx, category, s.Settings.Years)
	if err != nil {
		return nil, nil, err
	}

	economies, err := s.loadEconomies(symbols)
	if err != nil {
		return nil, nil, err
	}
	rows, err := report.Build(ctx, report.Inputs{
		Assets:    assets,
		COT:       s.loadCOT(),
		Economies: economies,
		FXCloses:  collector.LatestFXCloses(s.Settings.DataDir, assets),
		COTYears:  s.Settings.Years,
	}, s.Settings.Report)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no stored data for %s, run /refresh first", category)
	}

	run := recorder.NewRun(category, s.Now())
	for _, r := range rows {
		run.Rows = append(run.Rows, rowRecord(r))
	}
	if err := s.Recorder.RecordRun(run); err != nil {
		logrus.WithField("run_id", run.ID).WithError(err).Error("record run failed")
	}

	s.mu.Lock()
	s.latest[category] = rows
	s.mu.Unlock()
	return rows, run, nil
}

func rowRecord(r report.Row) recorder.RowRecord {
	rec := recorder.RowRecord{Symbol: r.Symbol, Cells: r.Cells()}
	for _, tf := range model.Timeframes {
		st, ok := r.Structures[tf]
		if !ok {
			continue
		}
		rec.Structures = append(rec.Structures, recorder.StructureSnapshot{
			Symbol:    r.Symbol,
			Timeframe: tf,
			Trend:     st.Trend,
			Highs:     st.Highs,
			Lows:      st.Lows,
		})
	}
	return rec
}

// loadCOT reads the legacy COT file. A missing or unreadable file only
// disables the COT column.
func (s *Scheduler) loadCOT() []model.COTRecord {
	if s.Settings.COTFile == "" {
		return nil
	}
	records, err := store.LoadLegacyCOT(s.Settings.COTFile)
	if err != nil {
		entry := logrus.WithField("path", s.Settings.COTFile).WithError(err)
		if errors.Is(err, fs.ErrNotExist) {
			entry.Warn("COT file not found")
		} else {
			entry.Error("load COT file failed")
		}
		return nil
	}
	return records
}

// loadEconomies reads the latest indicators of every economy symbols depend on.
func (s *Scheduler) loadEconomies(symbols []string) (map[string]map[string]float64, error) {
	codes := collector.EconomyCountries(symbols)
	out := make(map[string]map[string]float64, len(codes))
	for _, code := range codes {
		values, err := store.LoadEconomic(s.Settings.DataDir, code)
		if err != nil {
			return nil, fmt.Errorf("load %s economy: %w", code, err)
		}
		if len(values) > 0 {
			out[code] = values
		}
	}
	return out, nil
}

func (s *Scheduler) markReport(run *recorder.Run, sent bool) {
	if s.State != nil {
		s.State.MarkReport(run.ID, run.Timestamp, sent)
	}
}

// HandleCommand processes a user command and returns the HTML reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.HelpText()
	}
	name := strings.ToLower(fields[0])
	if i := strings.Index(name, "@"); i > 0 {
		name = name[:i]
	}
	args := fields[1:]

	switch name {
	case "/report":
		category := s.Settings.Category
		if len(args) > 0 {
			category = strings.ToLower(args[0])
		}
		rows, run, err := s.Report(ctx, category)
		if err != nil {
			return notifier.FormatError("report", err)
		}
		s.markReport(run, false)
		return report.RenderHTML(rows, run.Timestamp)
	case "/structure":
		if len(args) == 0 {
			return "Usage: /structure SYMBOL"
		}
		row, err := s.row(ctx, strings.ToUpper(args[0]))
		if err != nil {
			return notifier.FormatError("structure", err)
		}
		return report.StructureHTML(row)
	case "/history":
		if len(args) == 0 {
			return "Usage: /history SYMBOL [D|W|M]"
		}
		tf := model.Daily
		if len(args) > 1 {
			var err error
			if tf, err = structure.ParseGranularity(args[1]); err != nil {
				return notifier.FormatError("history", err)
			}
		}
		sym := strings.ToUpper(args[0])
		snaps, err := s.Recorder.StructureHistory(sym, tf, historyLimit)
		if err != nil {
			return notifier.FormatError("history", err)
		}
		return notifier.FormatHistory(sym, tf, snaps)
	case "/refresh":
		start := time.Now()
		loaded, failed, err := s.Refresh(ctx)
		if err != nil {
			return notifier.FormatError("refresh", err)
		}
		return notifier.FormatRefresh(s.Settings.Category, loaded, failed, time.Since(start))
	case "/status":
		if s.State == nil {
			return "State tracking is disabled."
		}
		return state.Format(s.State.Get())
	default:
		return notifier.HelpText()
	}
}

// row returns the latest row of symbol, building its category's report when
// none is cached.
func (s *Scheduler) row(ctx context.Context, symbol string) (report.Row, error) {
	category, ok := collector.CategoryOf(symbol)
	if !ok {
		return report.Row{}, fmt.Errorf("unknown symbol %s", symbol)
	}
	s.mu.Lock()
	rows, cached := s.latest[category]
	s.mu.Unlock()
	if !cached {
		var err error
		if rows, _, err = s.Report(ctx, category); err != nil {
			return report.Row{}, err
		}
	}
	if r, ok := report.Find(rows, symbol); ok {
		return r, nil
	}
	return report.Row{}, fmt.Errorf("no data for %s", symbol)
}

func (s *Scheduler) trySend(text string) bool {
	if s.Notifier == nil {
		return false
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		logrus.WithError(err).Error("send notification failed")
		return false
	}
	return true
}
