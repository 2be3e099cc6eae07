package scheduler

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FXSentinel/internal/collector"
	"FXSentinel/internal/model"
	"FXSentinel/internal/recorder"
	"FXSentinel/internal/report"
	"FXSentinel/internal/state"
	"FXSentinel/internal/store"
)

var end = time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	return nil
}

func newTestScheduler(t *testing.T, fetcher collector.Fetcher) (*Scheduler, *fakeNotifier) {
	t.Helper()
	dir := t.TempDir()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "fx.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })
	tracker, err := state.NewTracker(filepath.Join(dir, "state.json"))
	require.NoError(t, err)

	n := &fakeNotifier{}
	s := NewScheduler(context.Background(), collector.NewCollector(fetcher), n, rec, tracker, Settings{
		DataDir:  dir,
		Category: "crypto",
		Years:    3,
		COTFile:  filepath.Join(dir, "missing.csv"),
		Report:   report.DefaultOptions(),
	})
	s.Now = func() time.Time { return end.Add(8 * time.Hour) }
	return s, n
}

func TestRefresh(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Price: 100, End: end})

	loaded, failed, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BTCUSD", "ETHUSD", "LTCUSD", "SOLUSD", "XRPUSD"}, loaded)
	assert.Empty(t, failed)

	for _, tf := range model.Timeframes {
		_, err := os.Stat(store.BarsPath(s.Settings.DataDir, "crypto", "BTCUSD", tf))
		assert.NoError(t, err, tf)
	}
	st := s.State.Get()
	assert.Equal(t, "crypto", st.Category)
	assert.Len(t, st.Loaded, 5)
}

func TestRefresh_AllFailed(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Bars: map[model.Timeframe][]model.OHLCV{model.Daily: nil}})

	loaded, failed, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.Len(t, failed, 5)
}

type stubEconomy struct {
	mu      sync.Mutex
	tickers []string
}

func (f *stubEconomy) Name() string { return "stub" }

var stubLevels = map[string]float64{"US": 3, "EU": 1, "JP": 2}

func (f *stubEconomy) FetchSeries(_ context.Context, country, indicator string, count int) ([]model.OHLCV, error) {
	ticker, _ := collector.EconomicTicker(country, indicator)
	f.mu.Lock()
	f.tickers = append(f.tickers, ticker)
	f.mu.Unlock()
	if ticker == "CHGDG" {
		return nil, errors.New("not published")
	}
	level, ok := stubLevels[country]
	if !ok {
		level = 1.5
	}
	bars := make([]model.OHLCV, count)
	for i := range bars {
		bars[i] = model.OHLCV{Time: end.AddDate(0, i-count+1, 0), Close: level}
	}
	return bars, nil
}

func TestRefresh_Economy(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Price: 1.1, End: end})
	s.Settings.Category = "forex"
	eco := &stubEconomy{}
	s.Collector.Economy = eco
	ctx := context.Background()

	loaded, failed, err := s.Refresh(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 7)
	assert.Equal(t, []string{"CH:gov_debt"}, failed)

	// AU CA CH EU GB JP NZ US, every indicator
	assert.Len(t, eco.tickers, 8*len(store.EconomicIndicators))
	assert.Contains(t, eco.tickers, "AUM3")
	assert.NotContains(t, eco.tickers, "AUM2")
	assert.Contains(t, eco.tickers, "JPM2")
	assert.Contains(t, eco.tickers, "USGDPYY")

	dir := s.Settings.DataDir
	for ind := range store.EconomicIndicators {
		_, err := os.Stat(store.EconomicPath(dir, "JP", ind))
		assert.NoError(t, err, ind)
	}
	_, err = os.Stat(store.EconomicPath(dir, "CH", "gov_debt"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	jp, err := store.LoadEconomic(dir, "JP")
	require.NoError(t, err)
	assert.Len(t, jp, len(store.EconomicIndicators))
	assert.Equal(t, 2.0, jp["Interest_Rate"])

	rows, _, err := s.Report(ctx, "forex")
	require.NoError(t, err)
	eur, ok := report.Find(rows, "EURUSD")
	require.True(t, ok)
	require.NotNil(t, eur.Macro)
	assert.Equal(t, "EU", eur.Macro.Domestic)
}

func TestRefresh_NoEconomicSource(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Price: 1.1, End: end})
	s.Settings.Category = "forex"

	loaded, failed, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, loaded, 7)
	assert.Empty(t, failed)

	rows, _, err := s.Report(context.Background(), "forex")
	require.NoError(t, err)
	eur, _ := report.Find(rows, "EURUSD")
	assert.Nil(t, eur.Macro)
	assert.Equal(t, "no macro data", eur.Score.Text)
}

func TestReport(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{Price: 100, End: end})
	_, _, err := s.Refresh(context.Background())
	require.NoError(t, err)

	rows, run, err := s.Report(context.Background(), "crypto")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "BTCUSD", rows[0].Symbol)
	assert.Equal(t, "N/A", rows[0].COT.Text)
	assert.Len(t, run.Rows, 5)
	assert.Len(t, run.Rows[0].Cells, 13)
	assert.Equal(t, end.Add(8*time.Hour), run.Timestamp)

	snaps, err := s.Recorder.StructureHistory("BTCUSD", model.Weekly, 5)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, run.ID, snaps[0].RunID)
}

func TestReport_NoStoredData(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})

	_, _, err := s.Report(context.Background(), "stock")
	assert.ErrorContains(t, err, "no stored data for stock")

	_, _, err = s.Report(context.Background(), "bonds")
	assert.ErrorContains(t, err, "unknown category")
}

func TestTasks(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{Price: 100, End: end})

	s.RunNow()
	require.Len(t, n.sent, 2)
	assert.Contains(t, n.sent[0], "Data refresh")
	assert.Contains(t, n.sent[1], "FXSentinel Summary")
	assert.Contains(t, n.sent[1], "<b>SOLUSD</b>")

	st := s.State.Get()
	assert.Equal(t, 1, st.ReportsSent)
	assert.NotEmpty(t, st.LastRunID)
}

func TestReportTask_Failure(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{})

	s.reportTask()
	require.Len(t, n.sent, 1)
	assert.Contains(t, n.sent[0], "report failed")
	assert.Zero(t, s.State.Get().ReportsSent)
}

func TestHandleCommand(t *testing.T) {
	s, n := newTestScheduler(t, &collector.MockFetcher{Price: 100, End: end})
	ctx := context.Background()

	assert.Contains(t, s.HandleCommand(ctx, "/refresh"), "Loaded: 5 symbols")
	assert.Contains(t, s.HandleCommand(ctx, "/status@FXSentinelBot"), "(5 loaded, 0 failed)")

	assert.Contains(t, s.HandleCommand(ctx, "/history BTCUSD"), "No recorded runs.")
	assert.Contains(t, s.HandleCommand(ctx, "/structure btcusd"), "BTCUSD structure")

	assert.Contains(t, s.HandleCommand(ctx, "/report"), "<b>ETHUSD</b>")
	assert.Contains(t, s.HandleCommand(ctx, "/history ETHUSD M"), "ETHUSD M structure history")
	assert.NotContains(t, s.HandleCommand(ctx, "/history ETHUSD M"), "No recorded runs.")
	assert.Contains(t, s.HandleCommand(ctx, "/history ETHUSD Q"), "history failed")

	assert.Contains(t, s.HandleCommand(ctx, "/report stock"), "report failed")
	assert.Contains(t, s.HandleCommand(ctx, "/structure XYZ"), "unknown symbol XYZ")
	assert.Equal(t, "Usage: /structure SYMBOL", s.HandleCommand(ctx, "/structure"))
	assert.Contains(t, s.HandleCommand(ctx, "hello"), "/report [category]")
	assert.Contains(t, s.HandleCommand(ctx, ""), "/help")

	// replies go back through the bot, not the notifier
	assert.Empty(t, n.sent)
}

func TestRegisterAll(t *testing.T) {
	s, _ := newTestScheduler(t, &collector.MockFetcher{})
	require.NoError(t, s.RegisterAll("0 30 22 * * 1-5", "0 0 8 * * 1"))
	assert.Len(t, s.Cron.Entries(), 2)

	err := s.RegisterAll("not a cron", "0 0 8 * * 1")
	assert.ErrorContains(t, err, "register refresh task")
}
