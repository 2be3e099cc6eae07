package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"FXSentinel/internal/collector"
	"FXSentinel/internal/config"
	"FXSentinel/internal/logging"
	"FXSentinel/internal/notifier"
	"FXSentinel/internal/recorder"
	"FXSentinel/internal/scheduler"
	"FXSentinel/internal/state"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
		logrus.WithError(err).Fatal("setup logging")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("config validation")
	}
	collector.Portfolio = cfg.Portfolio
	logrus.WithField("category", cfg.Data.Category).Info("FXSentinel starting")

	// Init collector
	fetcher := collector.NewYahooFetcher(cfg.Proxy)
	col := collector.NewCollector(fetcher)
	logrus.WithField("fetcher", fetcher.Name()).Info("data source ready")
	if eco := cfg.EconomicFetcher(); eco != nil {
		col.Economy = eco
		logrus.WithField("fetcher", eco.Name()).Info("economic source ready")
	} else {
		logrus.Warn("economy.source_url not set, macro scores use stored data only")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			logrus.WithError(err).Warn("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	tracker, err := state.NewTracker(filepath.Join(cfg.Data.Dir, "state.json"))
	if err != nil {
		logrus.WithError(err).Fatal("init state tracker")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, col, nil, rec, tracker, scheduler.Settings{
		DataDir:  cfg.Data.Dir,
		Category: cfg.Data.Category,
		Years:    cfg.Data.Years,
		COTFile:  cfg.Data.COTFile,
		Report:   cfg.ReportOptions(),
	})

	if cfg.TelegramEnabled() {
		tn, err := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, sched.HandleCommand)
		if err != nil {
			logrus.WithError(err).Fatal("init telegram notifier")
		}
		sched.Notifier = tn
		go tn.StartPolling(ctx)
	} else {
		logrus.Warn("telegram disabled, reports are only recorded")
	}

	if err := sched.RegisterAll(cfg.Schedule.RefreshCron, cfg.Schedule.ReportCron); err != nil {
		logrus.WithError(err).Fatal("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		logrus.Info("RUN_ON_START enabled, refreshing and reporting now")
		go sched.RunNow()
	}

	logrus.Info("FXSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logrus.Info("shutdown signal received, stopping...")
	cancel()
}
