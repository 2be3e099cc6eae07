package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"FXSentinel/internal/calculator"
	"FXSentinel/internal/collector"
	"FXSentinel/internal/report"
	"FXSentinel/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Data struct {
		Dir      string `yaml:"dir"`
		Years    int    `yaml:"years"`
		Category string `yaml:"category"`
		COTFile  string `yaml:"cot_file"`
	} `yaml:"data"`
	Portfolio map[string][]string `yaml:"portfolio"`
	Schedule  struct {
		RefreshCron string `yaml:"refresh_cron"`
		ReportCron  string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Indicators struct {
		MAPeriods         []int   `yaml:"ma_periods"`
		COTWeeks          int     `yaml:"cot_weeks"`
		COTUpper          float64 `yaml:"cot_upper"`
		COTLower          float64 `yaml:"cot_lower"`
		SeasonalThreshold float64 `yaml:"seasonal_threshold"`
	} `yaml:"indicators"`
	Macro struct {
		Weights     map[string]float64 `yaml:"weights"`
		Sensitivity float64            `yaml:"sensitivity"`
		Threshold   float64            `yaml:"threshold"`
	} `yaml:"macro"`
	Economy struct {
		SourceURL string            `yaml:"source_url"` // {ticker}, {country}, {indicator} are substituted
		Tickers   map[string]string `yaml:"tickers"`    // CC:indicator -> source ticker
	} `yaml:"economy"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
		Enabled  *bool  `yaml:"enabled"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env (if present) and the YAML file at path, then applies
// environment variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		c.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		c.Telegram.ChatID = v
	}
	if v := os.Getenv("FXS_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("FXS_CATEGORY"); v != "" {
		c.Data.Category = v
	}
	if v := os.Getenv("FXS_YEARS"); v != "" {
		years, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FXS_YEARS: %w", err)
		}
		c.Data.Years = years
	}
	if v := os.Getenv("FXS_ECONOMY_URL"); v != "" {
		c.Economy.SourceURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.Years == 0 {
		c.Data.Years = 20
	}
	if c.Data.Category == "" {
		c.Data.Category = "forex"
	}
	c.Data.Category = strings.ToLower(c.Data.Category)
	if c.Data.COTFile == "" {
		c.Data.COTFile = "data/raw/cot/legacy_fut.csv"
	}
	if len(c.Portfolio) == 0 {
		c.Portfolio = make(map[string][]string, len(collector.Portfolio))
		for k, v := range collector.Portfolio {
			c.Portfolio[k] = append([]string(nil), v...)
		}
	}
	if c.Schedule.RefreshCron == "" {
		c.Schedule.RefreshCron = "0 30 22 * * 1-5"
	}
	if c.Schedule.ReportCron == "" {
		c.Schedule.ReportCron = "0 0 8 * * 1"
	}
	if len(c.Indicators.MAPeriods) == 0 {
		c.Indicators.MAPeriods = append([]int(nil), calculator.DefaultMAPeriods[:]...)
	}
	if c.Indicators.COTWeeks == 0 {
		c.Indicators.COTWeeks = 26
	}
	if c.Indicators.COTUpper == 0 && c.Indicators.COTLower == 0 {
		c.Indicators.COTUpper, c.Indicators.COTLower = 80, 20
	}
	if c.Indicators.SeasonalThreshold == 0 {
		c.Indicators.SeasonalThreshold = calculator.DefaultSeasonalThreshold
	}
	def := strategy.DefaultParams()
	if len(c.Macro.Weights) == 0 {
		c.Macro.Weights = def.Weights
	}
	if c.Macro.Sensitivity == 0 {
		c.Macro.Sensitivity = def.Sensitivity
	}
	if c.Macro.Threshold == 0 {
		c.Macro.Threshold = def.Threshold
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/fx_sentinel.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// TelegramEnabled reports whether notifications are on. Unset means on
// whenever a bot token is configured.
func (c *Config) TelegramEnabled() bool {
	if c.Telegram.Enabled != nil {
		return *c.Telegram.Enabled
	}
	return c.Telegram.BotToken != ""
}

// MAPeriods returns the fast, mid and slow periods.
func (c *Config) MAPeriods() [3]int {
	var p [3]int
	copy(p[:], c.Indicators.MAPeriods)
	return p
}

// MacroParams returns the valuation parameters.
func (c *Config) MacroParams() strategy.Params {
	return strategy.Params{Weights: c.Macro.Weights, Sensitivity: c.Macro.Sensitivity, Threshold: c.Macro.Threshold}
}

// ReportOptions returns the indicator settings of a summary report.
func (c *Config) ReportOptions() report.Options {
	opts := report.DefaultOptions()
	opts.MAPeriods = c.MAPeriods()
	opts.COTWeeks = c.Indicators.COTWeeks
	opts.COTUpper = c.Indicators.COTUpper
	opts.COTLower = c.Indicators.COTLower
	opts.SeasonalThreshold = c.Indicators.SeasonalThreshold
	opts.Macro = c.MacroParams()
	return opts
}

// EconomicFetcher returns the configured economic source, or nil when none is set.
func (c *Config) EconomicFetcher() collector.EconomicFetcher {
	if c.Economy.SourceURL == "" {
		return nil
	}
	return collector.NewHTTPEconomicFetcher(c.Economy.SourceURL, c.Economy.Tickers, c.Proxy)
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	if _, ok := c.Portfolio[c.Data.Category]; !ok {
		return fmt.Errorf("data.category %q is not in the portfolio", c.Data.Category)
	}
	if c.Data.Years <= 0 {
		return fmt.Errorf("data.years must be positive")
	}
	if c.Schedule.RefreshCron == "" || c.Schedule.ReportCron == "" {
		return fmt.Errorf("schedule.refresh_cron and schedule.report_cron are required")
	}
	p := c.Indicators.MAPeriods
	if len(p) != 3 || p[0] <= 0 || p[0] >= p[1] || p[1] >= p[2] {
		return fmt.Errorf("indicators.ma_periods must be three increasing positive periods, got %v", p)
	}
	if c.Indicators.COTWeeks <= 0 {
		return fmt.Errorf("indicators.cot_weeks must be positive")
	}
	lo, hi := c.Indicators.COTLower, c.Indicators.COTUpper
	if lo < 0 || lo >= hi || hi > 100 {
		return fmt.Errorf("indicators.cot_lower/cot_upper must satisfy 0 <= lower < upper <= 100, got %v/%v", lo, hi)
	}
	if c.Indicators.SeasonalThreshold < 0 {
		return fmt.Errorf("indicators.seasonal_threshold must not be negative")
	}
	if c.TelegramEnabled() {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required")
		}
	}
	if u := c.Economy.SourceURL; u != "" && !strings.Contains(u, "{ticker}") && !strings.Contains(u, "{indicator}") {
		return fmt.Errorf("economy.source_url must contain {ticker} or {indicator}, got %q", u)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
