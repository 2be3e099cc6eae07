package collector

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"FXSentinel/internal/model"
	"FXSentinel/internal/store"
)

// EconomicFetcher downloads the history of one macroeconomic indicator.
// indicator is a key of store.EconomicIndicators.
type EconomicFetcher interface {
	FetchSeries(ctx context.Context, country, indicator string, count int) ([]model.OHLCV, error)
	Name() string
}

// economicCodes are the ECONOMICS:<CC><code> suffixes of each indicator.
var economicCodes = map[string]string{
	"gdp_growth":                "GDPYY",
	"interest_rate":             "INTR",
	"inflation_rate":            "IRYY",
	"consumer_price_index":      "CPI",
	"producer_price_index":      "PPI",
	"unemployment_rate":         "UR",
	"trade_balance":             "BOT",
	"gov_debt":                  "GDG",
	"consumer_confidence_index": "CCI",
	"retail_sales":              "RSMM",
	"money_supply":              "M2",
}

// releasesPerYear is how often each indicator is published; monthly otherwise.
var releasesPerYear = map[string]int{
	"gdp_growth": 4,
	"gov_debt":   1,
}

// EconomicTicker returns the <CC><code> ticker of indicator, e.g. JPINTR.
// Australia reports M3 instead of M2.
func EconomicTicker(country, indicator string) (string, bool) {
	code, ok := economicCodes[indicator]
	if !ok {
		return "", false
	}
	cc := strings.ToUpper(country)
	if indicator == "money_supply" && cc == "AU" {
		code = "M3"
	}
	return cc + code, true
}

// EconomicCount returns how many releases of indicator cover years.
func EconomicCount(indicator string, years int) int {
	per, ok := releasesPerYear[indicator]
	if !ok {
		per = 12
	}
	return years * per
}

// EconomyKey names a series as CC:indicator.
func EconomyKey(country, indicator string) string {
	return strings.ToUpper(country) + ":" + indicator
}

// HTTPEconomicFetcher downloads time/value CSV series from a URL template.
// {ticker}, {country} and {indicator} in URLTemplate are substituted per
// request. Tickers overrides the ticker of an EconomyKey.
type HTTPEconomicFetcher struct {
	URLTemplate string
	Tickers     map[string]string
	Client      *http.Client
}

// NewHTTPEconomicFetcher creates a fetcher for urlTemplate.
func NewHTTPEconomicFetcher(urlTemplate string, tickers map[string]string, proxyURL string) *HTTPEconomicFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &HTTPEconomicFetcher{
		URLTemplate: urlTemplate,
		Tickers:     tickers,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (f *HTTPEconomicFetcher) Name() string { return "economy-http" }

func (f *HTTPEconomicFetcher) ticker(country, indicator string) (string, error) {
	if t, ok := f.Tickers[EconomyKey(country, indicator)]; ok {
		return t, nil
	}
	t, ok := EconomicTicker(country, indicator)
	if !ok {
		return "", fmt.Errorf("unknown indicator %q", indicator)
	}
	return t, nil
}

// FetchSeries downloads the series and keeps the last count releases.
func (f *HTTPEconomicFetcher) FetchSeries(ctx context.Context, country, indicator string, count int) ([]model.OHLCV, error) {
	ticker, err := f.ticker(country, indicator)
	if err != nil {
		return nil, err
	}
	u := strings.NewReplacer(
		"{ticker}", url.QueryEscape(ticker),
		"{country}", strings.ToUpper(country),
		"{indicator}", indicator,
	).Replace(f.URLTemplate)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("economy fetch %s: %w", ticker, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("economy %s: status %d", ticker, resp.StatusCode)
	}

	bars, err := store.ReadSeries(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("economy %s: %w", ticker, err)
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("economy %s: no data returned", ticker)
	}
	return tail(bars, count), nil
}

// MockEconomicFetcher returns deterministic monthly series.
type MockEconomicFetcher struct {
	// End is the date of the last release; zero means today.
	End time.Time
	// Values pins the level of an EconomyKey; others derive from the key.
	Values map[string]float64
}

func (m *MockEconomicFetcher) Name() string { return "economy-mock" }

func (m *MockEconomicFetcher) FetchSeries(_ context.Context, country, indicator string, count int) ([]model.OHLCV, error) {
	if _, ok := economicCodes[indicator]; !ok {
		return nil, fmt.Errorf("unknown indicator %q", indicator)
	}
	key := EconomyKey(country, indicator)
	level, ok := m.Values[key]
	if !ok {
		h := fnv.New32a()
		h.Write([]byte(key))
		level = 1 + float64(h.Sum32()%1000)/10
	}
	end := m.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	end = time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)

	bars := make([]model.OHLCV, count)
	for i := range bars {
		v := level * (1 + 0.01*math.Sin(float64(i)))
		bars[i] = model.OHLCV{Time: end.AddDate(0, i-count+1, 0), Open: v, High: v, Low: v, Close: v}
	}
	return bars, nil
}

// LoadEconomy fetches every indicator of countries covering years. Series
// that fail are logged and returned by EconomyKey; the error is only set when
// ctx ends.
func (c *Collector) LoadEconomy(ctx context.Context, countries []string, years int) (map[string]map[string][]model.OHLCV, []string, error) {
	if c.Economy == nil {
		return nil, nil, fmt.Errorf("no economic source configured")
	}
	indicators := make([]string, 0, len(economicCodes))
	for ind := range economicCodes {
		indicators = append(indicators, ind)
	}
	sort.Strings(indicators)

	var mu sync.Mutex
	out := make(map[string]map[string][]model.OHLCV, len(countries))
	var failed []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(c.Concurrency, 1))
	for _, cc := range countries {
		for _, ind := range indicators {
			cc, ind := cc, ind
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				bars, err := c.Economy.FetchSeries(gctx, cc, ind, EconomicCount(ind, years))
				mu.Lock()
				defer mu.Unlock()
				if err != nil || len(bars) == 0 {
					if ctxErr := gctx.Err(); ctxErr != nil {
						return ctxErr
					}
					c.Log.WithFields(logrus.Fields{"country": cc, "indicator": ind, "fetcher": c.Economy.Name()}).
						WithError(err).Warn("load economic series failed")
					failed = append(failed, EconomyKey(cc, ind))
					return nil
				}
				if out[cc] == nil {
					out[cc] = make(map[string][]model.OHLCV)
				}
				out[cc][ind] = bars
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	sort.Strings(failed)
	c.Log.WithFields(logrus.Fields{"countries": len(countries), "failed": len(failed)}).Info("economic series loaded")
	return out, failed, nil
}

// EconomyCountries returns the sorted country codes behind the FX symbols.
func EconomyCountries(symbols []string) []string {
	seen := map[string]bool{}
	for _, sym := range symbols {
		if base, quote, ok := Pair(sym); ok {
			seen[base.Code], seen[quote.Code] = true, true
		}
	}
	out := make([]string, 0, len(seen))
	for cc := range seen {
		out = append(out, cc)
	}
	sort.Strings(out)
	return out
}
