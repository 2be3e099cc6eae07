package collector

import (
	"fmt"
	"sort"
	"strings"
)

// Portfolio groups the tracked symbols by asset category.
var Portfolio = map[string][]string{
	"forex":  {"EURUSD", "GBPUSD", "AUDUSD", "NZDUSD", "USDJPY", "USDCAD", "USDCHF"},
	"future": {"6E1!", "6B1!", "6A1!", "6N1!", "6J1!", "6C1!", "6S1!", "DX1!"},
	"crypto": {"BTCUSD", "ETHUSD", "LTCUSD", "SOLUSD", "XRPUSD"},
	"stock":  {"AAPL", "TSLA", "MSFT"},
}

// Categories returns the portfolio categories in sorted order.
func Categories() []string {
	out := make([]string, 0, len(Portfolio))
	for c := range Portfolio {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Symbols returns the symbols of category, or an error when it is unknown.
func Symbols(category string) ([]string, error) {
	syms, ok := Portfolio[strings.ToLower(category)]
	if !ok {
		return nil, fmt.Errorf("unknown category %q (want one of %s)", category, strings.Join(Categories(), ", "))
	}
	return syms, nil
}

// CategoryOf returns the category holding symbol.
func CategoryOf(symbol string) (string, bool) {
	for _, c := range Categories() {
		for _, s := range Portfolio[c] {
			if strings.EqualFold(s, symbol) {
				return c, true
			}
		}
	}
	return "", false
}

// COTNames maps a symbol to its CFTC legacy report market name.
var COTNames = map[string]string{
	"EURUSD": "EURO FX - CHICAGO MERCANTILE EXCHANGE",
	"GBPUSD": "BRITISH POUND - CHICAGO MERCANTILE EXCHANGE",
	"USDCHF": "SWISS FRANC - CHICAGO MERCANTILE EXCHANGE",
	"USDJPY": "JAPANESE YEN - CHICAGO MERCANTILE EXCHANGE",
	"NZDUSD": "NZ DOLLAR - CHICAGO MERCANTILE EXCHANGE",
	"USDCAD": "CANADIAN DOLLAR - CHICAGO MERCANTILE EXCHANGE",
	"AUDUSD": "AUSTRALIAN DOLLAR - CHICAGO MERCANTILE EXCHANGE",

	"6E1!": "EURO FX - CHICAGO MERCANTILE EXCHANGE",
	"6B1!": "BRITISH POUND - CHICAGO MERCANTILE EXCHANGE",
	"6A1!": "AUSTRALIAN DOLLAR - CHICAGO MERCANTILE EXCHANGE",
	"6N1!": "NZ DOLLAR - CHICAGO MERCANTILE EXCHANGE",
	"6J1!": "JAPANESE YEN - CHICAGO MERCANTILE EXCHANGE",
	"6C1!": "CANADIAN DOLLAR - CHICAGO MERCANTILE EXCHANGE",
	"6S1!": "SWISS FRANC - CHICAGO MERCANTILE EXCHANGE",
	"DX1!": "USD INDEX - ICE FUTURES U.S.",

	"BTCUSD": "BITCOIN - CHICAGO MERCANTILE EXCHANGE",
	"ETHUSD": "ETHER CASH SETTLED - CHICAGO MERCANTILE EXCHANGE",
}

// Country is the economy and currency behind a symbol.
type Country struct {
	Code     string
	Currency string
}

// Countries maps FX symbols to the economy whose data drives macro scoring.
var Countries = map[string]Country{
	"EURUSD": {"EU", "EUR"},
	"GBPUSD": {"GB", "GBP"},
	"AUDUSD": {"AU", "AUD"},
	"NZDUSD": {"NZ", "NZD"},
	"USDJPY": {"JP", "JPY"},
	"USDCAD": {"CA", "CAD"},
	"USDCHF": {"CH", "CHF"},

	"DX1!": {"US", "USD"},
	"6E1!": {"EU", "EUR"},
	"6B1!": {"GB", "GBP"},
	"6A1!": {"AU", "AUD"},
	"6N1!": {"NZ", "NZD"},
	"6J1!": {"JP", "JPY"},
	"6C1!": {"CA", "CAD"},
	"6S1!": {"CH", "CHF"},
}

// USD is the quote-side economy for every pair in Countries.
var USD = Country{"US", "USD"}

// Pair returns the base and quote economies of symbol. USD-based pairs such
// as USDJPY put the US first; futures are quoted against USD.
func Pair(symbol string) (base, quote Country, ok bool) {
	c, ok := Countries[symbol]
	if !ok {
		return Country{}, Country{}, false
	}
	if strings.HasPrefix(symbol, "USD") {
		return USD, c, true
	}
	return c, USD, true
}

// YahooTickers translates portfolio symbols to Yahoo Finance tickers.
func YahooTickers() map[string]string {
	m := map[string]string{
		"DX1!":   "DX-Y.NYB",
		"BTCUSD": "BTC-USD",
		"ETHUSD": "ETH-USD",
		"LTCUSD": "LTC-USD",
		"SOLUSD": "SOL-USD",
		"XRPUSD": "XRP-USD",
	}
	for _, s := range Portfolio["forex"] {
		m[s] = s + "=X"
	}
	for _, s := range Portfolio["future"] {
		if _, ok := m[s]; !ok {
			m[s] = strings.TrimSuffix(s, "1!") + "=F"
		}
	}
	return m
}
