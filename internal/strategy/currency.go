package strategy

import (
	"math"
	"sort"

	"FXSentinel/internal/model"
)

// LocalCurrencyFactors are reported in each economy's own currency and must be
// brought to USD before economies are compared.
var LocalCurrencyFactors = []string{"Money_Supply", "Trade_Balance"}

const usdEconomy = "US"

// ToUSD converts value with r. EURUSD-style rates multiply, USDJPY-style
// rates divide. A missing or non-positive rate leaves value unchanged.
func ToUSD(value float64, r model.FXRate) float64 {
	if r.Rate <= 0 || math.IsNaN(r.Rate) {
		return value
	}
	if r.USDQuote {
		return value * r.Rate
	}
	return value / r.Rate
}

// EconomiesToUSD returns a copy of economies with LocalCurrencyFactors
// converted using rates, keyed by country code. The US is never converted.
// Countries holding such a factor but lacking a rate are left as reported
// and returned in missing.
func EconomiesToUSD(economies map[string]map[string]float64, rates map[string]model.FXRate) (out map[string]map[string]float64, missing []string) {
	out = make(map[string]map[string]float64, len(economies))
	for cc, values := range economies {
		cp := make(map[string]float64, len(values))
		for k, v := range values {
			cp[k] = v
		}
		out[cc] = cp
		if cc == usdEconomy || !hasLocalFactor(cp) {
			continue
		}
		r, ok := rates[cc]
		if !ok || r.Rate <= 0 {
			missing = append(missing, cc)
			continue
		}
		for _, name := range LocalCurrencyFactors {
			if v, ok := cp[name]; ok {
				cp[name] = ToUSD(v, r)
			}
		}
	}
	sort.Strings(missing)
	return out, missing
}

func hasLocalFactor(values map[string]float64) bool {
	for _, name := range LocalCurrencyFactors {
		if _, ok := values[name]; ok {
			return true
		}
	}
	return false
}
