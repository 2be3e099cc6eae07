package strategy

import (
	"math"
	"sort"

	"FXSentinel/internal/model"
)

// DefaultWeights are the macro factor weights. Negative weights mark factors
// where a higher reading weakens the currency.
var DefaultWeights = map[string]float64{
	"GDP_Growth":          0.25,
	"Interest_Rate":       0.20,
	"Inflation_Rate":      -0.15,
	"Unemployment":        -0.15,
	"Trade_Balance":       0.10,
	"Consumer_Confidence": 0.10,
	"Money_Supply":        -0.05,
}

// ZScore standardizes values with the population standard deviation.
// A constant series maps to all zeros.
func ZScore(values []float64) []float64 {
	out := make([]float64, len(values))
	if len(values) == 0 {
		return out
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	std := math.Sqrt(variance / float64(len(values)))
	if std == 0 {
		return out
	}
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out
}

// MacroScore is the weighted sum of a country's normalized indicators.
// Indicators absent from data count as zero.
func MacroScore(data map[string]float64, weights map[string]float64) (float64, []model.FactorScore) {
	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Strings(names)

	var total float64
	factors := make([]model.FactorScore, 0, len(names))
	for _, name := range names {
		w := weights[name]
		raw := data[name]
		factors = append(factors, model.FactorScore{Name: name, RawScore: raw, Weight: w, Weighted: raw * w})
		total += raw * w
	}
	return total, factors
}

// MacroScoreDiff returns domestic minus foreign macro score with the per-factor breakdown.
func MacroScoreDiff(domestic, foreign, weights map[string]float64) (float64, []model.FactorScore) {
	dom, domFactors := MacroScore(domestic, weights)
	forScore, forFactors := MacroScore(foreign, weights)
	diff := make([]model.FactorScore, len(domFactors))
	for i := range domFactors {
		diff[i] = model.FactorScore{
			Name:     domFactors[i].Name,
			RawScore: domFactors[i].RawScore - forFactors[i].RawScore,
			Weight:   domFactors[i].Weight,
			Weighted: domFactors[i].Weighted - forFactors[i].Weighted,
		}
	}
	return dom - forScore, diff
}

// Normalize z-scores every weighted indicator across the countries that report it.
// Countries missing an indicator are left without it.
func Normalize(economies map[string]map[string]float64, weights map[string]float64) map[string]map[string]float64 {
	countries := make([]string, 0, len(economies))
	for cc := range economies {
		countries = append(countries, cc)
	}
	sort.Strings(countries)

	out := make(map[string]map[string]float64, len(economies))
	for _, cc := range countries {
		out[cc] = make(map[string]float64)
	}
	for name := range weights {
		var who []string
		var vals []float64
		for _, cc := range countries {
			if v, ok := economies[cc][name]; ok && !math.IsNaN(v) {
				who = append(who, cc)
				vals = append(vals, v)
			}
		}
		for i, z := range ZScore(vals) {
			out[who[i]][name] = z
		}
	}
	return out
}
