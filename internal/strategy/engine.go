package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"FXSentinel/internal/model"
)

// Params tunes the macro valuation.
type Params struct {
	Weights     map[string]float64
	Sensitivity float64 // fair value move per unit of score difference
	Threshold   float64 // relative deviation that triggers BUY or SELL
}

// DefaultParams returns the default weights with 2% sensitivity and a 1% band.
func DefaultParams() Params {
	return Params{Weights: DefaultWeights, Sensitivity: 0.02, Threshold: 0.01}
}

// FairValue shifts spot by sensitivity per point of macro score difference.
func FairValue(spot, scoreDiff, sensitivity float64) float64 {
	return spot * (1 + sensitivity*scoreDiff)
}

// Deviation is (spot-fair)/fair, computed in decimal so that values sitting
// exactly on a threshold compare as equal.
func Deviation(spot, fair float64) decimal.Decimal {
	f := decimal.NewFromFloat(fair)
	if f.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromFloat(spot).Sub(f).Div(f)
}

// Signal is BUY when spot trades more than threshold below fair value,
// SELL when more than threshold above, HOLD otherwise.
func Signal(spot, fair, threshold float64) model.Action {
	dev := Deviation(spot, fair)
	th := decimal.NewFromFloat(threshold)
	switch {
	case dev.LessThan(th.Neg()):
		return model.ActionBuy
	case dev.GreaterThan(th):
		return model.ActionSell
	default:
		return model.ActionHold
	}
}

// Evaluate values the domestic/foreign pair at spot. Indicators are z-scored
// across every economy supplied before scoring.
func Evaluate(domestic, foreign string, spot float64, economies map[string]map[string]float64, p Params) (*model.MacroSignal, error) {
	if _, ok := economies[domestic]; !ok {
		return nil, fmt.Errorf("no economic data for %s", domestic)
	}
	if _, ok := economies[foreign]; !ok {
		return nil, fmt.Errorf("no economic data for %s", foreign)
	}
	if spot <= 0 {
		return nil, fmt.Errorf("invalid spot %v", spot)
	}

	norm := Normalize(economies, p.Weights)
	diff, factors := MacroScoreDiff(norm[domestic], norm[foreign], p.Weights)
	fair := FairValue(spot, diff, p.Sensitivity)
	dev, _ := Deviation(spot, fair).Float64()

	return &model.MacroSignal{
		Domestic:  domestic,
		Foreign:   foreign,
		Factors:   factors,
		ScoreDiff: diff,
		Spot:      spot,
		FairValue: fair,
		Deviation: dev,
		Action:    Signal(spot, fair, p.Threshold),
	}, nil
}
