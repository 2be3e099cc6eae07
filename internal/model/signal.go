package model

// Trend is a directional classification shared by all calculators.
type Trend string

const (
	Uptrend       Trend = "Uptrend"
	Downtrend     Trend = "Downtrend"
	Sideways      Trend = "Sideways"
	Divergence    Trend = "Divergence"
	Indeterminate Trend = "Indeterminate"
	Unknown       Trend = "Unknown"
)

// Action is the macro valuation trade signal.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// FactorScore represents a single macro factor's scoring result.
type FactorScore struct {
	Name     string
	RawScore float64
	Weight   float64
	Weighted float64
}

// MacroSignal is the fair-value verdict for one currency pair.
type MacroSignal struct {
	Domestic  string
	Foreign   string
	Factors   []FactorScore // domestic minus foreign, per factor
	ScoreDiff float64
	Spot      float64
	FairValue float64
	Deviation float64
	Action    Action
}
