package strategy

import (
	"reflect"
	"testing"

	"FXSentinel/internal/model"
)

func TestToUSD(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		rate  model.FXRate
		want  float64
	}{
		{"usd quoted multiplies", 100, model.FXRate{Pair: "EURUSD", Rate: 1.1, USDQuote: true}, 110},
		{"usd based divides", 1500, model.FXRate{Pair: "USDJPY", Rate: 150}, 10},
		{"zero rate unchanged", 42, model.FXRate{Pair: "USDCHF"}, 42},
	}
	for _, tt := range tests {
		if got := ToUSD(tt.value, tt.rate); !near(got, tt.want) {
			t.Errorf("%s: ToUSD(%v) = %v, want %v", tt.name, tt.value, got, tt.want)
		}
	}
}

func TestEconomiesToUSD(t *testing.T) {
	economies := map[string]map[string]float64{
		"JP": {"Money_Supply": 1500, "Trade_Balance": -300, "GDP_Growth": 1.2},
		"EU": {"Money_Supply": 100},
		"US": {"Money_Supply": 2000, "Trade_Balance": -70},
		"CH": {"Trade_Balance": 5},
		"GB": {"Interest_Rate": 5.25},
	}
	rates := map[string]model.FXRate{
		"JP": {Pair: "USDJPY", Rate: 150},
		"EU": {Pair: "EURUSD", Rate: 1.1, USDQuote: true},
		"GB": {Pair: "GBPUSD", Rate: 1.27, USDQuote: true},
	}

	got, missing := EconomiesToUSD(economies, rates)

	tests := []struct {
		country, factor string
		want            float64
	}{
		{"JP", "Money_Supply", 10},
		{"JP", "Trade_Balance", -2},
		{"JP", "GDP_Growth", 1.2},
		{"EU", "Money_Supply", 110},
		{"US", "Money_Supply", 2000},
		{"US", "Trade_Balance", -70},
		{"CH", "Trade_Balance", 5},
		{"GB", "Interest_Rate", 5.25},
	}
	for _, tt := range tests {
		if v := got[tt.country][tt.factor]; !near(v, tt.want) {
			t.Errorf("%s %s = %v, want %v", tt.country, tt.factor, v, tt.want)
		}
	}
	if !reflect.DeepEqual(missing, []string{"CH"}) {
		t.Errorf("missing = %v, want [CH]", missing)
	}
	if economies["JP"]["Money_Supply"] != 1500 {
		t.Error("input economies must not be modified")
	}
}
