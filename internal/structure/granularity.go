package structure

import (
	"fmt"
	"strings"

	"FXSentinel/internal/model"
)

// ConfigurationError reports a granularity or window the detector cannot run with.
type ConfigurationError struct {
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("structure: invalid granularity %q: %s", e.Value, e.Reason)
}

// windows maps each supported granularity to the number of bars compared on each side.
var windows = map[model.Timeframe]int{
	model.Daily:   5,
	model.Weekly:  4,
	model.Monthly: 3,
}

// ParseGranularity accepts "D"/"W"/"M" or "Daily"/"Weekly"/"Monthly", case-insensitive.
func ParseGranularity(s string) (model.Timeframe, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "d", "daily", "1d":
		return model.Daily, nil
	case "w", "weekly", "1w":
		return model.Weekly, nil
	case "m", "monthly", "1m":
		return model.Monthly, nil
	}
	return "", &ConfigurationError{Value: s, Reason: "expected Daily, Weekly or Monthly"}
}

// WindowSize returns the neighborhood size used for tf.
func WindowSize(tf model.Timeframe) (int, error) {
	w, ok := windows[tf]
	if !ok {
		return 0, &ConfigurationError{Value: string(tf), Reason: "unsupported timeframe"}
	}
	return w, nil
}
