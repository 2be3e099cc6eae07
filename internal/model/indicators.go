package model

import "time"

// MATrend is the moving-average alignment of the last complete period.
type MATrend struct {
	Trend   Trend
	Date    time.Time
	Periods [3]int // fast, mid, slow
	Fast    float64
	Mid     float64
	Slow    float64
}

// COTTrend is the most recent extreme positioning week.
type COTTrend struct {
	Trend      Trend
	Date       time.Time
	Commercial float64
	Retail     float64
}

// SeasonalTrend is the average return of the current calendar month over a lookback.
type SeasonalTrend struct {
	Label   string // e.g. "Last 5 Years"
	Years   int
	Month   time.Month
	Average float64 // percent
	HasData bool
	Trend   Trend
}
