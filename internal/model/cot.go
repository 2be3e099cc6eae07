package model

import "time"

// COTRecord is one row of the CFTC legacy futures-only report.
type COTRecord struct {
	Market             string
	Date               time.Time
	CommercialLong     float64
	CommercialShort    float64
	NoncommercialLong  float64
	NoncommercialShort float64
	RetailLong         float64 // nonreportable positions
	RetailShort        float64
	OpenInterest       float64
}

// COTWeek is the weekly positioning index for each trader group (0~100, NaN when flat).
type COTWeek struct {
	Date            time.Time
	NetCommercial   float64
	NetLarge        float64
	NetRetail       float64
	CommercialIndex float64
	LargeIndex      float64
	RetailIndex     float64
}
