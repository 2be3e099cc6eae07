package model

import "time"

// SentinelState is the persisted bookkeeping of the daemon between restarts.
type SentinelState struct {
	Category    string    `json:"category"`
	LastRefresh time.Time `json:"last_refresh"`
	Loaded      []string  `json:"loaded"`
	Failed      []string  `json:"failed"`
	LastReport  time.Time `json:"last_report"`
	LastRunID   string    `json:"last_run_id"`
	ReportsSent int       `json:"reports_sent"`
	UpdatedAt   time.Time `json:"updated_at"`
}
