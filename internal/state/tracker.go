package state

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"FXSentinel/internal/model"
)

// Tracker records refresh and report outcomes with concurrency safety.
type Tracker struct {
	mu       sync.Mutex
	state    *model.SentinelState
	filePath string
}

// NewTracker loads or initializes state from disk.
func NewTracker(filePath string) (*Tracker, error) {
	st, err := Load(filePath)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return &Tracker{state: st, filePath: filePath}, nil
}

// Get returns a copy of the current state.
func (t *Tracker) Get() model.SentinelState {
	t.mu.Lock()
	defer t.mu.Unlock()
	st := *t.state
	st.Loaded = append([]string(nil), t.state.Loaded...)
	st.Failed = append([]string(nil), t.state.Failed...)
	return st
}

// MarkRefresh stores the outcome of a data refresh.
func (t *Tracker) MarkRefresh(category string, at time.Time, loaded, failed []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.Category = category
	t.state.LastRefresh = at
	t.state.Loaded = sortedCopy(loaded)
	t.state.Failed = sortedCopy(failed)
	t.save()
}

// MarkReport stores the id of the last recorded report and whether it was sent.
func (t *Tracker) MarkReport(runID string, at time.Time, sent bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state.LastRunID = runID
	t.state.LastReport = at
	if sent {
		t.state.ReportsSent++
	}
	t.save()
}

// Format renders the state for display.
func Format(st model.SentinelState) string {
	var b strings.Builder
	b.WriteString("📦 <b>Status</b>\n\n")
	b.WriteString(fmt.Sprintf("Category: %s\n", orDash(st.Category)))
	b.WriteString(fmt.Sprintf("Last refresh: %s (%d loaded, %d failed)\n", stamp(st.LastRefresh), len(st.Loaded), len(st.Failed)))
	if len(st.Failed) > 0 {
		b.WriteString(fmt.Sprintf("Failed: %s\n", strings.Join(st.Failed, ", ")))
	}
	b.WriteString(fmt.Sprintf("Last report: %s\n", stamp(st.LastReport)))
	b.WriteString(fmt.Sprintf("Last run: %s\n", orDash(st.LastRunID)))
	b.WriteString(fmt.Sprintf("Reports sent: %d\n", st.ReportsSent))
	return b.String()
}

func (t *Tracker) save() {
	if t.filePath == "" {
		return
	}
	if err := Save(t.filePath, t.state); err != nil {
		logrus.WithError(err).WithField("path", t.filePath).Error("save state failed")
	}
}

func sortedCopy(xs []string) []string {
	out := append([]string(nil), xs...)
	sort.Strings(out)
	return out
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
