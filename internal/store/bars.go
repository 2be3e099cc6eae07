package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"FXSentinel/internal/model"
)

// errBlank marks an empty or "." numeric field.
var errBlank = errors.New("blank value")

var barHeader = []string{"time", "open", "high", "low", "close", "volume"}

// BarsPath returns raw/<category>/<SYMBOL>/<tf>.csv under dir.
func BarsPath(dir, category, symbol string, tf model.Timeframe) string {
	return filepath.Join(dir, "raw", category, strings.ToUpper(symbol), string(tf)+".csv")
}

// SaveBars writes bars to path, creating parent directories as needed.
func SaveBars(path string, bars []model.OHLCV) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(barHeader); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Time.UTC().Format(time.RFC3339),
			formatF(b.Open), formatF(b.High), formatF(b.Low), formatF(b.Close), formatF(b.Volume),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// LoadBars reads a file written by SaveBars. Columns are matched by header
// name, so extra columns are ignored. Rows with a blank open, high, low or
// close are skipped; a blank volume reads as 0. Rows come back sorted by time.
func LoadBars(path string) ([]model.OHLCV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: empty file", path)
		}
		return nil, err
	}
	cols, err := columnIndex(header, barHeader[:5]...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	volCol := -1
	if i, ok := lookup(header, "volume"); ok {
		volCol = i
	}

	var bars []model.OHLCV
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		t, err := parseTime(rec[cols[0]])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		var vals [4]float64
		blank := false
		for k := range vals {
			vals[k], err = parseF(rec[cols[k+1]])
			if errors.Is(err, errBlank) {
				blank = true
				break
			}
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %s: %w", path, line, barHeader[k+1], err)
			}
		}
		if blank {
			logrus.WithFields(logrus.Fields{"path": path, "line": line}).Debug("bars: blank price, row skipped")
			continue
		}
		b := model.OHLCV{Time: t, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]}
		if volCol >= 0 {
			b.Volume, _ = parseF(rec[volCol])
		}
		bars = append(bars, b)
	}
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05-07:00", "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func parseF(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." {
		return 0, errBlank
	}
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func lookup(header []string, name string) (int, bool) {
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), name) {
			return i, true
		}
	}
	return -1, false
}

func columnIndex(header []string, names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for k, n := range names {
		i, ok := lookup(header, n)
		if !ok {
			return nil, fmt.Errorf("missing column %q", n)
		}
		idx[k] = i
	}
	return idx, nil
}
