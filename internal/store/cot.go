package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"FXSentinel/internal/model"
)

// Column names of the CFTC legacy futures-only report.
const (
	colMarket      = "Market and Exchange Names"
	colDate        = "As of Date in Form YYYY-MM-DD"
	colCommLong    = "Commercial Positions-Long (All)"
	colCommShort   = "Commercial Positions-Short (All)"
	colNonCommLong = "Noncommercial Positions-Long (All)"
	colNonCommShrt = "Noncommercial Positions-Short (All)"
	colRetailLong  = "Nonreportable Positions-Long (All)"
	colRetailShort = "Nonreportable Positions-Short (All)"
	colOpenInt     = "Open Interest (All)"
)

var legacyColumns = []string{
	colMarket, colDate,
	colCommLong, colCommShort,
	colNonCommLong, colNonCommShrt,
	colRetailLong, colRetailShort,
	colOpenInt,
}

// LoadLegacyCOT parses a CFTC legacy futures CSV. Rows with an unparseable
// date are logged and skipped.
func LoadLegacyCOT(path string) ([]model.COTRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadLegacyCOT(f)
}

// ReadLegacyCOT is LoadLegacyCOT over an arbitrary reader.
func ReadLegacyCOT(src io.Reader) ([]model.COTRecord, error) {
	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read cot header: %w", err)
	}
	cols, err := columnIndex(header, legacyColumns...)
	if err != nil {
		return nil, fmt.Errorf("cot: %w", err)
	}
	maxCol := 0
	for _, c := range cols {
		maxCol = max(maxCol, c)
	}

	var out []model.COTRecord
	for line := 2; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cot line %d: %w", line, err)
		}
		if len(rec) <= maxCol {
			logrus.WithField("line", line).Warn("cot: short row skipped")
			continue
		}
		date, err := parseTime(rec[cols[1]])
		if err != nil {
			logrus.WithField("line", line).WithError(err).Warn("cot: bad date, row skipped")
			continue
		}
		var nums [7]float64
		blank := false
		for k := range nums {
			nums[k], err = parseF(rec[cols[k+2]])
			if errors.Is(err, errBlank) {
				blank = true
				break
			}
			if err != nil {
				return nil, fmt.Errorf("cot line %d: %s: %w", line, legacyColumns[k+2], err)
			}
		}
		if blank {
			logrus.WithField("line", line).Warn("cot: blank position, row skipped")
			continue
		}
		out = append(out, model.COTRecord{
			Market:             rec[cols[0]],
			Date:               date,
			CommercialLong:     nums[0],
			CommercialShort:    nums[1],
			NoncommercialLong:  nums[2],
			NoncommercialShort: nums[3],
			RetailLong:         nums[4],
			RetailShort:        nums[5],
			OpenInterest:       nums[6],
		})
	}
	return out, nil
}
