package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
	"github.com/xuri/excelize/v2"
)

var dateLayouts = []string{
	types.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"02/01/2006",
	"2/1/2006",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// parseDate accepts ISO dates and datetimes, DD/MM/YYYY and Excel serial numbers
func parseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return types.TruncateDate(t), nil
		}
	}

	if serial, err := strconv.ParseFloat(cell, 64); err == nil && serial > 0 {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid excel date %q: %w", cell, err)
		}
		return types.TruncateDate(t), nil
	}

	return time.Time{}, fmt.Errorf("unrecognized date %q", cell)
}

// parseTimeOfDay reports false for empty or unparseable cells; those rows
// have an unknown time.
func parseTimeOfDay(cell string) (types.TimeOfDay, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}

	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return types.NewTimeOfDay(t.Hour(), t.Minute(), t.Second()), true
		}
	}

	// whole hour, e.g. "9" or "14"
	if h, err := strconv.Atoi(cell); err == nil {
		if h < 0 || h > 23 {
			return 0, false
		}
		return types.NewTimeOfDay(h, 0, 0), true
	}

	// fraction of a day, as stored by spreadsheets
	if f, err := strconv.ParseFloat(cell, 64); err == nil {
		if f < 0 || f >= 1 {
			return 0, false
		}
		secs := int(math.Round(f * 86400))
		if secs >= 86400 {
			secs = 86399
		}
		return types.TimeOfDay(secs), true
	}

	return 0, false
}

// parseNumber returns false for empty or non-numeric cells
func parseNumber(cell string) (float64, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 0, false
	}
	if !strings.Contains(cell, ".") {
		cell = strings.Replace(cell, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(cell, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
