package query

import (
	"fmt"
	"math"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
)

// SumColumn adds up one column over the rows
func SumColumn(records []types.Record, column string) float64 {
	var total float64
	for _, rec := range records {
		total += rec.Value(column)
	}
	return total
}

// FormatDuration renders a fraction of a day as HH:MM:SS. Hours carry past
// 24, so 1.5 renders as 36:00:00.
func FormatDuration(fraction float64) string {
	// round to the microsecond first, then drop the sub-second part
	micros := int64(math.Round(fraction * 86400 * 1e6))
	secs := micros / 1e6
	if secs < 0 {
		secs = 0
	}
	hours := secs / 3600
	minutes := (secs % 3600) / 60
	seconds := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}

// FormatCount renders a counter total, truncated toward zero
func FormatCount(total float64) string {
	return fmt.Sprintf("%d", int64(total))
}

// ClosureRate holds the three totals behind the closure percentage
type ClosureRate struct {
	Promises         float64
	PhoneContacts    float64
	ReferralContacts float64
}

// ComputeClosureRate sums the closure-rate inputs over the rows
func ComputeClosureRate(records []types.Record) ClosureRate {
	return ClosureRate{
		Promises:         SumColumn(records, types.ColPromises),
		PhoneContacts:    SumColumn(records, types.ColPhoneContacts),
		ReferralContacts: SumColumn(records, types.ColReferralContacts),
	}
}

// Percent returns promises over effective contacts times 100. It reports
// false when there are no effective contacts.
func (c ClosureRate) Percent() (float64, bool) {
	denominator := c.PhoneContacts + c.ReferralContacts
	if denominator == 0 {
		return 0, false
	}
	return c.Promises / denominator * 100, true
}

// FormatPercent renders a percentage with two decimals
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}
