package query

import (
	"sort"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
)

// Filter returns the rows matching every date, time and campaign criterion.
// With no such criteria the input slice is returned as is. The agent is not
// applied here; see FilterAgent.
//
// One date or time compares for equality. Two or more are sorted and the
// first two define an inclusive range; the rest are ignored. Any time
// criterion drops rows whose time is unknown.
func Filter(records []types.Record, c Criteria) []types.Record {
	if !c.HasGlobal() {
		return records
	}

	dateFrom, dateTo, byDate := dateBounds(c.Dates)
	timeFrom, timeTo, byTime := timeBounds(c.Times)

	out := make([]types.Record, 0, len(records))
	for _, rec := range records {
		if byDate && (rec.Date.Before(dateFrom) || rec.Date.After(dateTo)) {
			continue
		}
		if byTime && (!rec.HasTime || rec.Time < timeFrom || rec.Time > timeTo) {
			continue
		}
		if c.Campaign != "" && rec.Campaign != c.Campaign {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FilterAgent keeps the rows of one agent; an empty name keeps everything
func FilterAgent(records []types.Record, agent string) []types.Record {
	if agent == "" {
		return records
	}
	out := make([]types.Record, 0)
	for _, rec := range records {
		if rec.AgentName == agent {
			out = append(out, rec)
		}
	}
	return out
}

// dateBounds turns extracted dates into an inclusive [from, to] window
func dateBounds(dates []time.Time) (time.Time, time.Time, bool) {
	switch len(dates) {
	case 0:
		return time.Time{}, time.Time{}, false
	case 1:
		return dates[0], dates[0], true
	}
	sorted := append([]time.Time(nil), dates...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return sorted[0], sorted[1], true
}

// timeBounds turns extracted times into an inclusive [from, to] window
func timeBounds(times []types.TimeOfDay) (types.TimeOfDay, types.TimeOfDay, bool) {
	switch len(times) {
	case 0:
		return 0, 0, false
	case 1:
		return times[0], times[0], true
	}
	sorted := append([]types.TimeOfDay(nil), times...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted[0], sorted[1], true
}
