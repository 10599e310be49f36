package types

import (
	"fmt"
	"time"
)

// Column names shared by the loaders and the query engine
const (
	ColAgentName = "NOMBRES_BD"
	ColCampaign  = "CAMPANA"
	ColDate      = "FECHA"
	ColTime      = "HORA"

	ColPromises         = "Q_PDP"
	ColPhoneContacts    = "Q_CET"
	ColReferralContacts = "Q_CTR"
)

// DateLayout is the ISO layout used for dates in questions and answers
const DateLayout = "2006-01-02"

// TimeOfDay is a clock time expressed as seconds since midnight
type TimeOfDay int

// NewTimeOfDay builds a TimeOfDay from its clock components
func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay(hour*3600 + minute*60 + second)
}

// Hour returns the hour component
func (t TimeOfDay) Hour() int { return int(t) / 3600 }

// Minute returns the minute component
func (t TimeOfDay) Minute() int { return (int(t) % 3600) / 60 }

// Second returns the second component
func (t TimeOfDay) Second() int { return int(t) % 60 }

// String formats the time as HH:MM
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// Record is one row of the agent metrics table
type Record struct {
	AgentName string
	Campaign  string
	Date      time.Time
	Time      TimeOfDay
	HasTime   bool
	Values    map[string]float64
}

// Value returns a numeric column, zero when the cell was empty
func (r Record) Value(column string) float64 {
	return r.Values[column]
}

// NewDate returns a calendar date at UTC midnight
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// TruncateDate drops the clock part of t, keeping its calendar date
func TruncateDate(t time.Time) time.Time {
	return NewDate(t.Year(), t.Month(), t.Day())
}
