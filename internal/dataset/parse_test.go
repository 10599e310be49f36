package dataset

import (
	"testing"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
)

func TestParseDate(t *testing.T) {
	march1 := types.NewDate(2024, time.March, 1)

	tests := []struct {
		name    string
		cell    string
		want    time.Time
		wantErr bool
	}{
		{name: "iso date", cell: "2024-03-01", want: march1},
		{name: "iso datetime", cell: "2024-03-01 17:45:00", want: march1},
		{name: "iso T datetime", cell: "2024-03-01T08:00:00", want: march1},
		{name: "rfc3339", cell: "2024-03-01T23:59:59Z", want: march1},
		{name: "day first", cell: "01/03/2024", want: march1},
		{name: "day first no padding", cell: "1/3/2024", want: march1},
		{name: "excel serial", cell: "45352", want: march1},
		{name: "excel serial with time", cell: "45352.75", want: march1},
		{name: "surrounding spaces", cell: "  2024-03-01 ", want: march1},
		{name: "empty", cell: "", wantErr: true},
		{name: "text", cell: "ayer", wantErr: true},
		{name: "negative serial", cell: "-3", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.cell)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		cell   string
		want   types.TimeOfDay
		wantOK bool
	}{
		{"09:30", types.NewTimeOfDay(9, 30, 0), true},
		{"14:05:10", types.NewTimeOfDay(14, 5, 10), true},
		{"2024-03-01 10:15:00", types.NewTimeOfDay(10, 15, 0), true},
		{"9", types.NewTimeOfDay(9, 0, 0), true},
		{"0.5", types.NewTimeOfDay(12, 0, 0), true},
		{"0.75", types.NewTimeOfDay(18, 0, 0), true},
		{"24", 0, false},
		{"1.5", 0, false},
		{"", 0, false},
		{"tarde", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, ok := parseTimeOfDay(tt.cell)
			if ok != tt.wantOK {
				t.Fatalf("expected ok=%v, got %v", tt.wantOK, ok)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		cell   string
		want   float64
		wantOK bool
	}{
		{"5", 5, true},
		{" 12.5 ", 12.5, true},
		{"1,5", 1.5, true},
		{"-2", -2, true},
		{"1.234,5", 0, false},
		{"NaN", 0, false},
		{"", 0, false},
		{"cinco", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.cell, func(t *testing.T) {
			got, ok := parseNumber(tt.cell)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("parseNumber(%q) = %v, %v; want %v, %v", tt.cell, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
