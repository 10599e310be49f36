package dataset

import (
	"strings"
	"testing"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
)

func TestBuildTableCleansRows(t *testing.T) {
	raw := RawRows{
		Headers: []string{"Nombres_BD", "Campaña", " Fecha ", "Hora", "Q_LLA", "T_HABLADO", "Observación"},
		Rows: [][]string{
			{" Juan Pérez ", "wow preventiva", "2024-03-01", "09:30", "5", "0,5", "llamar luego"},
			{"María López", "Wow Cobranzas", "45352"},
		},
	}

	table, err := BuildTable(raw, BuildOptions{RequiredColumns: []string{"Q_LLA"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}

	first := table.Records()[0]
	if first.AgentName != "JUAN PEREZ" {
		t.Errorf("expected JUAN PEREZ, got %q", first.AgentName)
	}
	if first.Campaign != "WOW PREVENTIVA" {
		t.Errorf("expected WOW PREVENTIVA, got %q", first.Campaign)
	}
	if !first.Date.Equal(types.NewDate(2024, time.March, 1)) {
		t.Errorf("unexpected date %v", first.Date)
	}
	if !first.HasTime || first.Time != types.NewTimeOfDay(9, 30, 0) {
		t.Errorf("expected time 09:30, got %v (known=%v)", first.Time, first.HasTime)
	}
	if first.Value("Q_LLA") != 5 || first.Value("T_HABLADO") != 0.5 {
		t.Errorf("unexpected values %v", first.Values)
	}
	if _, ok := first.Values["OBSERVACION"]; ok {
		t.Error("non-numeric cell should not be stored")
	}

	second := table.Records()[1]
	if second.AgentName != "MARIA LOPEZ" || second.HasTime {
		t.Errorf("unexpected short row %+v", second)
	}
	if !second.Date.Equal(types.NewDate(2024, time.March, 1)) {
		t.Errorf("expected serial date to parse, got %v", second.Date)
	}
	if second.Value("Q_LLA") != 0 {
		t.Errorf("missing cell should read as zero, got %v", second.Value("Q_LLA"))
	}

	agents := table.Agents()
	if len(agents) != 2 || agents[0].Name != "JUAN PEREZ" || agents[0].Key != "juan perez" {
		t.Errorf("unexpected agents %+v", agents)
	}
}

func TestBuildTableDuplicateHeaderFirstWins(t *testing.T) {
	raw := RawRows{
		Headers: []string{"NOMBRES_BD", "CAMPANA", "FECHA", "Q_LLA", "q_lla"},
		Rows:    [][]string{{"ANA", "X", "2024-03-01", "3", "99"}},
	}

	table, err := BuildTable(raw, BuildOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Records()[0].Value("Q_LLA"); got != 3 {
		t.Errorf("expected first Q_LLA column, got %v", got)
	}
}

func TestBuildTableErrors(t *testing.T) {
	headers := []string{"NOMBRES_BD", "CAMPANA", "FECHA", "Q_LLA"}

	tests := []struct {
		name    string
		raw     RawRows
		opts    BuildOptions
		wantErr string
	}{
		{
			name:    "missing identity column",
			raw:     RawRows{Headers: []string{"NOMBRES_BD", "FECHA"}},
			wantErr: "CAMPANA",
		},
		{
			name:    "missing vocabulary column",
			raw:     RawRows{Headers: headers},
			opts:    BuildOptions{RequiredColumns: []string{"T_HABLADO"}},
			wantErr: "T_HABLADO",
		},
		{
			name: "bad date",
			raw: RawRows{Headers: headers, Rows: [][]string{
				{"ANA", "X", "2024-03-01", "1"},
				{"ANA", "X", "pronto", "1"},
			}},
			wantErr: "row 3",
		},
		{
			name: "too many rows",
			raw: RawRows{Headers: headers, Rows: [][]string{
				{"ANA", "X", "2024-03-01", "1"},
				{"ANA", "X", "2024-03-02", "1"},
			}},
			opts:    BuildOptions{MaxRows: 1},
			wantErr: "limit is 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildTable(tt.raw, tt.opts)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestHolderSwap(t *testing.T) {
	first := NewTable(nil)
	h := NewHolder(first)
	if h.Current() != first {
		t.Fatal("expected initial table")
	}

	second := NewTable([]types.Record{{AgentName: "ANA"}})
	if prev := h.Swap(second); prev != first {
		t.Error("expected Swap to return the previous table")
	}
	if h.Current() != second {
		t.Error("expected swapped table to be current")
	}
}
