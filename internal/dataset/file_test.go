package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV(t *testing.T) {
	data := "\ufeffNOMBRES_BD,CAMPANA,FECHA,Q_LLA\n" +
		"Juan Perez,WOW PREVENTIVA,2024-03-01,5\n" +
		",,,\n" +
		"Ana Diaz,WOW COBRANZAS,2024-03-02\n"

	raw, err := ReadCSV(strings.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw.Headers[0] != "NOMBRES_BD" {
		t.Errorf("expected BOM to be stripped, got %q", raw.Headers[0])
	}
	if len(raw.Rows) != 2 {
		t.Fatalf("expected blank row to be skipped, got %d rows", len(raw.Rows))
	}
	if len(raw.Rows[1]) != 3 {
		t.Errorf("expected ragged row to be kept as is, got %v", raw.Rows[1])
	}
}

func TestFileSourceCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metricas.csv")
	data := "Nombres_BD,Campaña,Fecha,Hora,Q_LLA\n" +
		"Juan Pérez,wow preventiva,01/03/2024,10:00,5\n" +
		"Juan Pérez,wow preventiva,02/03/2024,,7\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewFileSource(path, "", BuildOptions{RequiredColumns: []string{"Q_LLA"}}, zerolog.Nop())
	table, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if len(table.Agents()) != 1 || table.Agents()[0].Name != "JUAN PEREZ" {
		t.Errorf("unexpected agents %+v", table.Agents())
	}
	if table.Records()[1].HasTime {
		t.Error("expected empty HORA to leave time unknown")
	}
	if src.Name() != "file:"+path {
		t.Errorf("unexpected name %s", src.Name())
	}
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	rows := [][]interface{}{
		{"NOMBRES_BD", "CAMPANA", "FECHA", "HORA", "Q_LLA", "T_HABLADO"},
		{"Juan Perez", "WOW PREVENTIVA", 45352, 0.5, 5, 0.75},
		{"Maria Lopez", "WOW COBRANZAS", "2024-03-02", "09:15", 3, 0.25},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := f.NewSheet("Resumen"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Resumen", "A1", &[]interface{}{"NOMBRES_BD", "CAMPANA", "FECHA"}); err != nil {
		t.Fatal(err)
	}
	if err := f.SetSheetRow("Resumen", "A2", &[]interface{}{"Ana Diaz", "WOW COBRANZAS", "2024-01-15"}); err != nil {
		t.Fatal(err)
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
}

func TestFileSourceWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ejemplo.xlsx")
	writeWorkbook(t, path)

	table, err := NewFileSource(path, "", BuildOptions{}, zerolog.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows from the first sheet, got %d", table.Len())
	}

	first := table.Records()[0]
	if !first.Date.Equal(types.NewDate(2024, time.March, 1)) {
		t.Errorf("expected serial 45352 to be 2024-03-01, got %v", first.Date)
	}
	if !first.HasTime || first.Time != types.NewTimeOfDay(12, 0, 0) {
		t.Errorf("expected 12:00 from day fraction, got %v", first.Time)
	}
	if first.Value("T_HABLADO") != 0.75 || first.Value("Q_LLA") != 5 {
		t.Errorf("unexpected values %v", first.Values)
	}

	second := table.Records()[1]
	if second.Time != types.NewTimeOfDay(9, 15, 0) {
		t.Errorf("expected 09:15, got %v", second.Time)
	}

	summary, err := NewFileSource(path, "Resumen", BuildOptions{}, zerolog.Nop()).Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Len() != 1 || summary.Records()[0].AgentName != "ANA DIAZ" {
		t.Errorf("expected the named sheet to be read, got %+v", summary.Records())
	}
}

func TestFileSourceErrors(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "datos.txt")
	if err := os.WriteFile(txt, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := map[string]*FileSource{
		"unsupported extension": NewFileSource(txt, "", BuildOptions{}, zerolog.Nop()),
		"missing csv":           NewFileSource(filepath.Join(dir, "nada.csv"), "", BuildOptions{}, zerolog.Nop()),
		"missing workbook":      NewFileSource(filepath.Join(dir, "nada.xlsx"), "", BuildOptions{}, zerolog.Nop()),
	}

	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := src.Load(context.Background()); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
