package datagen

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
	_ "github.com/mattn/go-sqlite3"
	"github.com/xuri/excelize/v2"
)

func cells(rec types.Record) []string {
	row := make([]string, len(Columns))
	for i, col := range Columns {
		switch col {
		case types.ColAgentName:
			row[i] = rec.AgentName
		case types.ColCampaign:
			row[i] = rec.Campaign
		case types.ColDate:
			row[i] = rec.Date.Format(types.DateLayout)
		case types.ColTime:
			if rec.HasTime {
				row[i] = rec.Time.String()
			}
		default:
			row[i] = strconv.FormatFloat(rec.Value(col), 'f', -1, 64)
		}
	}
	return row
}

// WriteCSV writes the header and one line per record
func WriteCSV(w io.Writer, records []types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(cells(rec)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes the records to the first sheet of a new workbook.
// Durations are stored as day fractions with a [h]:mm:ss format.
func WriteXLSX(path string, records []types.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("failed to open stream writer: %w", err)
	}

	durationFmt := "[h]:mm:ss"
	durationStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &durationFmt})
	if err != nil {
		return fmt.Errorf("failed to create duration style: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for n, rec := range records {
		row := make([]interface{}, len(Columns))
		for i, col := range Columns {
			switch col {
			case types.ColAgentName:
				row[i] = rec.AgentName
			case types.ColCampaign:
				row[i] = rec.Campaign
			case types.ColDate:
				row[i] = rec.Date.Format(types.DateLayout)
			case types.ColTime:
				if rec.HasTime {
					row[i] = rec.Time.String()
				}
			default:
				if strings.HasPrefix(col, "T_") {
					row[i] = excelize.Cell{StyleID: durationStyle, Value: rec.Value(col)}
				} else {
					row[i] = rec.Value(col)
				}
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, n+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", n+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush workbook: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

// WriteSQLite creates or replaces table in the database at path and inserts
// the records in one transaction
func WriteSQLite(ctx context.Context, path, table string, records []types.Record) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer db.Close()

	quoted := `"` + strings.ReplaceAll(table, `"`, `""`) + `"`
	defs := make([]string, len(Columns))
	marks := make([]string, len(Columns))
	for i, col := range Columns {
		kind := "REAL"
		switch col {
		case types.ColAgentName, types.ColCampaign, types.ColDate, types.ColTime:
			kind = "TEXT"
		}
		defs[i] = col + " " + kind
		marks[i] = "?"
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		"DROP TABLE IF EXISTS " + quoted,
		fmt.Sprintf("CREATE TABLE %s (%s)", quoted, strings.Join(defs, ", ")),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare table %s: %w", table, err)
		}
	}

	insert, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoted, strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer insert.Close()

	for _, rec := range records {
		row := cells(rec)
		args := make([]interface{}, len(row))
		for i, v := range row {
			args[i] = v
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	return tx.Commit()
}
