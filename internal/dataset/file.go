package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// FileSource reads a .xlsx workbook or a .csv file from disk
type FileSource struct {
	path   string
	sheet  string
	opts   BuildOptions
	logger zerolog.Logger
}

// NewFileSource creates a file source. An empty sheet means the first one.
func NewFileSource(path, sheet string, opts BuildOptions, logger zerolog.Logger) *FileSource {
	return &FileSource{path: path, sheet: sheet, opts: opts, logger: logger}
}

// Name implements Source
func (s *FileSource) Name() string { return "file:" + s.path }

// Load implements Source
func (s *FileSource) Load(_ context.Context) (*Table, error) {
	var (
		raw RawRows
		err error
	)

	switch strings.ToLower(filepath.Ext(s.path)) {
	case ".csv":
		raw, err = readCSVFile(s.path)
	case ".xlsx", ".xlsm":
		raw, err = readWorkbook(s.path, s.sheet)
	default:
		return nil, fmt.Errorf("unsupported data file %s", s.path)
	}
	if err != nil {
		return nil, err
	}

	table, err := BuildTable(raw, s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build table from %s: %w", s.path, err)
	}

	s.logger.Info().
		Str("path", s.path).
		Int("rows", table.Len()).
		Int("agents", len(table.Agents())).
		Msg("data file loaded")

	return table, nil
}

func readCSVFile(path string) (RawRows, error) {
	f, err := os.Open(path)
	if err != nil {
		return RawRows{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// ReadCSV reads a header line followed by data rows
func ReadCSV(r io.Reader) (RawRows, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return RawRows{}, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	// drop a UTF-8 BOM written by spreadsheet exports
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return RawRows{}, fmt.Errorf("failed to read CSV row: %w", err)
		}
		if isBlank(row) {
			continue
		}
		rows = append(rows, row)
	}

	return RawRows{Headers: headers, Rows: rows}, nil
}

func readWorkbook(path, sheet string) (RawRows, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return RawRows{}, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return RawRows{}, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	// raw values keep dates as serial numbers and times as day fractions
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return RawRows{}, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return RawRows{}, fmt.Errorf("sheet %s is empty", sheet)
	}

	data := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		data = append(data, row)
	}

	return RawRows{Headers: rows[0], Rows: data}, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
