package dataset

import (
	"fmt"

	"github.com/dennisdiepolder/monti/kpiquery/internal/textnorm"
	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
)

// BuildOptions control how raw rows are turned into a table
type BuildOptions struct {
	// RequiredColumns must be present in the header, besides the identity columns
	RequiredColumns []string
	// MaxRows bounds the table size; zero means unbounded
	MaxRows int
}

// RawRows is tabular data as read from a source: a header and rows of cell text
type RawRows struct {
	Headers []string
	Rows    [][]string
}

// NormalizeHeader folds a source header to its column name ("Campaña" -> "CAMPANA")
func NormalizeHeader(h string) string {
	return textnorm.Upper(h)
}

// BuildTable cleans raw rows into records: names and campaigns are uppercased
// and accent-stripped, dates and times parsed, every other column read as a number.
func BuildTable(raw RawRows, opts BuildOptions) (*Table, error) {
	if opts.MaxRows > 0 && len(raw.Rows) > opts.MaxRows {
		return nil, fmt.Errorf("dataset has %d rows, limit is %d", len(raw.Rows), opts.MaxRows)
	}

	columns := make([]string, len(raw.Headers))
	index := make(map[string]int, len(raw.Headers))
	for i, h := range raw.Headers {
		col := NormalizeHeader(h)
		columns[i] = col
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}

	required := append([]string{types.ColAgentName, types.ColCampaign, types.ColDate}, opts.RequiredColumns...)
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %s", col)
		}
	}

	records := make([]types.Record, 0, len(raw.Rows))
	for n, row := range raw.Rows {
		rec, err := buildRecord(columns, index, row)
		if err != nil {
			// +2: one for the header, one for 1-based numbering
			return nil, fmt.Errorf("row %d: %w", n+2, err)
		}
		records = append(records, rec)
	}

	return NewTable(records), nil
}

func buildRecord(columns []string, index map[string]int, row []string) (types.Record, error) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	date, err := parseDate(cell(types.ColDate))
	if err != nil {
		return types.Record{}, err
	}

	rec := types.Record{
		AgentName: textnorm.Upper(cell(types.ColAgentName)),
		Campaign:  textnorm.Upper(cell(types.ColCampaign)),
		Date:      date,
		Values:    make(map[string]float64, len(columns)),
	}
	rec.Time, rec.HasTime = parseTimeOfDay(cell(types.ColTime))

	for i, col := range columns {
		switch col {
		case types.ColAgentName, types.ColCampaign, types.ColDate, types.ColTime:
			continue
		}
		// duplicated headers: the first occurrence wins
		if i >= len(row) || index[col] != i {
			continue
		}
		if v, ok := parseNumber(row[i]); ok {
			rec.Values[col] = v
		}
	}

	return rec, nil
}
