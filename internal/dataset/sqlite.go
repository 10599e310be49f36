package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// SQLiteSource reads every row of one table from a SQLite database
type SQLiteSource struct {
	path   string
	table  string
	opts   BuildOptions
	logger zerolog.Logger
}

// NewSQLiteSource creates a SQLite source
func NewSQLiteSource(path, table string, opts BuildOptions, logger zerolog.Logger) *SQLiteSource {
	return &SQLiteSource{path: path, table: table, opts: opts, logger: logger}
}

// Name implements Source
func (s *SQLiteSource) Name() string { return "sqlite:" + s.path + "/" + s.table }

// Load implements Source
func (s *SQLiteSource) Load(ctx context.Context) (*Table, error) {
	db, err := sql.Open("sqlite3", "file:"+s.path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", s.path, err)
	}
	defer db.Close()

	raw, err := queryRows(ctx, db, s.table, s.opts.MaxRows)
	if err != nil {
		return nil, err
	}

	table, err := BuildTable(raw, s.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build table from %s: %w", s.table, err)
	}

	s.logger.Info().
		Str("path", s.path).
		Str("table", s.table).
		Int("rows", table.Len()).
		Msg("SQLite table loaded")

	return table, nil
}

func queryRows(ctx context.Context, db *sql.DB, table string, maxRows int) (RawRows, error) {
	query := fmt.Sprintf(`SELECT * FROM "%s"`, strings.ReplaceAll(table, `"`, `""`))
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return RawRows{}, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	headers, err := rows.Columns()
	if err != nil {
		return RawRows{}, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}

	var data [][]string
	values := make([]interface{}, len(headers))
	ptrs := make([]interface{}, len(headers))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return RawRows{}, fmt.Errorf("failed to scan row: %w", err)
		}
		row := make([]string, len(headers))
		for i, v := range values {
			row[i] = cellString(v)
		}
		data = append(data, row)

		if maxRows > 0 && len(data) > maxRows {
			return RawRows{}, fmt.Errorf("dataset has more than %d rows", maxRows)
		}
	}
	if err := rows.Err(); err != nil {
		return RawRows{}, fmt.Errorf("failed to iterate %s: %w", table, err)
	}

	return RawRows{Headers: headers, Rows: data}, nil
}
