package dataset

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Source loads a fresh table on every call
type Source interface {
	Load(ctx context.Context) (*Table, error)
	Name() string
}

// NewSource creates the source selected by configuration
func NewSource(ctx context.Context, cfg SourceConfig, opts BuildOptions, logger zerolog.Logger) (Source, error) {
	logger = logger.With().Str("component", "dataset").Logger()

	switch cfg.Kind {
	case SourceDynamo:
		return NewDynamoSource(ctx, cfg, opts, logger)
	case SourceSQLite:
		return NewSQLiteSource(cfg.SQLitePath, cfg.SQLiteTable, opts, logger), nil
	case SourceFile, "":
		return NewFileSource(cfg.FilePath, cfg.Sheet, opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Kind)
	}
}
