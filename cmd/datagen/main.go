package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/datagen"
	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	defaults := datagen.DefaultOptions()

	var (
		output    = flag.String("out", "ejemplo.xlsx", "Output file (.csv, .xlsx or .db)")
		table     = flag.String("table", "metricas", "Table name for .db output")
		agents    = flag.Int("agents", defaults.Agents, "Number of agents")
		days      = flag.Int("days", defaults.Days, "Number of days")
		start     = flag.String("start", defaults.Start.Format(types.DateLayout), "First day (YYYY-MM-DD)")
		firstHour = flag.Int("first-hour", defaults.FirstHour, "First working hour")
		lastHour  = flag.Int("last-hour", defaults.LastHour, "Last working hour")
		seed      = flag.Int64("seed", time.Now().UnixNano(), "Random seed")
		logLevel  = flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	)
	flag.Parse()

	level, err := zerolog.ParseLevel(*logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Str("service", "datagen").
		Logger()

	startDate, err := time.Parse(types.DateLayout, *start)
	if err != nil {
		logger.Fatal().Err(err).Str("start", *start).Msg("invalid start date")
	}

	opts := defaults
	opts.Agents = *agents
	opts.Days = *days
	opts.Start = startDate
	opts.FirstHour = *firstHour
	opts.LastHour = *lastHour

	records, err := datagen.NewGenerator(*seed).Generate(opts)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to generate dataset")
	}
	logger.Info().Int("rows", len(records)).Int("agents", opts.Agents).Int64("seed", *seed).Msg("dataset generated")

	if err := write(*output, *table, records); err != nil {
		logger.Fatal().Err(err).Str("out", *output).Msg("failed to write dataset")
	}
	logger.Info().Str("out", *output).Msg("dataset written")
}

func write(path, table string, records []types.Record) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := datagen.WriteCSV(f, records); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".xlsx":
		return datagen.WriteXLSX(path, records)
	case ".db", ".sqlite":
		return datagen.WriteSQLite(context.Background(), path, table, records)
	default:
		return fmt.Errorf("unsupported output %s", path)
	}
}
