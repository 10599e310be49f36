package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/metrics"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Reloader periodically loads a fresh table and swaps it into the holder.
// A failed load keeps the table already in service.
type Reloader struct {
	source  Source
	holder  *Holder
	timeout time.Duration
	cron    *cron.Cron
	logger  zerolog.Logger

	onReload []func(*Table)
}

// NewReloader creates a reloader for the given source and holder
func NewReloader(source Source, holder *Holder, logger zerolog.Logger) *Reloader {
	return &Reloader{
		source:  source,
		holder:  holder,
		timeout: 5 * time.Minute,
		logger:  logger.With().Str("component", "reloader").Logger(),
	}
}

// OnReload registers fn to run after every successful reload. Hooks must
// be registered before Start.
func (r *Reloader) OnReload(fn func(*Table)) {
	r.onReload = append(r.onReload, fn)
}

// Reload loads the source once and publishes the result
func (r *Reloader) Reload(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	table, err := r.source.Load(ctx)
	if err != nil {
		metrics.RecordReload(err, 0)
		r.logger.Error().Err(err).Str("source", r.source.Name()).Msg("table reload failed, keeping current table")
		return fmt.Errorf("reload %s: %w", r.source.Name(), err)
	}

	previous := r.holder.Swap(table)
	metrics.RecordReload(nil, table.Len())

	prevRows := 0
	if previous != nil {
		prevRows = previous.Len()
	}
	r.logger.Info().
		Str("source", r.source.Name()).
		Int("rows", table.Len()).
		Int("previous_rows", prevRows).
		Dur("duration", time.Since(start)).
		Msg("table reloaded")

	for _, fn := range r.onReload {
		fn(table)
	}
	return nil
}

// Start schedules reloads with a cron spec such as "@every 10m" or "0 * * * *"
func (r *Reloader) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		_ = r.Reload(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid reload schedule %q: %w", schedule, err)
	}

	r.cron = c
	c.Start()
	r.logger.Info().Str("schedule", schedule).Msg("table reloads scheduled")
	return nil
}

// Stop halts scheduled reloads and waits for a running one to finish
func (r *Reloader) Stop() {
	if r.cron == nil {
		return
	}
	<-r.cron.Stop().Done()
}
