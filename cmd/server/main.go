package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/api"
	"github.com/dennisdiepolder/monti/kpiquery/internal/auth"
	"github.com/dennisdiepolder/monti/kpiquery/internal/config"
	"github.com/dennisdiepolder/monti/kpiquery/internal/dataset"
	"github.com/dennisdiepolder/monti/kpiquery/internal/metrics"
	"github.com/dennisdiepolder/monti/kpiquery/internal/query"
	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
	"github.com/dennisdiepolder/monti/kpiquery/internal/websocket"
	"github.com/dennisdiepolder/monti/kpiquery/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// services are the components the router serves
type services struct {
	cfg       *config.Config
	responder *query.Responder
	datasets  *api.DatasetHandler
	hub       *websocket.Hub
	authn     *auth.Authenticator
	logger    zerolog.Logger
}

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Str("data_source", string(cfg.Source.Kind)).
		Bool("auth_enabled", cfg.AuthEnabled).
		Msg("starting KPI query server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vocab := query.DefaultVocabulary()
	if cfg.VocabularyFile != "" {
		vocab, err = query.LoadVocabulary(cfg.VocabularyFile)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load vocabulary")
		}
		log.Info().Str("path", cfg.VocabularyFile).Int("metrics", len(vocab.Metrics)).Msg("vocabulary loaded")
	}

	opts := dataset.BuildOptions{RequiredColumns: vocab.Columns(), MaxRows: cfg.MaxRows}
	source, err := dataset.NewSource(ctx, cfg.Source, opts, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create data source")
	}

	// The service does not start without a table
	table, err := source.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Str("source", source.Name()).Msg("failed to load metrics table")
	}
	holder := dataset.NewHolder(table)
	metrics.RecordReload(nil, table.Len())

	hub := websocket.NewHub(log.Logger)
	go hub.Run(ctx)

	reloader := dataset.NewReloader(source, holder, log.Logger)
	reloader.OnReload(func(t *dataset.Table) {
		notice, err := json.Marshal(types.DatasetNotice{Event: "dataset_reloaded", Rows: t.Len(), LoadedAt: t.LoadedAt()})
		if err != nil {
			return
		}
		hub.Broadcast(notice)
	})
	if cfg.ReloadSchedule != "" {
		if err := reloader.Start(ctx, cfg.ReloadSchedule); err != nil {
			log.Fatal().Err(err).Msg("failed to schedule reloads")
		}
		defer reloader.Stop()
	}

	svc := &services{
		cfg:       cfg,
		responder: query.NewResponder(vocab, holder, log.Logger),
		datasets:  api.NewDatasetHandler(source.Name(), holder, reloader, log.Logger),
		hub:       hub,
		logger:    log.Logger,
	}
	if cfg.AuthEnabled {
		svc.authn = auth.New(auth.LoadConfig(), log.Logger)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(svc),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("rows", table.Len()).Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func newRouter(svc *services) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(svc.logger))
	r.Use(middleware.Metrics)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(svc.cfg.AllowedOrigins))

	// Public routes
	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/estado", svc.datasets.HandleStatus)

	queries := api.NewQueryHandler(svc.responder, svc.logger)
	wsHandler := websocket.NewHandler(svc.hub, svc.responder, svc.cfg, svc.logger)

	r.Group(func(r chi.Router) {
		if svc.authn != nil {
			r.Use(svc.authn.Middleware)
		}
		r.Post("/consultar", queries.HandleQuery)
		r.Get("/ws", wsHandler.ServeHTTP)

		// admin routes need an identity to check
		if svc.authn != nil {
			r.With(api.RequireAdmin).Post("/admin/reload", svc.datasets.HandleReload)
		}
	})

	return r
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"kpiquery"}`)
}
