package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/auth"
	"github.com/dennisdiepolder/monti/kpiquery/internal/dataset"
	"github.com/rs/zerolog"
)

// TableProvider supplies the table in service
type TableProvider interface {
	Current() *dataset.Table
}

// Reloader loads a fresh table on demand
type Reloader interface {
	Reload(ctx context.Context) error
}

// DatasetStatus describes the table in service
type DatasetStatus struct {
	Source   string    `json:"source"`
	Rows     int       `json:"rows"`
	Agents   int       `json:"agents"`
	LoadedAt time.Time `json:"loadedAt"`
}

// DatasetHandler reports on and reloads the metrics table
type DatasetHandler struct {
	source   string
	tables   TableProvider
	reloader Reloader
	logger   zerolog.Logger
}

// NewDatasetHandler creates a new DatasetHandler
func NewDatasetHandler(source string, tables TableProvider, reloader Reloader, logger zerolog.Logger) *DatasetHandler {
	return &DatasetHandler{
		source:   source,
		tables:   tables,
		reloader: reloader,
		logger:   logger.With().Str("component", "dataset_api").Logger(),
	}
}

// RequireAdmin lets only the admin role through
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.GetUserFromContext(r.Context())
		if !ok || claims.Role != "admin" {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "admin role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HandleStatus handles GET /estado
func (h *DatasetHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status())
}

// HandleReload handles POST /admin/reload
func (h *DatasetHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	if err := h.reloader.Reload(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("manual reload failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}

	status := h.status()
	h.logger.Info().Int("rows", status.Rows).Msg("manual reload completed")
	writeJSON(w, http.StatusOK, status)
}

func (h *DatasetHandler) status() DatasetStatus {
	status := DatasetStatus{Source: h.source}
	if t := h.tables.Current(); t != nil {
		status.Rows = t.Len()
		status.Agents = len(t.Agents())
		status.LoadedAt = t.LoadedAt()
	}
	return status
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
