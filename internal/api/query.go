package api

import (
	"encoding/json"
	"net/http"

	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
	"github.com/rs/zerolog"
)

// maxQueryBody bounds the request body of POST /consultar
const maxQueryBody = 64 << 10

// Answerer produces the answer sentence for a question
type Answerer interface {
	Respond(question string) string
}

// QueryHandler handles the question endpoint
type QueryHandler struct {
	answerer Answerer
	logger   zerolog.Logger
}

// NewQueryHandler creates a new QueryHandler
func NewQueryHandler(answerer Answerer, logger zerolog.Logger) *QueryHandler {
	return &QueryHandler{
		answerer: answerer,
		logger:   logger.With().Str("component", "query_api").Logger(),
	}
}

// HandleQuery handles POST /consultar. A body that is not a JSON object
// with "pregunta" is answered as an empty question.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req types.QueryRequest
	if r.Body != nil {
		body := http.MaxBytesReader(w, r.Body, maxQueryBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			h.logger.Debug().Err(err).Msg("unreadable question body")
			req = types.QueryRequest{}
		}
	}

	resp := types.QueryResponse{Answer: h.answerer.Respond(req.Question)}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error().Err(err).Msg("failed to write answer")
	}
}
