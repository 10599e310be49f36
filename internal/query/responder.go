package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/dennisdiepolder/monti/kpiquery/internal/dataset"
	"github.com/dennisdiepolder/monti/kpiquery/internal/metrics"
	"github.com/dennisdiepolder/monti/kpiquery/internal/textnorm"
	"github.com/dennisdiepolder/monti/kpiquery/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Outcome classifies how a question was answered
type Outcome string

const (
	OutcomeMetric        Outcome = "metric"
	OutcomeClosureRate   Outcome = "closure_rate"
	OutcomeNoData        Outcome = "no_data"
	OutcomeNoAgentData   Outcome = "no_agent_data"
	OutcomeNoContacts    Outcome = "no_contacts"
	OutcomeNotUnderstood Outcome = "not_understood"
)

// Fixed answers
const (
	msgNoData        = "No se encontraron datos."
	msgNoContacts    = "No se puede calcular el porcentaje de cierre porque no hay contactos efectivos (CET + CTR = 0)."
	msgNotUnderstood = "No entendí la métrica solicitada. Intenta con otra pregunta."
)

// Answer is the result of one question
type Answer struct {
	Text     string
	Outcome  Outcome
	Criteria Criteria
	Column   string
}

// TableProvider supplies the table in service for each question
type TableProvider interface {
	Current() *dataset.Table
}

// Responder turns questions into answers against the current table
type Responder struct {
	vocab  *Vocabulary
	tables TableProvider
	logger zerolog.Logger
}

// NewResponder creates a Responder
func NewResponder(vocab *Vocabulary, tables TableProvider, logger zerolog.Logger) *Responder {
	return &Responder{
		vocab:  vocab,
		tables: tables,
		logger: logger.With().Str("component", "responder").Logger(),
	}
}

// Respond returns the answer sentence for a question
func (r *Responder) Respond(question string) string {
	return r.Answer(question).Text
}

// Answer runs the decision sequence for a question: global filters, then
// closure rate, then keyword metric, then the not-understood fallback.
func (r *Responder) Answer(question string) Answer {
	start := time.Now()
	ans := r.answer(question)
	elapsed := time.Since(start)

	metrics.RecordQuestion(string(ans.Outcome), elapsed)
	r.logger.Debug().
		Str("query_id", uuid.New().String()).
		Str("question", question).
		Str("outcome", string(ans.Outcome)).
		Str("column", ans.Column).
		Int("dates", len(ans.Criteria.Dates)).
		Int("times", len(ans.Criteria.Times)).
		Str("campaign", ans.Criteria.Campaign).
		Str("agent", ans.Criteria.Agent).
		Dur("duration", elapsed).
		Msg("question answered")

	return ans
}

func (r *Responder) answer(question string) Answer {
	table := r.tables.Current()
	if table == nil {
		return Answer{Text: msgNoData, Outcome: OutcomeNoData}
	}

	folded := textnorm.Fold(question)
	c := r.vocab.Extract(question, folded, table.Agents())

	rows := Filter(table.Records(), c)
	if len(rows) == 0 {
		return Answer{Text: noDataMessage(c), Outcome: OutcomeNoData, Criteria: c}
	}

	if r.vocab.IsClosureQuestion(folded) {
		return r.closureRate(rows, c)
	}

	column, ok := r.vocab.ResolveMetric(folded)
	if !ok {
		return Answer{Text: msgNotUnderstood, Outcome: OutcomeNotUnderstood, Criteria: c}
	}

	rows = FilterAgent(rows, c.Agent)
	if len(rows) == 0 {
		return Answer{
			Text:     fmt.Sprintf("No se encontraron registros para %s en ese rango.", textnorm.Title(c.Agent)),
			Outcome:  OutcomeNoAgentData,
			Criteria: c,
			Column:   column,
		}
	}

	total := SumColumn(rows, column)
	value := FormatCount(total)
	if r.vocab.IsDuration(column) {
		value = FormatDuration(total)
	}

	who := "todos"
	if c.Agent != "" {
		who = textnorm.Title(c.Agent)
	}

	return Answer{
		Text:     fmt.Sprintf("%s de %s: %s", column, who, value),
		Outcome:  OutcomeMetric,
		Criteria: c,
		Column:   column,
	}
}

func (r *Responder) closureRate(rows []types.Record, c Criteria) Answer {
	rows = FilterAgent(rows, c.Agent)
	if len(rows) == 0 {
		return Answer{
			Text:     fmt.Sprintf("No se encontraron datos para %s.", textnorm.Title(c.Agent)),
			Outcome:  OutcomeNoAgentData,
			Criteria: c,
		}
	}

	pct, ok := ComputeClosureRate(rows).Percent()
	if !ok {
		return Answer{Text: msgNoContacts, Outcome: OutcomeNoContacts, Criteria: c}
	}

	var labels []string
	if c.Agent != "" {
		labels = append(labels, textnorm.Title(c.Agent))
	}
	if c.Campaign != "" {
		labels = append(labels, textnorm.Title(c.Campaign))
	}
	if len(c.Dates) == 1 {
		labels = append(labels, "Fechas: "+formatDate(c.Dates[0]))
	} else if len(c.Dates) > 1 {
		labels = append(labels, fmt.Sprintf("Fechas: %s a %s", formatDate(c.Dates[0]), formatDate(c.Dates[1])))
	}

	text := "Porcentaje de cierre: " + FormatPercent(pct)
	if len(labels) > 0 {
		text = strings.Join(labels, " - ") + " → " + text
	}

	return Answer{Text: text, Outcome: OutcomeClosureRate, Criteria: c}
}

// noDataMessage names the requested campaign, dates and times. Ranges are
// quoted in the order they were written in the question.
func noDataMessage(c Criteria) string {
	var parts []string
	if c.Campaign != "" {
		parts = append(parts, fmt.Sprintf("la campaña '%s'", textnorm.Title(c.Campaign)))
	}
	switch {
	case len(c.Dates) == 1:
		parts = append(parts, "la fecha "+formatDate(c.Dates[0]))
	case len(c.Dates) > 1:
		parts = append(parts, fmt.Sprintf("el rango de fechas entre %s y %s", formatDate(c.Dates[0]), formatDate(c.Dates[1])))
	}
	switch {
	case len(c.Times) == 1:
		parts = append(parts, "la hora "+c.Times[0].String())
	case len(c.Times) > 1:
		parts = append(parts, fmt.Sprintf("el rango de horas entre %s y %s", c.Times[0], c.Times[1]))
	}

	if len(parts) == 0 {
		return msgNoData
	}
	return fmt.Sprintf("No se encontraron datos para %s.", strings.Join(parts, " y "))
}

func formatDate(d time.Time) string {
	return d.Format(types.DateLayout)
}
