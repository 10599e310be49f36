// Package metrics exposes Prometheus metrics for the query service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the private registry served on /metrics
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// QuestionsTotal counts answered questions by outcome
var QuestionsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kpiquery",
	Name:      "questions_total",
	Help:      "Questions answered, by outcome",
}, []string{"outcome"})

// QueryDuration tracks the time spent computing one answer
var QueryDuration = factory.NewHistogram(prometheus.HistogramOpts{
	Namespace: "kpiquery",
	Name:      "query_duration_seconds",
	Help:      "Time spent filtering and aggregating one question",
	Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
})

// TableRows is the size of the table in service
var TableRows = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "kpiquery",
	Name:      "table_rows",
	Help:      "Rows in the metrics table currently in service",
})

// ReloadsTotal counts table reloads by result
var ReloadsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kpiquery",
	Name:      "table_reloads_total",
	Help:      "Table reload attempts, by result",
}, []string{"result"})

// WebSocketConnections is the number of open query sockets
var WebSocketConnections = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "kpiquery",
	Name:      "websocket_active_connections",
	Help:      "Open websocket query connections",
})

var httpRequestsTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kpiquery",
	Name:      "http_requests_total",
	Help:      "HTTP requests, by route and status",
}, []string{"route", "status"})

var httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "kpiquery",
	Name:      "http_request_duration_seconds",
	Help:      "HTTP request latency, by route",
	Buckets:   prometheus.DefBuckets,
}, []string{"route"})

// RecordQuestion records one answered question
func RecordQuestion(outcome string, duration time.Duration) {
	QuestionsTotal.WithLabelValues(outcome).Inc()
	QueryDuration.Observe(duration.Seconds())
}

// RecordReload records a reload attempt and the resulting table size
func RecordReload(err error, rows int) {
	if err != nil {
		ReloadsTotal.WithLabelValues("error").Inc()
		return
	}
	ReloadsTotal.WithLabelValues("ok").Inc()
	TableRows.Set(float64(rows))
}

// RecordHTTPRequest records an HTTP request
func RecordHTTPRequest(route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler returns an HTTP handler for the /metrics endpoint
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}
