package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	StatusProcessed = "processed"
	StatusRejected  = "rejected"
	StatusFailed    = "failed"
)

var (
	IngestFilesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_files_total",
			Help: "Total number of spreadsheets handled by the pipeline (count)",
		},
		[]string{"status"},
	)

	IngestMessagesWrittenTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ingest_messages_written_total",
			Help: "Total number of HL7 messages written to the output folder (count)",
		},
	)

	IngestRowsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_rows_rejected_total",
			Help: "Total number of rows that failed validation, by field (count)",
		},
		[]string{"field"},
	)

	IngestTicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_ticks_total",
			Help: "Total number of polling ticks (count)",
		},
		[]string{"status"},
	)

	IngestTickDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_tick_duration_ms",
			Help:    "Duration of one polling tick in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"status"},
	)

	IngestFileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingest_file_duration_ms",
			Help:    "Duration of processing one spreadsheet in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"status"},
	)

	IngestPendingFiles = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_pending_files",
			Help: "Number of spreadsheets found at the start of the last tick (count)",
		},
	)

	IngestLastSuccessTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ingest_last_success_timestamp_seconds",
			Help: "Unix time of the last tick that finished without error (seconds)",
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests served by the status endpoint (count)",
		},
		[]string{"path", "code"},
	)
)

func RegisterIngestMetrics() {
	prometheus.MustRegister(IngestFilesTotal)
	prometheus.MustRegister(IngestMessagesWrittenTotal)
	prometheus.MustRegister(IngestRowsRejectedTotal)
	prometheus.MustRegister(IngestTicksTotal)
	prometheus.MustRegister(IngestTickDuration)
	prometheus.MustRegister(IngestFileDuration)
	prometheus.MustRegister(IngestPendingFiles)
	prometheus.MustRegister(IngestLastSuccessTimestamp)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterServerMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
}

func IncFile(status string) {
	IngestFilesTotal.WithLabelValues(status).Inc()
}

func IncMessagesWritten() {
	IngestMessagesWrittenTotal.Inc()
}

func IncRowRejected(field string) {
	IngestRowsRejectedTotal.WithLabelValues(field).Inc()
}

func ObserveTick(duration time.Duration, status string) {
	IngestTicksTotal.WithLabelValues(status).Inc()
	IngestTickDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveFileDuration(duration time.Duration, status string) {
	IngestFileDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func SetPendingFiles(count int) {
	IngestPendingFiles.Set(float64(count))
}

func SetLastSuccess(t time.Time) {
	IngestLastSuccessTimestamp.Set(float64(t.Unix()))
}

func IncHTTPRequest(path, code string) {
	HTTPRequestsTotal.WithLabelValues(path, code).Inc()
}
