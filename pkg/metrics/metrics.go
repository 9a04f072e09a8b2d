// Package metrics holds the Prometheus instrumentation for the substrate
// and its HTTP surface: request counters and histograms for the admin API,
// transaction-level operation counters, and per-column-family disk gauges.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/TitanUser/zeebedb/pkg/columnfamily"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds every Prometheus collector exposed by a running instance.
type Metrics struct {
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	txnOperationsTotal   *prometheus.CounterVec
	txnOperationDuration *prometheus.HistogramVec
	txnCommitsTotal      *prometheus.CounterVec

	fkViolationsTotal prometheus.Counter

	columnFamilyDiskBytes *prometheus.GaugeVec
}

// New creates and registers every collector against reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zeebedb_http_requests_total",
				Help: "Total number of HTTP requests served by the admin API.",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zeebedb_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zeebedb_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
			[]string{"method", "endpoint"},
		),
		txnOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zeebedb_txn_operations_total",
				Help: "Total number of transaction-level commit/abort operations.",
			},
			[]string{"operation", "status"},
		),
		txnOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "zeebedb_txn_operation_duration_seconds",
				Help:    "Duration of transaction-level operations in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		txnCommitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "zeebedb_txn_commits_total",
				Help: "Total number of transaction commit/abort outcomes.",
			},
			[]string{"outcome"},
		),
		fkViolationsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "zeebedb_fk_violations_total",
				Help: "Total number of writes rejected by the foreign-key checker.",
			},
		),
		columnFamilyDiskBytes: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "zeebedb_column_family_disk_bytes",
				Help: "Approximate on-disk size per column family.",
			},
			[]string{"column_family"},
		),
	}
}

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordTxnOperation records a single transaction-level operation, such as
// a commit or an abort, and whether it succeeded.
func (m *Metrics) RecordTxnOperation(operation string, success bool, duration time.Duration) {
	status := statusSuccess
	if !success {
		status = statusError
	}
	m.txnOperationsTotal.WithLabelValues(operation, status).Inc()
	m.txnOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCommit records the outcome of Transaction.Commit or Transaction.Abort.
func (m *Metrics) RecordCommit(committed bool) {
	outcome := "commit"
	if !committed {
		outcome = "abort"
	}
	m.txnCommitsTotal.WithLabelValues(outcome).Inc()
}

// RecordFKViolation records one write rejected by fk.Checker.Assert.
func (m *Metrics) RecordFKViolation() {
	m.fkViolationsTotal.Inc()
}

// FKViolations reports the current total fk violation count. Exported so
// callers outside this package (fk.Checker's own tests, in particular) can
// assert on the wiring without scraping /metrics.
func (m *Metrics) FKViolations() float64 {
	return testutil.ToFloat64(m.fkViolationsTotal)
}

// RefreshColumnFamilyStats pulls fresh per-CF disk usage from reg and
// republishes it as gauges. The admin API's /metrics handler calls it
// before every scrape.
func (m *Metrics) RefreshColumnFamilyStats(reg *columnfamily.Registry) error {
	stats, err := reg.Stats()
	if err != nil {
		return err
	}
	for _, s := range stats {
		m.columnFamilyDiskBytes.WithLabelValues(s.Name).Set(float64(s.DiskSize))
	}
	return nil
}

// InstrumentHandler wraps an http.HandlerFunc with request-count, duration,
// and in-flight gauges.
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &statusCapturingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

type statusCapturingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusCapturingWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}
