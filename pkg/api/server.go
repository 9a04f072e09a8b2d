// Package api exposes a read-only HTTP admin surface over the substrate:
// health, per-column-family disk stats, and inspection endpoints for each
// table. There is no write path and no authentication layer here — the
// substrate itself is embedded and single-threaded per partition, so this
// server is diagnostic tooling, not the engine's primary interface.
package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/engine"
	"github.com/TitanUser/zeebedb/pkg/metrics"
	"github.com/TitanUser/zeebedb/pkg/tables"
)

// NewRouter builds the chi router for the admin API, wiring every /api/v1
// handler through metrics.InstrumentHandler so each of those routes reports
// request counts, durations, and in-flight gauges; /metrics itself is not
// instrumented.
func NewRouter(adapter engine.Adapter, tbls *tables.Tables, reg *columnfamily.Registry, config ServerConfig, m *metrics.Metrics, promReg *prometheus.Registry, logger zerolog.Logger) http.Handler {
	server := NewServer(adapter, tbls, reg, config, m)

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	}))

	r.Handle("/metrics", metricsHandler(m, reg, promReg))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", m.InstrumentHandler("GET", "/api/v1/health", server.handleHealth))
		r.Get("/stats", m.InstrumentHandler("GET", "/api/v1/stats", server.handleStats))
		r.Get("/element-instances/{key}", m.InstrumentHandler("GET", "/api/v1/element-instances/{key}", server.handleGetElementInstance))
		r.Get("/element-instances/{key}/subscriptions", m.InstrumentHandler("GET", "/api/v1/element-instances/{key}/subscriptions", server.handleListSubscriptions))
		r.Get("/element-instances/{key}/timers", m.InstrumentHandler("GET", "/api/v1/element-instances/{key}/timers", server.handleListTimersForElement))
		r.Get("/timers/due", m.InstrumentHandler("GET", "/api/v1/timers/due", server.handleDueTimers))
		r.Get("/jobs/overdue", m.InstrumentHandler("GET", "/api/v1/jobs/overdue", server.handleOverdueJobs))
	})

	return r
}

// StartServer starts the admin HTTP server and blocks until it exits.
func StartServer(adapter engine.Adapter, tbls *tables.Tables, reg *columnfamily.Registry, config ServerConfig, m *metrics.Metrics, promReg *prometheus.Registry, logger zerolog.Logger) error {
	handler := NewRouter(adapter, tbls, reg, config, m, promReg, logger)

	addr := fmt.Sprintf("%s:%d", config.Bind, config.Port)
	logger.Info().Str("addr", addr).Msg("starting admin API server")

	return http.ListenAndServe(addr, handler)
}

// metricsHandler refreshes the per-column-family disk gauges from reg
// immediately before every scrape, then serves the registry's usual
// Prometheus text exposition. A failed refresh doesn't fail the scrape —
// it just leaves the gauges at their last known values.
func metricsHandler(m *metrics.Metrics, reg *columnfamily.Registry, promReg *prometheus.Registry) http.Handler {
	inner := promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = m.RefreshColumnFamilyStats(reg)
		inner.ServeHTTP(w, r)
	})
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
