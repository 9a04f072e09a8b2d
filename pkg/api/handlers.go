package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/engine"
	"github.com/TitanUser/zeebedb/pkg/metrics"
	"github.com/TitanUser/zeebedb/pkg/tables"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

// Server holds the admin API's dependencies: a read-only view over the
// column-family substrate plus instrumentation.
type Server struct {
	adapter engine.Adapter
	tables  *tables.Tables
	reg     *columnfamily.Registry
	config  ServerConfig
	metrics *metrics.Metrics
}

// NewServer creates a new admin API server.
func NewServer(adapter engine.Adapter, tbls *tables.Tables, reg *columnfamily.Registry, config ServerConfig, m *metrics.Metrics) *Server {
	return &Server{adapter: adapter, tables: tbls, reg: reg, config: config, metrics: m}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, map[string]string{"status": "healthy"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.reg.Stats()
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	resp := make([]ColumnFamilyStat, 0, len(stats))
	for _, st := range stats {
		resp = append(resp, ColumnFamilyStat{Name: st.Name, DiskSize: st.DiskSize})
	}
	sendSuccess(w, resp)
}

func (s *Server) handleGetElementInstance(w http.ResponseWriter, r *http.Request) {
	key, err := strconv.ParseInt(chi.URLParam(r, "key"), 10, 64)
	if err != nil {
		sendError(w, "key must be an integer", http.StatusBadRequest)
		return
	}

	tx := txn.NewWithMetrics(s.adapter, s.metrics)
	defer tx.Abort()

	record, found, err := s.tables.ElementInstances.Get(tx, key)
	if err != nil {
		sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		sendError(w, "element instance not found", http.StatusNotFound)
		return
	}
	sendSuccess(w, ElementInstanceResponse{
		Key:                record.Key,
		ProcessInstanceKey: record.ProcessInstanceKey,
		ElementID:          record.ElementID,
	})
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	key, err := strconv.ParseInt(chi.URLParam(r, "key"), 10, 64)
	if err != nil {
		sendError(w, "key must be an integer", http.StatusBadRequest)
		return
	}

	tx := txn.NewWithMetrics(s.adapter, s.metrics)
	defer tx.Abort()

	var out []SubscriptionResponse
	scanErr := s.tables.Subscriptions.CF().WhileEqualPrefix(tx, tables.ElementInstanceKeyPrefix(key),
		func(e columnfamily.Entry[tables.SubscriptionKey, tables.SubscriptionRecord]) (bool, error) {
			out = append(out, SubscriptionResponse{
				ElementInstanceKey: e.Key.ElementInstanceKey,
				MessageName:        e.Key.MessageName,
				State:              e.Value.State.String(),
				CommandSentTime:    e.Value.CommandSentTime,
			})
			return true, nil
		})
	if scanErr != nil {
		sendError(w, scanErr.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, out)
}

func (s *Server) handleListTimersForElement(w http.ResponseWriter, r *http.Request) {
	key, err := strconv.ParseInt(chi.URLParam(r, "key"), 10, 64)
	if err != nil {
		sendError(w, "key must be an integer", http.StatusBadRequest)
		return
	}

	tx := txn.NewWithMetrics(s.adapter, s.metrics)
	defer tx.Abort()

	var out []TimerResponse
	scanErr := s.tables.Timers.ForEachForElement(tx, key, func(rec tables.TimerRecord) (bool, error) {
		out = append(out, TimerResponse{
			ElementInstanceKey: rec.ElementInstanceKey,
			TimerKey:           rec.TimerKey,
			DueDate:            rec.DueDate,
		})
		return true, nil
	})
	if scanErr != nil {
		sendError(w, scanErr.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, out)
}

func (s *Server) handleDueTimers(w http.ResponseWriter, r *http.Request) {
	before, err := strconv.ParseInt(r.URL.Query().Get("before"), 10, 64)
	if err != nil {
		sendError(w, "before query parameter must be an integer", http.StatusBadRequest)
		return
	}

	tx := txn.NewWithMetrics(s.adapter, s.metrics)
	defer tx.Abort()

	var out []TimerResponse
	nextDue, findErr := s.tables.Timers.FindDueBefore(tx, before, func(rec tables.TimerRecord) bool {
		out = append(out, TimerResponse{
			ElementInstanceKey: rec.ElementInstanceKey,
			TimerKey:           rec.TimerKey,
			DueDate:            rec.DueDate,
		})
		return false
	})
	if findErr != nil {
		sendError(w, findErr.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]interface{}{
		"due":      out,
		"next_due": nextDue,
	})
}

func (s *Server) handleOverdueJobs(w http.ResponseWriter, r *http.Request) {
	before, err := strconv.ParseInt(r.URL.Query().Get("before"), 10, 64)
	if err != nil {
		sendError(w, "before query parameter must be an integer", http.StatusBadRequest)
		return
	}

	tx := txn.NewWithMetrics(s.adapter, s.metrics)
	defer tx.Abort()

	var out []JobResponse
	nextDeadline, findErr := s.tables.Jobs.FindOverdueBefore(tx, before, func(rec tables.JobRecord) bool {
		out = append(out, JobResponse{
			ElementInstanceKey: rec.ElementInstanceKey,
			JobKey:             rec.JobKey,
			Type:               rec.Type,
			Deadline:           rec.Deadline,
		})
		return false
	})
	if findErr != nil {
		sendError(w, findErr.Error(), http.StatusInternalServerError)
		return
	}
	sendSuccess(w, map[string]interface{}{
		"overdue":       out,
		"next_deadline": nextDeadline,
	})
}
