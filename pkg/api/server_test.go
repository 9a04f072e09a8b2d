package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/TitanUser/zeebedb/pkg/columnfamily"
	"github.com/TitanUser/zeebedb/pkg/engine"
	"github.com/TitanUser/zeebedb/pkg/metrics"
	"github.com/TitanUser/zeebedb/pkg/tables"
	"github.com/TitanUser/zeebedb/pkg/txn"
)

func newTestRouter(t *testing.T) (http.Handler, engine.Adapter, *tables.Tables) {
	t.Helper()
	partition, err := engine.OpenPartition(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { partition.Close() })

	reg := columnfamily.NewRegistry(partition, columnfamily.Options{})
	tbls, err := tables.Open(reg)
	if err != nil {
		t.Fatal(err)
	}

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	logger := zerolog.Nop()

	router := NewRouter(partition, tbls, reg, ServerConfig{Port: 0, Bind: "127.0.0.1"}, m, promReg, logger)
	return router, partition, tbls
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHandleHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	resp := decodeBody(t, rr)
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
}

func TestHandleGetElementInstance(t *testing.T) {
	router, adapter, tbls := newTestRouter(t)

	tx := txn.New(adapter)
	if err := tbls.ElementInstances.Put(tx, tables.ElementInstanceRecord{Key: 1, ElementID: "task-1"}); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(false); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/element-instances/1", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
	}
	resp := decodeBody(t, rr)
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
}

func TestHandleGetElementInstance_NotFound(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/element-instances/999", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestHandleStats(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestHandleDueTimers(t *testing.T) {
	router, adapter, tbls := newTestRouter(t)

	tx := txn.New(adapter)
	if err := tbls.ElementInstances.Put(tx, tables.ElementInstanceRecord{Key: 1, ElementID: "e"}); err != nil {
		t.Fatal(err)
	}
	if err := tbls.Timers.Put(tx, tables.TimerRecord{ElementInstanceKey: 1, TimerKey: 1, DueDate: 50}); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(false); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/timers/due?before=100", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rr.Code, rr.Body.String())
	}
}

func TestHandleMetricsEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}
