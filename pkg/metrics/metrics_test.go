package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Collector) float64 {
	t.Helper()
	ch := make(chan prometheus.Metric, 1)
	c.Collect(ch)
	m := &dto.Metric{}
	if err := (<-ch).Write(m); err != nil {
		t.Fatal(err)
	}
	return m.GetCounter().GetValue()
}

func TestRecordHTTPRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordHTTPRequest("GET", "/healthz", 200, 5*time.Millisecond)

	got := counterValue(t, m.httpRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	if got != 1 {
		t.Fatalf("got %v requests, want 1", got)
	}
}

func TestRecordCommit(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordCommit(true)
	m.RecordCommit(false)

	if got := counterValue(t, m.txnCommitsTotal.WithLabelValues("commit")); got != 1 {
		t.Fatalf("commits = %v, want 1", got)
	}
	if got := counterValue(t, m.txnCommitsTotal.WithLabelValues("abort")); got != 1 {
		t.Fatalf("aborts = %v, want 1", got)
	}
}

func TestRecordFKViolation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordFKViolation()
	m.RecordFKViolation()

	if got := counterValue(t, m.fkViolationsTotal); got != 2 {
		t.Fatalf("got %v violations, want 2", got)
	}
}
