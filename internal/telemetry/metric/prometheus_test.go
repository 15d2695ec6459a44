package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.ConnectionsActive == nil || r.ConnectionsTotal == nil || r.ProtocolErrors == nil {
		t.Error("connection metrics not initialized")
	}
	if r.CommandsTotal == nil || r.CommandDuration == nil {
		t.Error("command metrics not initialized")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
}

func TestConnMetrics(t *testing.T) {
	r := NewRegistry()

	r.ConnOpened()
	r.ConnOpened()
	r.ConnClosed()

	if got := testutil.ToFloat64(r.ConnectionsActive); got != 1 {
		t.Errorf("connections_active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.ConnectionsTotal); got != 2 {
		t.Errorf("connections_total = %v, want 2", got)
	}
}

func TestObserveCommand(t *testing.T) {
	r := NewRegistry()

	r.ObserveCommand("GET", ResultOK, time.Microsecond)
	r.ObserveCommand("GET", ResultNil, time.Microsecond)
	r.ObserveCommand("GET", ResultOK, time.Microsecond)

	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("GET", ResultOK)); got != 2 {
		t.Errorf("commands_total{GET,ok} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.CommandsTotal.WithLabelValues("GET", ResultNil)); got != 1 {
		t.Errorf("commands_total{GET,nil} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.CommandDuration); got != 1 {
		t.Errorf("command_duration series = %d, want 1", got)
	}
}

func TestStoreCollector(t *testing.T) {
	r := NewRegistry()
	n := 3
	if err := r.Register(NewStoreCollector(func() int { return n })); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	expected := `
# HELP minikv_store_keys Entries held by the store, including expired ones not yet overwritten.
# TYPE minikv_store_keys gauge
minikv_store_keys 3
`
	if err := testutil.GatherAndCompare(r.registry, strings.NewReader(expected), "minikv_store_keys"); err != nil {
		t.Error(err)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.ObserveCommand("PING", ResultOK, time.Microsecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{"go_goroutines", "process_", `minikv_commands_total{command="PING",result="ok"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
