package clientmetrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	done := r.Start()
	if got := testutil.ToFloat64(r.inFlight); got != 1 {
		t.Fatalf("in flight = %v, want 1", got)
	}
	r.ObserveResponse(200, 100*time.Millisecond)
	done()
	r.ObserveResponse(200, 300*time.Millisecond)
	r.ObserveResponse(503, 0)
	r.ObserveFailure("Connection refused")

	if got := testutil.ToFloat64(r.inFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(r.responses.WithLabelValues("200")); got != 2 {
		t.Errorf("responses{code=200} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.responses.WithLabelValues("503")); got != 1 {
		t.Errorf("responses{code=503} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.failures.WithLabelValues("Connection refused")); got != 1 {
		t.Errorf("failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.latency); got < 0.399 || got > 0.401 {
		t.Errorf("latency sum = %v, want 0.4", got)
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Start()()
	r.ObserveResponse(200, time.Second)
	r.ObserveFailure("Timeout")
	if r.Registry() != nil {
		t.Fatal("nil recorder should have no registry")
	}
}

func TestServeExposesMetrics(t *testing.T) {
	r := New()
	r.ObserveResponse(204, time.Millisecond)

	srv, err := r.Serve("127.0.0.1:0")
	if err != nil {
		t.Fatalf("Serve() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `pressure_responses_total{code="204"} 1`) {
		t.Errorf("metrics output missing response counter:\n%s", body)
	}
	if !strings.Contains(string(body), "pressure_requests_in_flight 0") {
		t.Errorf("metrics output missing in-flight gauge:\n%s", body)
	}
}

func TestServeBadAddress(t *testing.T) {
	if _, err := New().Serve("256.0.0.1:bad"); err == nil {
		t.Fatal("Serve() with a bad address should fail")
	}
}
