// Package clientmetrics exposes live run counters in Prometheus format.
package clientmetrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pressure"

// Recorder tracks requests as they happen. A nil *Recorder is valid and
// records nothing, so callers need not check whether metrics are enabled.
type Recorder struct {
	registry  *prometheus.Registry
	inFlight  prometheus.Gauge
	responses *prometheus.CounterVec
	failures  *prometheus.CounterVec
	latency   prometheus.Counter
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requests_in_flight",
			Help:      "Requests currently awaiting a response.",
		}),
		responses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_total",
			Help:      "Completed HTTP transactions by status code.",
		}, []string{"code"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Transport failures by reason.",
		}, []string{"reason"}),
		latency: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_seconds_total",
			Help:      "Sum of response latencies of completed transactions.",
		}),
	}
	r.registry.MustRegister(r.inFlight, r.responses, r.failures, r.latency)
	return r
}

// Start marks a request as in flight and returns the function that clears it.
func (r *Recorder) Start() func() {
	if r == nil {
		return func() {}
	}
	r.inFlight.Inc()
	return r.inFlight.Dec
}

// ObserveResponse counts a completed HTTP transaction.
func (r *Recorder) ObserveResponse(code int, latency time.Duration) {
	if r == nil {
		return
	}
	r.responses.WithLabelValues(strconv.Itoa(code)).Inc()
	r.latency.Add(latency.Seconds())
}

// ObserveFailure counts a transport failure under its classified reason.
func (r *Recorder) ObserveFailure(reason string) {
	if r == nil {
		return
	}
	r.failures.WithLabelValues(reason).Inc()
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Server serves /metrics while a run is active.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	done chan error
}

// Serve starts listening on addr immediately so a bad address fails before
// the run begins.
func (r *Recorder) Serve(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	s := &Server{
		srv:  &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second},
		ln:   ln,
		done: make(chan error, 1),
	}
	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return s, nil
}

// Addr returns the bound address, useful when addr had port 0.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops the server, waiting for in-progress scrapes until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	return <-s.done
}
