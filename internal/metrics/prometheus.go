package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Exporter mirrors attempt measurements into a Prometheus registry.
type Exporter struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
	failures *prometheus.CounterVec
	latency  prometheus.Histogram
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simpleload_requests_total",
				Help: "Request attempts by HTTP status code.",
			},
			[]string{"code"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "simpleload_request_failures_total",
				Help: "Request attempts that failed before a response was received.",
			},
			[]string{"reason"},
		),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "simpleload_request_duration_seconds",
			Help:    "Request attempt latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	e.registry.MustRegister(e.attempts, e.failures, e.latency)
	return e
}

// RecordRequest records a single attempt.
func (e *Exporter) RecordRequest(_ int, latency time.Duration, statusCode int, err error) {
	e.attempts.WithLabelValues(statusLabel(statusCode)).Inc()
	e.latency.Observe(latency.Seconds())
	if err != nil {
		e.failures.WithLabelValues(FriendlyErrorName(ErrorType(err))).Inc()
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is cancelled. It
// returns the bound address once the listener is ready.
func (e *Exporter) Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = ln.Close()
		}
	}()

	return ln.Addr(), nil
}
