// Package metrics exposes Prometheus collectors for the two-factor service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultDenied  = "rate_limited"
)

// Metrics holds the service collectors. Build with New and register once.
type Metrics struct {
	enrollments   *prometheus.CounterVec
	verifications *prometheus.CounterVec
	redemptions   *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New creates collectors labelled with service.
func New(service string) *Metrics {
	constLabels := prometheus.Labels{"service": service}
	return &Metrics{
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "twofactor_enrollments_total",
			Help:        "Enrollment sessions by outcome.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "twofactor_verifications_total",
			Help:        "TOTP verifications by kind (enrollment, login) and result.",
			ConstLabels: constLabels,
		}, []string{"kind", "result"}),
		redemptions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "twofactor_recovery_redemptions_total",
			Help:        "Recovery code redemptions by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests.",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "Duration of HTTP requests.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "path"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.enrollments,
		m.verifications,
		m.redemptions,
		m.httpRequests,
		m.httpDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

func (m *Metrics) EnrollmentFinished(result string) {
	m.enrollments.WithLabelValues(result).Inc()
}

func (m *Metrics) CodeVerified(kind, result string) {
	m.verifications.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) RecoveryCodeRedeemed(result string) {
	m.redemptions.WithLabelValues(result).Inc()
}

// Middleware records request count and latency labelled by the chi route
// pattern, so path parameters do not explode cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		path := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				path = p
			}
		}
		m.httpRequests.WithLabelValues(r.Method, path, strconv.Itoa(sw.status)).Inc()
		m.httpDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
