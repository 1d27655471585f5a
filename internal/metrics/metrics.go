// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	domainerrors "github.com/pagemark/pagemark-server/internal/errors"
)

const namespace = "pagemark"

// Outcome labels.
const (
	OutcomeOK         = "ok"
	OutcomeValidation = "validation"
	OutcomeNotFound   = "not_found"
	OutcomeConflict   = "conflict"
	OutcomeError      = "error"
)

// Metrics holds the application's collectors and the registry they live in.
type Metrics struct {
	registry *prometheus.Registry

	// operations counts service operations.
	// Labels: operation (create_session, update_session, ...), outcome
	operations *prometheus.CounterVec

	// operationDuration measures service operation latency.
	// Labels: operation
	operationDuration *prometheus.HistogramVec

	// pagesRead counts pages added (positive) through sessions.
	pagesRead prometheus.Counter

	// httpRequests counts HTTP requests.
	// Labels: method, status
	httpRequests *prometheus.CounterVec
}

// New creates a fresh registry with Go runtime, process and application
// collectors registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Service operations by outcome",
		}, []string{"operation", "outcome"}),
		operationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operation_duration_seconds",
			Help:      "Service operation latency in seconds",
			Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		pagesRead: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reading",
			Name:      "pages_logged_total",
			Help:      "Pages logged through reading sessions",
		}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method and status code",
		}, []string{"method", "status"}),
	}
}

// Observe records one operation that started at start and ended with err.
// A nil receiver is a no-op so services can run without metrics.
func (m *Metrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation, Outcome(err)).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// AddPagesRead records pages logged by a successful session.
func (m *Metrics) AddPagesRead(pages int) {
	if m == nil || pages <= 0 {
		return
	}
	m.pagesRead.Add(float64(pages))
}

// OperationCount returns the current counter value for operation/outcome.
func (m *Metrics) OperationCount(operation, outcome string) float64 {
	return counterValue(m.operations.WithLabelValues(operation, outcome))
}

// Outcome classifies err into an outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domainerrors.ErrValidation):
		return OutcomeValidation
	case errors.Is(err, domainerrors.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, domainerrors.ErrConcurrencyConflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Middleware counts requests by method and response status.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		m.httpRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
