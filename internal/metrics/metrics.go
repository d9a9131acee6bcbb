// Package metrics holds the Prometheus collectors of the service.
//
// All collectors live on a dedicated registry so tests can build as many
// instances as they like. A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "subhakaryam"

// Metrics provides observability for HTTP traffic, bookings, escrow and page search.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	BookingsCreated prometheus.Counter
	Payments        *prometheus.CounterVec
	PageSearches    *prometheus.CounterVec
}

// New registers all collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code",
		}, []string{"method", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		BookingsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "Bookings requested by customers",
		}),
		Payments: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_total",
			Help:      "Escrow transitions by resulting status",
		}, []string{"status"}),
		PageSearches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_search_total",
			Help:      "Page searches by outcome (hit or miss)",
		}, []string{"outcome"}),
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementBookingsCreated() {
	if m == nil {
		return
	}
	m.BookingsCreated.Inc()
}

// IncrementPayments counts a payment entering status.
func (m *Metrics) IncrementPayments(status string) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(status).Inc()
}

// IncrementPageSearch counts a search; hit means at least one result.
func (m *Metrics) IncrementPageSearch(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.PageSearches.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
