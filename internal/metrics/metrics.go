package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many as they need.
// All record methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DispatchPublished *prometheus.CounterVec
	DispatchDropped   *prometheus.CounterVec
	DispatchRejected  *prometheus.CounterVec
	WSConnections     prometheus.Gauge

	DriverAccess    *prometheus.CounterVec
	CatalogListings *prometheus.CounterVec
}

func New(prefix string) *Metrics {
	if prefix == "" {
		prefix = "artisanal_futures"
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),

		DispatchPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_dispatch_published_total",
				Help: "Dispatch events queued for broadcast",
			},
			[]string{"event"},
		),
		DispatchDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_dispatch_dropped_total",
				Help: "Dispatch events dropped because the broadcast queue was full",
			},
			[]string{"event"},
		),
		DispatchRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_dispatch_rejected_total",
				Help: "Dispatch updates rejected during validation",
			},
			[]string{"event"},
		),
		WSConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "_ws_connections",
			Help: "Currently connected websocket clients",
		}),

		DriverAccess: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_driver_access_total",
				Help: "Driver passcode verifications by outcome",
			},
			[]string{"state"},
		),
		CatalogListings: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_catalog_listings_total",
				Help: "Catalog listing requests by kind",
			},
			[]string{"kind"},
		),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(elapsed.Seconds())
}

func (m *Metrics) EventPublished(event string) {
	if m == nil {
		return
	}
	m.DispatchPublished.WithLabelValues(event).Inc()
}

func (m *Metrics) EventDropped(event string) {
	if m == nil {
		return
	}
	m.DispatchDropped.WithLabelValues(event).Inc()
}

func (m *Metrics) EventRejected(event string) {
	if m == nil {
		return
	}
	m.DispatchRejected.WithLabelValues(event).Inc()
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}

func (m *Metrics) DriverVerification(state string) {
	if m == nil {
		return
	}
	m.DriverAccess.WithLabelValues(state).Inc()
}

func (m *Metrics) CatalogListing(kind string) {
	if m == nil {
		return
	}
	m.CatalogListings.WithLabelValues(kind).Inc()
}
