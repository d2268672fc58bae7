package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricPrefix = "portfolio_"

// Metrics holds every collector the API exports. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	EventsIngested *prometheus.CounterVec
	EventsRejected *prometheus.CounterVec
	ArchiveDropped prometheus.Counter
	SnapshotReads  prometheus.Counter
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "analytics_events_total",
			Help: "Analytics events applied to the aggregate, by event type",
		}, []string{"event"}),
		EventsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "analytics_rejected_total",
			Help: "Analytics events rejected before aggregation, by reason",
		}, []string{"reason"}),
		ArchiveDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "analytics_archive_dropped_total",
			Help: "Events dropped because the archive buffer was full",
		}),
		SnapshotReads: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "analytics_snapshot_reads_total",
			Help: "Authorized analytics snapshot reads",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: metricPrefix + "http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    metricPrefix + "http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.EventsIngested,
		m.EventsRejected,
		m.ArchiveDropped,
		m.SnapshotReads,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}

// TotalsSource is read on every scrape.
type TotalsSource interface {
	Totals() (totalVisits, uniqueVisitors int)
}

// RegisterTotals exports the aggregate headline counters as gauges.
func (m *Metrics) RegisterTotals(src TotalsSource) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "analytics_total_visits",
			Help: "Page views aggregated since the counters were created",
		},
		func() float64 {
			total, _ := src.Totals()
			return float64(total)
		},
	))
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: metricPrefix + "analytics_unique_visitors",
			Help: "Distinct visitor ids seen",
		},
		func() float64 {
			_, unique := src.Totals()
			return float64(unique)
		},
	))
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}
