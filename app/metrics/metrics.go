// Package metrics instruments the scrape cycle with Prometheus collectors.
// All recording methods are safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "catalog_watch"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	cycles          *prometheus.CounterVec
	cycleDuration   prometheus.Histogram
	fetchAttempts   *prometheus.CounterVec
	catalogSize     prometheus.Gauge
	changesRecorded prometheus.Counter
	productsAdded   prometheus.Counter
	productsRemoved prometheus.Counter
	snapshotWrites  prometheus.Counter
	notifications   *prometheus.CounterVec
}

// New registers all collectors on a dedicated registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		cycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Scrape cycles run, by result.",
		}, []string{"result"}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Duration of scrape cycles.",
			Buckets:   []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		fetchAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Catalog fetch attempts, by result.",
		}, []string{"result"}),
		catalogSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_products",
			Help:      "Number of products in the last fetched catalog.",
		}),
		changesRecorded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_recorded_total",
			Help:      "Change records appended to the history.",
		}),
		productsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_added_total",
			Help:      "Products detected as added.",
		}),
		productsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_removed_total",
			Help:      "Products detected as removed.",
		}),
		snapshotWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Catalog snapshot file rewrites.",
		}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Webhook notifications, by result.",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveCycle(err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(result(err)).Inc()
	m.cycleDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveFetchAttempt(err error) {
	if m == nil {
		return
	}
	m.fetchAttempts.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.catalogSize.Set(float64(n))
}

func (m *Metrics) ObserveChange(added, removed int) {
	if m == nil {
		return
	}
	m.changesRecorded.Inc()
	m.productsAdded.Add(float64(added))
	m.productsRemoved.Add(float64(removed))
}

func (m *Metrics) ObserveSnapshotWrite() {
	if m == nil {
		return
	}
	m.snapshotWrites.Inc()
}

func (m *Metrics) ObserveNotification(err error) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
