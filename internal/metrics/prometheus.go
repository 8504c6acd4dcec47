package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sysdb/sysdbd/pkg/logger"
)

// StoreSizer reports the current entity counts of the catalog. internal/store.Store
// implements this so the gauge funcs below can read live counts.
type StoreSizer interface {
	CountHosts() int
	CountServices() int
	CountMetrics() int
	CountAttributes() int
}

// PrometheusMetrics implements metrics collection for the frontend and store.
type PrometheusMetrics struct {
	connectionsActive prometheus.Gauge
	commandsTotal     *prometheus.CounterVec
	commandDuration   *prometheus.HistogramVec

	storeHosts      prometheus.GaugeFunc
	storeServices   prometheus.GaugeFunc
	storeMetrics    prometheus.GaugeFunc
	storeAttributes prometheus.GaugeFunc

	store  StoreSizer
	logger logger.Logger
}

// NewPrometheusMetrics creates a new PrometheusMetrics wired to the given
// store for gauge readouts.
func NewPrometheusMetrics(store StoreSizer, log logger.Logger) *PrometheusMetrics {
	m := &PrometheusMetrics{
		store:  store,
		logger: log,
	}

	m.connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sysdb_connections_active",
		Help: "Number of currently open frontend connections",
	})

	m.commandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sysdb_commands_total",
			Help: "Total number of frontend commands processed",
		},
		[]string{"command", "status"},
	)

	m.commandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sysdb_command_duration_seconds",
			Help:    "Duration of frontend command execution in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	m.storeHosts = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "sysdb_store_hosts",
			Help: "Current number of hosts in the catalog",
		},
		func() float64 { return float64(m.store.CountHosts()) },
	)

	m.storeServices = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "sysdb_store_services",
			Help: "Current number of services in the catalog",
		},
		func() float64 { return float64(m.store.CountServices()) },
	)

	m.storeMetrics = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "sysdb_store_metrics",
			Help: "Current number of metrics in the catalog",
		},
		func() float64 { return float64(m.store.CountMetrics()) },
	)

	m.storeAttributes = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "sysdb_store_attributes",
			Help: "Current number of attributes in the catalog",
		},
		func() float64 { return float64(m.store.CountAttributes()) },
	)

	return m
}

// ConnectionOpened increments the active connection gauge.
func (m *PrometheusMetrics) ConnectionOpened() {
	m.connectionsActive.Inc()
}

// ConnectionClosed decrements the active connection gauge.
func (m *PrometheusMetrics) ConnectionClosed() {
	m.connectionsActive.Dec()
}

// RecordCommand records a completed command's outcome and latency.
func (m *PrometheusMetrics) RecordCommand(command string, status string, duration time.Duration) {
	m.commandsTotal.With(prometheus.Labels{"command": command, "status": status}).Inc()
	m.commandDuration.With(prometheus.Labels{"command": command}).Observe(duration.Seconds())
}
