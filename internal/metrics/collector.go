package metrics

import (
	"time"

	"github.com/sysdb/sysdbd/pkg/logger"
)

// Collector provides an interface for metrics collection
type Collector interface {
	// ConnectionOpened records a newly accepted frontend connection.
	ConnectionOpened()

	// ConnectionClosed records a closed frontend connection.
	ConnectionClosed()

	// RecordCommand records a completed command's outcome and latency.
	RecordCommand(command string, status string, duration time.Duration)
}

// NewCollector creates a new metrics collector.
func NewCollector(impl string, store StoreSizer, log logger.Logger) Collector {
	switch impl {
	case "prometheus":
		return NewPrometheusMetrics(store, log)
	default:
		return &NoopCollector{}
	}
}

// NoopCollector is a no-operation metrics collector for testing or when metrics are disabled.
type NoopCollector struct{}

// ConnectionOpened is a no-op implementation.
func (n *NoopCollector) ConnectionOpened() {}

// ConnectionClosed is a no-op implementation.
func (n *NoopCollector) ConnectionClosed() {}

// RecordCommand is a no-op implementation.
func (n *NoopCollector) RecordCommand(command string, status string, duration time.Duration) {}
