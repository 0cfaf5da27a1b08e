// Package metrics provides Prometheus-compatible metrics for the signup board.
//
// Two Registry implementations exist:
//   - ScrapeRegistry (server): metrics live in a Prometheus registry exposed on /metrics
//   - PushRegistry (CLI): samples are buffered and sent to a remote-write endpoint on Flush
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Gauge is a value that can go up and down.
type Gauge interface {
	Set(float64)
}

// Counter is a monotonically increasing value.
type Counter interface {
	Inc()
}

// GaugeVec is a Gauge partitioned by labels.
type GaugeVec interface {
	With(prometheus.Labels) Gauge
	// Reset drops every labelled child, e.g. before republishing a full set.
	Reset()
}

// CounterVec is a Counter partitioned by labels.
type CounterVec interface {
	With(prometheus.Labels) Counter
}

// Registry creates and registers metrics.
type Registry interface {
	NewGauge(opts prometheus.GaugeOpts) (Gauge, error)
	NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error)
	NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error)
}
