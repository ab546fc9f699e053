// Package metric provides Prometheus metrics for CartVault.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry and HTTP handler
//   - collector.go: Store-backed collector for live cart statistics
//
// Metrics include:
//
//   - Request latency histograms
//   - Active cart gauges and expiration counters
//   - Recovery token issue/verify counters
//   - Sweep run statistics
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
