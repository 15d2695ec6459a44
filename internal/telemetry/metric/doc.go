// Package metric provides Prometheus metrics for minikv.
//
//   - prometheus.go: the metric registry and the /metrics HTTP handler
//   - collector.go: a collector reading the store size at scrape time
//
// Metrics include connection counts, command counts and latencies by
// command name, protocol errors, and the number of stored keys. Go
// runtime and process collectors are registered as well.
package metric
