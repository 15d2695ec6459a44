package metric

import "github.com/prometheus/client_golang/prometheus"

// StoreCollector reports the size of the key-value store at scrape time.
type StoreCollector struct {
	keys  *prometheus.Desc
	count func() int
}

// NewStoreCollector creates a collector that calls count on each scrape.
func NewStoreCollector(count func() int) *StoreCollector {
	return &StoreCollector{
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "store", "keys"),
			"Entries held by the store, including expired ones not yet overwritten.",
			nil, nil,
		),
		count: count,
	}
}

// Describe implements prometheus.Collector.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.keys
}

// Collect implements prometheus.Collector.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(c.count()))
}
