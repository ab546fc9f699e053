// Package metric provides Prometheus metrics for CartVault.
package metric

import "github.com/prometheus/client_golang/prometheus"

// StoreStats is the view of the cart store the collector scrapes.
type StoreStats interface {
	// Count returns the number of records currently held.
	Count() int

	// ExpiredCounts returns totals of records removed lazily on access
	// and by the background sweeper.
	ExpiredCounts() (lazy, swept int64)
}

// storeCollector collects live statistics from the cart store on each
// scrape.
type storeCollector struct {
	stats StoreStats

	activeDesc  *prometheus.Desc
	expiredDesc *prometheus.Desc
}

func newStoreCollector(stats StoreStats) *storeCollector {
	return &storeCollector{
		stats: stats,
		activeDesc: prometheus.NewDesc(
			namespace+"_carts_active",
			"Number of cart records currently held, including not-yet-collected expired records.",
			nil, nil,
		),
		expiredDesc: prometheus.NewDesc(
			namespace+"_carts_expired_total",
			"Number of expired cart records removed, by mechanism.",
			[]string{"mechanism"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.activeDesc
	ch <- c.expiredDesc
}

// Collect implements prometheus.Collector.
func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(
		c.activeDesc, prometheus.GaugeValue, float64(c.stats.Count()),
	)

	lazy, swept := c.stats.ExpiredCounts()
	ch <- prometheus.MustNewConstMetric(
		c.expiredDesc, prometheus.CounterValue, float64(lazy), "lazy",
	)
	ch <- prometheus.MustNewConstMetric(
		c.expiredDesc, prometheus.CounterValue, float64(swept), "sweep",
	)
}
