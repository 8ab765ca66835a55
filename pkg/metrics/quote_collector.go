package metrics

import (
	"context"
	"fmt"

	"github.com/landclear/quote-planner/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type quoteStatsCollector struct {
	store          store.Store
	totalQuotes    *prometheus.Desc
	totalByZone    *prometheus.Desc
	totalByPackage *prometheus.Desc
}

// NewQuoteStatsCollector reports the stored quote counts on every scrape.
func NewQuoteStatsCollector(s store.Store) prometheus.Collector {
	fqName := func(name string) string {
		return fmt.Sprintf("%s_stored_%s", quotePlanner, name)
	}

	return &quoteStatsCollector{
		store: s,
		totalQuotes: prometheus.NewDesc(
			fqName("quotes_total"),
			"Total number of stored quotes.",
			nil,
			prometheus.Labels{},
		),
		totalByZone: prometheus.NewDesc(
			fqName("quotes_by_zone_total"),
			"Stored quotes by travel zone.",
			[]string{zoneLabel},
			prometheus.Labels{},
		),
		totalByPackage: prometheus.NewDesc(
			fqName("quotes_by_package_total"),
			"Stored quotes by service package.",
			[]string{packageLabel},
			prometheus.Labels{},
		),
	}
}

func (c *quoteStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalQuotes
	ch <- c.totalByZone
	ch <- c.totalByPackage
}

// Collect implements Collector.
func (c *quoteStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.store.Quote().Statistics(context.Background())
	if err != nil {
		zap.S().Named("quote_collector").Errorf("failed to collect quote statistics: %s", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.totalQuotes, prometheus.GaugeValue, float64(stats.Total))

	for zone, total := range stats.ByZone {
		ch <- prometheus.MustNewConstMetric(c.totalByZone, prometheus.GaugeValue, float64(total), zone)
	}

	for pkg, total := range stats.ByPackage {
		ch <- prometheus.MustNewConstMetric(c.totalByPackage, prometheus.GaugeValue, float64(total), pkg)
	}
}
