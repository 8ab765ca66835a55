package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	quotePlanner = "quote_planner"

	// Estimation metrics
	estimatesTotal     = "estimates_total"
	estimateTotalPrice = "estimate_total_price"

	// Geocoding metrics
	geocodeFallbacksTotal = "geocode_fallbacks_total"

	// Cache metrics
	estimateCacheTotal = "estimate_cache_total"

	// Labels
	packageLabel     = "package"
	zoneLabel        = "zone"
	reasonLabel      = "reason"
	cacheResultLabel = "result"
)

var estimatesTotalLabels = []string{
	packageLabel,
	zoneLabel,
}

/**
* Metrics definition
**/
var estimatesTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: quotePlanner,
		Name:      estimatesTotal,
		Help:      "number of estimates computed",
	},
	estimatesTotalLabels,
)

var estimateTotalPriceMetric = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Subsystem: quotePlanner,
		Name:      estimateTotalPrice,
		Help:      "total price of computed estimates, in dollars",
		Buckets:   []float64{1500, 2500, 5000, 10000, 20000, 40000, 80000},
	},
	[]string{packageLabel},
)

var geocodeFallbacksTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: quotePlanner,
		Name:      geocodeFallbacksTotal,
		Help:      "number of location lookups that fell back to an approximate source",
	},
	[]string{reasonLabel},
)

var estimateCacheTotalMetric = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Subsystem: quotePlanner,
		Name:      estimateCacheTotal,
		Help:      "estimate cache lookups by result",
	},
	[]string{cacheResultLabel},
)

func IncreaseEstimatesTotalMetric(pkg, zone string) {
	labels := prometheus.Labels{
		packageLabel: pkg,
		zoneLabel:    zone,
	}
	estimatesTotalMetric.With(labels).Inc()
}

func ObserveEstimateTotalPrice(pkg string, total float64) {
	estimateTotalPriceMetric.With(prometheus.Labels{packageLabel: pkg}).Observe(total)
}

// IncreaseGeocodeFallbacksMetric has the signature of a geocoding fallback observer.
func IncreaseGeocodeFallbacksMetric(reason string) {
	geocodeFallbacksTotalMetric.With(prometheus.Labels{reasonLabel: reason}).Inc()
}

func IncreaseEstimateCacheMetric(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	estimateCacheTotalMetric.With(prometheus.Labels{cacheResultLabel: result}).Inc()
}

func init() {
	registerMetrics()
}

func registerMetrics() {
	prometheus.MustRegister(estimatesTotalMetric)
	prometheus.MustRegister(estimateTotalPriceMetric)
	prometheus.MustRegister(geocodeFallbacksTotalMetric)
	prometheus.MustRegister(estimateCacheTotalMetric)
	prometheus.MustRegister(totalUniqueLeadsPerWeekMetric)
}
