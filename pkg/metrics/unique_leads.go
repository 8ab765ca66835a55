package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type uniqueLeads struct {
	counter   prometheus.Gauge
	leadCache map[string]struct{}
	mu        sync.RWMutex
}

// Leads
const leadCountPerWeek = "leads_count_per_week"

var totalUniqueLeadsPerWeekMetric = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Subsystem: quotePlanner,
		Name:      leadCountPerWeek,
		Help:      "metrics to record the number of distinct lead emails per week",
	},
)

var UniqueLeadsPerWeek = &uniqueLeads{
	counter:   totalUniqueLeadsPerWeekMetric,
	leadCache: make(map[string]struct{}),
}

func (v *uniqueLeads) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.leadCache = make(map[string]struct{})
	v.counter.Set(0)
}

func (v *uniqueLeads) Count() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.leadCache)
}

// Observe counts email once per week. Empty emails are ignored.
func (v *uniqueLeads) Observe(email string) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if _, exists := v.leadCache[key]; exists {
		return
	}

	v.leadCache[key] = struct{}{}
	v.counter.Inc()
}
