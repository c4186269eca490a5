package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CartTotalsTotal counts cart total calculations by outcome.
	CartTotalsTotal *prometheus.CounterVec
	// CartMutationsTotal counts cart writes by operation and outcome.
	CartMutationsTotal *prometheus.CounterVec
	// CatalogItems tracks the number of items currently loaded.
	CatalogItems prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers the domain collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CartTotalsTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_totals_total",
			Help:      "Count of cart total calculations by outcome.",
		}, []string{"result"}))
		CartMutationsTotal = registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart writes by operation and outcome.",
		}, []string{"op", "result"}))
		CatalogItems = registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_items",
			Help:      "Number of catalog items currently loaded.",
		}))
	})
}

// CountCartTotal records a total calculation outcome. Safe to call before
// registration; it then does nothing.
func CountCartTotal(result string) {
	if CartTotalsTotal != nil {
		CartTotalsTotal.WithLabelValues(result).Inc()
	}
}

// CountCartMutation records a cart write outcome.
func CountCartMutation(op, result string) {
	if CartMutationsTotal != nil {
		CartMutationsTotal.WithLabelValues(op, result).Inc()
	}
}

// SetCatalogItems records the loaded catalog size.
func SetCatalogItems(n int) {
	if CatalogItems != nil {
		CatalogItems.Set(float64(n))
	}
}
