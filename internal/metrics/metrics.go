// Package metrics exposes Prometheus counters for the forecasting
// engines. The counters track work done (wards predicted, degraded
// wards, scenario overrides) and never feed back into any computation,
// so engine purity is unaffected. The host application may expose
// Registry on its metrics endpoint.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Registry is the dedicated registry all forecast metrics are
// registered on.
var Registry = prometheus.NewRegistry()

var (
	// WardsPredicted counts wards for which a full prediction was produced.
	WardsPredicted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forecast",
		Name:      "wards_predicted_total",
		Help:      "Number of wards for which a full prediction was produced.",
	})

	// WardsDegraded counts contested wards that fell back to retaining
	// the current holder because of missing or unusable data.
	WardsDegraded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forecast",
		Name:      "wards_degraded_total",
		Help:      "Number of contested wards that retained the current holder due to missing data.",
	})

	// OverridesApplied counts scenario overrides applied to a baseline
	// prediction.
	OverridesApplied = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forecast",
		Name:      "overrides_applied_total",
		Help:      "Number of scenario overrides applied.",
	})

	// OverridesIgnored counts scenario overrides ignored as invalid.
	OverridesIgnored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "forecast",
		Name:      "overrides_ignored_total",
		Help:      "Number of scenario overrides ignored as invalid.",
	})
)

func init() {
	Registry.MustRegister(WardsPredicted, WardsDegraded, OverridesApplied, OverridesIgnored)
}
