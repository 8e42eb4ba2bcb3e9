package devserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Resolution outcomes.
const (
	outcomeMatched  = "matched"
	outcomeNotFound = "not_found"
)

// notFoundRoute is the route label of unmatched resolutions.
const notFoundRoute = "none"

// Metrics holds the dev server's route metrics.
type Metrics struct {
	resolutions   *prometheus.CounterVec
	resolveTime   prometheus.Histogram
	reloadClients prometheus.Gauge
}

// NewMetrics registers the route metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledgerdash",
			Subsystem: "route",
			Name:      "resolutions_total",
			Help:      "Shell requests resolved against the route table, by route and outcome",
		}, []string{"route", "outcome"}),

		resolveTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ledgerdash",
			Subsystem: "route",
			Name:      "resolve_duration_seconds",
			Help:      "Time spent resolving a path against the route table",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005},
		}),

		reloadClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "ledgerdash",
			Name:      "reload_clients",
			Help:      "Number of connected live reload clients",
		}),
	}
}

func (m *Metrics) observeResolve(route string, matched bool, seconds float64) {
	if m == nil {
		return
	}
	outcome := outcomeMatched
	if !matched {
		outcome = outcomeNotFound
		route = notFoundRoute
	}
	m.resolutions.WithLabelValues(route, outcome).Inc()
	m.resolveTime.Observe(seconds)
}

func (m *Metrics) setReloadClients(n int) {
	if m == nil {
		return
	}
	m.reloadClients.Set(float64(n))
}
