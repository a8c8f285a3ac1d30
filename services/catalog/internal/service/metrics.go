package service

import "github.com/prometheus/client_golang/prometheus"

// unknownModeLabel stands in for caller-supplied modes that are not
// recognized, keeping the requested label bounded.
const unknownModeLabel = "unknown"

// Metrics counts catalog traffic. A nil *Metrics records nothing.
type Metrics struct {
	searches        *prometheus.CounterVec
	recommendations *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
}

// NewMetrics registers the catalog instruments with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_search_requests_total",
			Help: "Search requests by sort key.",
		}, []string{"sort_by"}),
		recommendations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_recommendations_total",
			Help: "Recommendation panels served by resolved mode.",
		}, []string{"mode"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_recommendation_fallbacks_total",
			Help: "Recommendation requests answered with featured products instead.",
		}, []string{"requested", "reason"}),
	}
	reg.MustRegister(m.searches, m.recommendations, m.fallbacks)
	return m
}

func (m *Metrics) search(sortBy string) {
	if m != nil {
		m.searches.WithLabelValues(sortBy).Inc()
	}
}

func (m *Metrics) recommendation(mode string) {
	if m != nil {
		m.recommendations.WithLabelValues(mode).Inc()
	}
}

func (m *Metrics) fallback(requested, reason string) {
	if m != nil {
		m.fallbacks.WithLabelValues(requested, reason).Inc()
	}
}
