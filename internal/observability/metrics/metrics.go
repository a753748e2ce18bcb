package metrics

import "github.com/prometheus/client_golang/prometheus"

// MatchingMetrics exposes counters/histograms for the matching engine.
type MatchingMetrics struct {
	submittedTotal  *prometheus.CounterVec
	transitionTotal *prometheus.CounterVec
	acceptLatency   *prometheus.HistogramVec
}

func NewMatchingMetrics(reg prometheus.Registerer) *MatchingMetrics {
	m := &MatchingMetrics{
		submittedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Subsystem: "matching",
			Name:      "requests_submitted_total",
			Help:      "Total interpretation requests submitted",
		}, []string{"language", "stat"}),
		transitionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carebridge",
			Subsystem: "matching",
			Name:      "transitions_total",
			Help:      "Total lifecycle transitions by operation and outcome",
		}, []string{"op", "outcome"}),
		acceptLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "carebridge",
			Subsystem: "matching",
			Name:      "queue_wait_seconds",
			Help:      "Time a request spent pending before acceptance",
			Buckets:   []float64{1, 10, 30, 60, 300, 900, 3600, 14400},
		}, []string{"stat"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submittedTotal, m.transitionTotal, m.acceptLatency)
	return m
}

func (m *MatchingMetrics) ObserveSubmitted(language string, stat bool) {
	if m == nil {
		return
	}
	m.submittedTotal.WithLabelValues(language, boolLabel(stat)).Inc()
}

func (m *MatchingMetrics) ObserveTransition(op, outcome string) {
	if m == nil {
		return
	}
	m.transitionTotal.WithLabelValues(op, outcome).Inc()
}

func (m *MatchingMetrics) ObserveQueueWait(stat bool, seconds float64) {
	if m == nil {
		return
	}
	m.acceptLatency.WithLabelValues(boolLabel(stat)).Observe(seconds)
}

func boolLabel(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
