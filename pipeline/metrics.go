package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "revforecast"

// Metrics records pipeline outcomes and stage latencies
type Metrics struct {
	RunsTotal     *prometheus.CounterVec
	StageDuration *prometheus.HistogramVec
	HistoryRows   prometheus.Histogram
}

// NewMetrics registers the pipeline metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of forecast runs by outcome",
			},
			[]string{"outcome"},
		),
		StageDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each pipeline stage in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		HistoryRows: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "history_rows",
				Help:      "Distribution of cleaned history sizes",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 100000},
			},
		),
	}
}

func (m *Metrics) recordRun(outcome string) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) recordStage(stage string, seconds float64) {
	if m == nil {
		return
	}
	m.StageDuration.WithLabelValues(stage).Observe(seconds)
}

func (m *Metrics) recordRows(n int) {
	if m == nil {
		return
	}
	m.HistoryRows.Observe(float64(n))
}
