// Package metrics provides Prometheus metrics for cloud sync runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Row outcomes.
const (
	OutcomeSynced  = "synced"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Run results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Sync holds the sync coordinator's counters. A nil *Sync is valid and records nothing.
type Sync struct {
	rowsTotal *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	runsTotal *prometheus.CounterVec
}

// NewSync creates sync metrics and registers them on reg.
func NewSync(reg prometheus.Registerer) (*Sync, error) {
	m := &Sync{
		rowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logifyer_sync_rows_total",
				Help: "Rows processed by sync, by direction, table and outcome",
			},
			[]string{"direction", "table", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "logifyer_sync_duration_seconds",
				Help: "Wall time of a sync run",
				// 50ms to ~100s
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
			},
			[]string{"direction"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logifyer_sync_runs_total",
				Help: "Sync runs, by direction and result",
			},
			[]string{"direction", "result"},
		),
	}
	if err := reg.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Sync) Describe(ch chan<- *prometheus.Desc) {
	m.rowsTotal.Describe(ch)
	m.duration.Describe(ch)
	m.runsTotal.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Sync) Collect(ch chan<- prometheus.Metric) {
	m.rowsTotal.Collect(ch)
	m.duration.Collect(ch)
	m.runsTotal.Collect(ch)
}

// Row counts one row of table moved in direction with the given outcome.
func (m *Sync) Row(direction, table, outcome string) {
	if m == nil {
		return
	}
	m.rowsTotal.WithLabelValues(direction, table, outcome).Inc()
}

// Rows counts n rows at once; n <= 0 records nothing.
func (m *Sync) Rows(direction, table, outcome string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsTotal.WithLabelValues(direction, table, outcome).Add(float64(n))
}

// Run records a finished run.
func (m *Sync) Run(direction string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.runsTotal.WithLabelValues(direction, result).Inc()
	m.duration.WithLabelValues(direction).Observe(elapsed.Seconds())
}
