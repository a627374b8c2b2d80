package snapshot

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	runStatusSuccess    = "success"
	runStatusFailed     = "failed"
	runStatusInProgress = "in_progress"
)

// Metrics exports per-run and per-item snapshot counters. A nil *Metrics is a no-op.
type Metrics struct {
	runs        *prometheus.CounterVec
	items       *prometheus.CounterVec
	runDuration prometheus.Histogram
	lastSuccess prometheus.Gauge
	lastDay     atomic.Int64
}

type MetricsConfig struct {
	ServiceName string
	Environment string
}

func NewMetrics(registerer prometheus.Registerer, cfg MetricsConfig) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "scrooge"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}
	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "scrooge_snapshot_runs_total",
			Help:        "Daily snapshot runs by status.",
			ConstLabels: constLabels,
		}, []string{"status"}),
		items: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "scrooge_snapshot_items_total",
			Help:        "Pricing objects handled by the daily snapshot, by pass and outcome.",
			ConstLabels: constLabels,
		}, []string{"pass", "outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "scrooge_snapshot_run_duration_seconds",
			Help:        "Wall time of one daily snapshot run.",
			Buckets:     []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800},
			ConstLabels: constLabels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "scrooge_snapshot_last_success_date_seconds",
			Help:        "Unix time of the most recent snapshot date completed without failures.",
			ConstLabels: constLabels,
		}),
	}
	registerer.MustRegister(m.runs, m.items, m.runDuration, m.lastSuccess)
	return m
}

func (m *Metrics) incItem(pass string, outcome Outcome) {
	if m == nil {
		return
	}
	m.items.WithLabelValues(pass, string(outcome)).Inc()
}

func (m *Metrics) observeRun(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
	if status != runStatusInProgress {
		m.runDuration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) markSuccess(day time.Time) {
	if m == nil {
		return
	}
	unix := day.Unix()
	for {
		prev := m.lastDay.Load()
		if unix <= prev {
			return
		}
		if m.lastDay.CompareAndSwap(prev, unix) {
			m.lastSuccess.Set(float64(unix))
			return
		}
	}
}
