package snapshot

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsConstLabelsAndDuration(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry, MetricsConfig{ServiceName: "scrooge-test", Environment: "test"})

	m.observeRun(runStatusSuccess, 2*time.Second)
	m.observeRun(runStatusInProgress, 0)
	m.incItem("asset", OutcomeRecorded)

	labels := map[string]string{"service": "scrooge-test", "env": "test", "status": runStatusSuccess}
	if got := findMetric(t, registry, "scrooge_snapshot_runs_total", labels).GetCounter().GetValue(); got != 1 {
		t.Fatalf("expected 1 successful run, got %v", got)
	}

	hist := findMetric(t, registry, "scrooge_snapshot_run_duration_seconds", map[string]string{"service": "scrooge-test", "env": "test"}).GetHistogram()
	if hist.GetSampleCount() != 1 {
		t.Fatalf("in-progress runs must not be timed, got %d samples", hist.GetSampleCount())
	}
	if hist.GetSampleSum() != 2 {
		t.Fatalf("expected 2s observed, got %v", hist.GetSampleSum())
	}
}

func TestMarkSuccessOnlyMovesForward(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry, MetricsConfig{})

	newer := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	older := newer.AddDate(0, 0, -1)
	m.markSuccess(newer)
	m.markSuccess(older)

	labels := map[string]string{"service": "scrooge", "env": "unknown"}
	if got := findMetric(t, registry, "scrooge_snapshot_last_success_date_seconds", labels).GetGauge().GetValue(); got != float64(newer.Unix()) {
		t.Fatalf("expected gauge to stay at %d, got %v", newer.Unix(), got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.incItem("asset", OutcomeFailed)
	m.observeRun(runStatusFailed, time.Second)
	m.markSuccess(time.Now())
}

func findMetric(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) *dto.Metric {
	t.Helper()
	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.Metric {
			if labelsMatch(metric, labels) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s with labels %v not found", name, labels)
	return nil
}

func labelsMatch(metric *dto.Metric, labels map[string]string) bool {
	if len(metric.Label) != len(labels) {
		return false
	}
	for _, label := range metric.Label {
		if labels[label.GetName()] != label.GetValue() {
			return false
		}
	}
	return true
}
