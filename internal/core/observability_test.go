package core

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.Observe("add_shopping_item", true, 2*time.Millisecond)
	rec.Observe("add_shopping_item", true, 3*time.Millisecond)
	rec.Observe("add_shopping_item", false, time.Millisecond)
	rec.Observe("", true, time.Millisecond)

	snap := rec.Snapshot()
	if got := snap.DurationsMS["add_shopping_item"]; got != 6 {
		t.Fatalf("durations = %v, want 6ms total", got)
	}
	if snap.Results["add_shopping_item"]["success"] != 2 {
		t.Fatalf("success count = %v", snap.Results)
	}
	if snap.Results["add_shopping_item"]["error"] != 1 {
		t.Fatalf("error count = %v", snap.Results)
	}
	if _, ok := snap.Results[""]; ok {
		t.Fatal("empty operation recorded")
	}
	if rec.Name() == "" {
		t.Fatal("generated name empty")
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("NewPrometheusMetricsRecorder: %v", err)
	}
	rec.Observe("toggle_shopping_item", true, 5*time.Millisecond)
	rec.Observe("toggle_shopping_item", false, time.Millisecond)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	if !names["homestock_operation_duration_seconds"] || !names["homestock_operation_results_total"] {
		t.Fatalf("registered families: %v", names)
	}
}

func TestPrometheusMetricsRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatal("second registration should fail")
	}
}
