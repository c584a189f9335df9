package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/3-lines-studio/sassbuild/internal/core"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRender(time.Now(), "")
	m.ObserveRender(time.Now(), "compile")
	m.ObserveDependencies(PhaseSource, []core.Dependency{core.Resolved("a"), core.Missing("b"), core.Resolved("c")})

	if got := value(t, m.RenderCount); got != 2 {
		t.Errorf("render count = %v, want 2", got)
	}
	if got := value(t, m.RenderFailed.WithLabelValues("compile")); got != 1 {
		t.Errorf("compile failures = %v, want 1", got)
	}
	if got := value(t, m.Dependencies.WithLabelValues(PhaseSource, "resolved")); got != 2 {
		t.Errorf("resolved source dependencies = %v, want 2", got)
	}
	if got := value(t, m.Dependencies.WithLabelValues(PhaseSource, "missing")); got != 1 {
		t.Errorf("missing source dependencies = %v, want 1", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	if len(families) == 0 {
		t.Error("no metric families registered")
	}
}

func TestUnregistered(t *testing.T) {
	a := New(nil)
	b := New(nil)
	a.RenderCount.Inc()
	if got := value(t, b.RenderCount); got != 0 {
		t.Errorf("independent metrics share state: %v", got)
	}
}

func value(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}
