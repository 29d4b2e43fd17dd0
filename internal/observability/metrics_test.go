package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/signalsfoundry/ionotracer/model"
)

func TestObserveInteractionLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewTracerCollector(reg)
	if err != nil {
		t.Fatalf("NewTracerCollector: %v", err)
	}

	collector.ObserveInteraction(model.GeometryIonosphere, model.BehaviourRefracted)
	collector.ObserveInteraction(model.GeometryIonosphere, model.BehaviourRefracted)
	collector.ObserveInteraction(model.GeometryIonosphere, model.BehaviourReflected)

	if got := testutil.ToFloat64(collector.Interactions.WithLabelValues("ionosphere", "refracted")); got != 2 {
		t.Fatalf("refracted interactions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(collector.Interactions.WithLabelValues("ionosphere", "reflected")); got != 1 {
		t.Fatalf("reflected interactions = %v, want 1", got)
	}
}

func TestObserveRayRecordsTerminationAndLoss(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewTracerCollector(reg)
	if err != nil {
		t.Fatalf("NewTracerCollector: %v", err)
	}

	collector.ObserveRay(model.TerminationTerrain, 12, -0.4)
	collector.ObserveRay(model.TerminationEscaped, 3, 0)

	if got := testutil.ToFloat64(collector.RaysTraced.WithLabelValues("terrain")); got != 1 {
		t.Fatalf("terrain terminations = %v, want 1", got)
	}
	if count := histogramSampleCount(t, reg, "raytracer_ray_interactions", nil); count != 2 {
		t.Fatalf("raytracer_ray_interactions sample_count = %d, want 2", count)
	}
	if sum := histogramSampleSum(t, reg, "raytracer_ray_signal_loss_db"); sum != 0.4 {
		t.Fatalf("raytracer_ray_signal_loss_db sum = %v, want 0.4", sum)
	}
}

func TestRegisterTwiceReusesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewTracerCollector(reg)
	if err != nil {
		t.Fatalf("first NewTracerCollector: %v", err)
	}
	second, err := NewTracerCollector(reg)
	if err != nil {
		t.Fatalf("second NewTracerCollector: %v", err)
	}
	if first.RaysTraced != second.RaysTraced {
		t.Fatalf("expected already-registered counter vec to be reused")
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewTracerCollector(reg)
	if err != nil {
		t.Fatalf("NewTracerCollector: %v", err)
	}
	collector.ObserveRun(1500*time.Millisecond, 3)

	path := filepath.Join(t.TempDir(), "raytracer.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	body := string(data)
	for _, metric := range []string{
		"raytracer_run_duration_seconds",
		"raytracer_run_rays 3",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in textfile output:\n%s", metric, body)
		}
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *TracerCollector
	c.ObserveInteraction(model.GeometryTerrain, model.BehaviourReflected)
	c.ObserveRay(model.TerminationEscaped, 1, 0)
	c.ObserveRun(time.Second, 1)
	if err := c.WriteTextfile("unused"); err != nil {
		t.Fatalf("nil WriteTextfile: %v", err)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	for _, m := range findMetrics(t, gatherer, name) {
		if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
			return m.GetHistogram().GetSampleCount()
		}
	}
	return 0
}

func histogramSampleSum(t *testing.T, gatherer prometheus.Gatherer, name string) float64 {
	t.Helper()

	for _, m := range findMetrics(t, gatherer, name) {
		if m.GetHistogram() != nil {
			return m.GetHistogram().GetSampleSum()
		}
	}
	return 0
}

func findMetrics(t *testing.T, gatherer prometheus.Gatherer, name string) []*dto.Metric {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() == name {
			return mf.Metric
		}
	}
	return nil
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
