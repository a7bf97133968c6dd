package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubmix/internal/metrics"
)

func gathered(t *testing.T, m *metrics.Metrics) map[string]float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	values := make(map[string]float64, len(families))
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				values[family.GetName()] = metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				values[family.GetName()] = metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				values[family.GetName()] = float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}
	return values
}

func TestCountersAccumulate(t *testing.T) {
	m := metrics.New()
	m.AddSegments(3)
	m.AddSegments(2)
	m.IncSubstituted()
	m.AddStretched(4)
	m.AddClippedSamples(17)
	m.AddCacheStats(2, 3)
	m.ObserveSynthesis(0.3)
	m.SetOutputSeconds(12.5)

	values := gathered(t, m)
	want := map[string]float64{
		"dubmix_segments_total":             5,
		"dubmix_segments_substituted_total": 1,
		"dubmix_chunks_stretched_total":     4,
		"dubmix_clipped_samples_total":      17,
		"dubmix_clip_cache_hits_total":      2,
		"dubmix_clip_cache_misses_total":    3,
		"dubmix_synthesis_seconds":          1,
		"dubmix_output_seconds":             12.5,
	}
	for name, v := range want {
		if values[name] != v {
			t.Fatalf("%s = %v, want %v", name, values[name], v)
		}
	}
}

func TestWriteTextfile(t *testing.T) {
	m := metrics.New()
	m.AddSegments(1)
	m.MarkSuccess()

	path := filepath.Join(t.TempDir(), "textfile", "dubmix.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{"# TYPE dubmix_segments_total counter", "dubmix_segments_total 1", "dubmix_last_success_timestamp_seconds"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %q in textfile:\n%s", want, content)
		}
	}
}
