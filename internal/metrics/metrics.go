// Package metrics holds the Prometheus counters and gauges for a render and
// exports them in the node-exporter textfile format.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus counters and gauges for one dubmix process.
type Metrics struct {
	registry            *prometheus.Registry
	segmentsTotal       prometheus.Counter
	substitutedTotal    prometheus.Counter
	stretchedTotal      prometheus.Counter
	clippedSamplesTotal prometheus.Counter
	cacheHitsTotal      prometheus.Counter
	cacheMissesTotal    prometheus.Counter
	synthSeconds        prometheus.Histogram
	outputSeconds       prometheus.Gauge
	lastSuccess         prometheus.Gauge
}

// New creates and registers the render metrics on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	segmentsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dubmix_segments_total",
		Help: "Total number of segments placed on the timeline",
	})
	substitutedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dubmix_segments_substituted_total",
		Help: "Total number of segments replaced by silence after synthesis failed",
	})
	stretchedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dubmix_chunks_stretched_total",
		Help: "Total number of chunks whose stretch factor differs from 1",
	})
	clippedSamplesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dubmix_clipped_samples_total",
		Help: "Total number of output samples hard-clipped to [-1, 1]",
	})
	cacheHitsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dubmix_clip_cache_hits_total",
		Help: "Total number of clips served from the clip cache",
	})
	cacheMissesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dubmix_clip_cache_misses_total",
		Help: "Total number of clips synthesized because the cache had no entry",
	})
	synthSeconds := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "dubmix_synthesis_seconds",
		Help:    "Wall time spent synthesizing one segment",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})
	outputSeconds := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dubmix_output_seconds",
		Help: "Duration of the last rendered output",
	})
	lastSuccess := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "dubmix_last_success_timestamp_seconds",
		Help: "Unix time of the last successful render",
	})

	registry.MustRegister(
		segmentsTotal,
		substitutedTotal,
		stretchedTotal,
		clippedSamplesTotal,
		cacheHitsTotal,
		cacheMissesTotal,
		synthSeconds,
		outputSeconds,
		lastSuccess,
	)

	return &Metrics{
		registry:            registry,
		segmentsTotal:       segmentsTotal,
		substitutedTotal:    substitutedTotal,
		stretchedTotal:      stretchedTotal,
		clippedSamplesTotal: clippedSamplesTotal,
		cacheHitsTotal:      cacheHitsTotal,
		cacheMissesTotal:    cacheMissesTotal,
		synthSeconds:        synthSeconds,
		outputSeconds:       outputSeconds,
		lastSuccess:         lastSuccess,
	}
}

// AddSegments increments the placed segment counter.
func (m *Metrics) AddSegments(n int) {
	m.segmentsTotal.Add(float64(n))
}

// IncSubstituted increments the silence substitution counter.
func (m *Metrics) IncSubstituted() {
	m.substitutedTotal.Inc()
}

// AddStretched increments the stretched chunk counter.
func (m *Metrics) AddStretched(n int) {
	m.stretchedTotal.Add(float64(n))
}

// AddClippedSamples increments the clipped sample counter.
func (m *Metrics) AddClippedSamples(n int) {
	m.clippedSamplesTotal.Add(float64(n))
}

// AddCacheStats records clip cache lookups.
func (m *Metrics) AddCacheStats(hits, misses int64) {
	m.cacheHitsTotal.Add(float64(hits))
	m.cacheMissesTotal.Add(float64(misses))
}

// ObserveSynthesis records the wall time of one synthesis call.
func (m *Metrics) ObserveSynthesis(seconds float64) {
	m.synthSeconds.Observe(seconds)
}

// SetOutputSeconds sets the output duration gauge.
func (m *Metrics) SetOutputSeconds(seconds float64) {
	m.outputSeconds.Set(seconds)
}

// MarkSuccess stamps the last successful render time to now.
func (m *Metrics) MarkSuccess() {
	m.lastSuccess.SetToCurrentTime()
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
