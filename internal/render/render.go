package render

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dubmix/internal/align"
	"dubmix/internal/audio"
	"dubmix/internal/config"
	"dubmix/internal/logging"
	"dubmix/internal/metrics"
	"dubmix/internal/mixer"
	"dubmix/internal/preflight"
	"dubmix/internal/segment"
	"dubmix/internal/synth"
	"dubmix/internal/synthcache"
	"dubmix/internal/wavio"
)

// ErrOutputLocked is returned when another render holds the output lock.
var ErrOutputLocked = errors.New("output is locked by another render")

// Request describes one render.
type Request struct {
	// SegmentsPath is a .srt, .vtt or .json segment file.
	SegmentsPath string
	// OutputPath receives the 16-bit mono WAV.
	OutputPath string
	// BackgroundPath is optional.
	BackgroundPath string
}

// Summary reports what a render produced.
type Summary struct {
	RenderID        string
	Segments        int
	Substituted     int
	Stretched       int
	ClippedSamples  int
	Peak            float64
	OutputSeconds   float64
	CacheHits       int64
	CacheMisses     int64
	Elapsed         time.Duration
	OutputPath      string
	BackgroundTrack bool
}

// Plan is the aligned result of synthesizing every segment, before mixing.
type Plan struct {
	Segments    []segment.Segment
	Chunks      []align.AlignedChunk
	Substituted int
	Stretched   int
}

// Renderer wires the synth backend, aligner and mixer together.
type Renderer struct {
	cfg      *config.Config
	logger   *slog.Logger
	synth    synth.Synthesizer
	defaults synth.Request
	cache    *synthcache.Synthesizer
	store    *synthcache.Store
	metrics  *metrics.Metrics
}

// New builds a Renderer around the backend configured in cfg, wrapped by the
// clip cache when [synth] cache is enabled.
func New(cfg *config.Config, logger *slog.Logger) (*Renderer, error) {
	if cfg == nil {
		return nil, errors.New("render: config is required")
	}
	backend, err := synth.New(cfg, logger)
	if err != nil {
		return nil, err
	}
	r, err := NewWithSynthesizer(cfg, backend, logger)
	if err != nil {
		return nil, err
	}
	if cfg.Synth.Cache {
		store, err := synthcache.Open(cfg.Synth.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open clip cache: %w", err)
		}
		cached, err := synthcache.Wrap(store, backend, cacheKey(cfg), logger)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		r.store = store
		r.cache = cached
		r.synth = cached
	}
	return r, nil
}

// NewWithSynthesizer builds a Renderer around an explicit backend.
func NewWithSynthesizer(cfg *config.Config, s synth.Synthesizer, logger *slog.Logger) (*Renderer, error) {
	if cfg == nil {
		return nil, errors.New("render: config is required")
	}
	if s == nil {
		return nil, errors.New("render: synthesizer is required")
	}
	return &Renderer{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "render"),
		synth:    s,
		defaults: synth.DefaultsFromConfig(cfg),
		metrics:  metrics.New(),
	}, nil
}

// cacheKey separates cached clips by backend and, for command backends, by
// the exact program and arguments.
func cacheKey(cfg *config.Config) string {
	if cfg.Synth.Backend != synth.BackendCommand {
		return cfg.Synth.Backend + ":" + cfg.Synth.ClipsDir
	}
	return cfg.Synth.Backend + ":" + cfg.Synth.Command + " " + strings.Join(cfg.Synth.Args, " ")
}

// Metrics exposes the render counters.
func (r *Renderer) Metrics() *metrics.Metrics {
	return r.metrics
}

// Close releases the clip cache.
func (r *Renderer) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	return r.store.Close()
}

// Plan synthesizes and aligns segments without mixing.
func (r *Renderer) Plan(ctx context.Context, segments []segment.Segment) (Plan, error) {
	if len(segments) == 0 {
		return Plan{}, mixer.ErrEmptyChunkList
	}
	aligner, err := AlignerFromConfig(r.cfg, r.logger)
	if err != nil {
		return Plan{}, err
	}

	audios, substituted, err := r.synthesizeAll(ctx, segments)
	if err != nil {
		return Plan{}, err
	}
	chunks, err := aligner.Align(segments, audios)
	if err != nil {
		return Plan{}, err
	}

	stretched := 0
	for _, chunk := range chunks {
		if chunk.StretchFactor != 1 {
			stretched++
		}
	}
	r.metrics.AddSegments(len(chunks))
	r.metrics.AddStretched(stretched)
	return Plan{Segments: segments, Chunks: chunks, Substituted: substituted, Stretched: stretched}, nil
}

// Render runs the whole pipeline for req and writes the output WAV.
func (r *Renderer) Render(ctx context.Context, req Request) (Summary, error) {
	started := time.Now()
	renderID := uuid.NewString()
	ctx = logging.WithRenderID(ctx, renderID)
	logger := logging.WithContext(ctx, r.logger)

	if strings.TrimSpace(req.OutputPath) == "" {
		return Summary{}, errors.New("render: output path is required")
	}
	checks := append(preflight.RunAll(r.cfg), preflight.CheckOutputPath(req.OutputPath))
	needFFmpeg := req.BackgroundPath != "" && !IsWAV(req.BackgroundPath)
	checks = append(checks, preflight.DepResults(preflight.CheckSystemDeps(r.cfg, needFFmpeg))...)
	if err := preflight.Check(checks); err != nil {
		return Summary{}, err
	}

	lock := flock.New(req.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return Summary{}, fmt.Errorf("%w: %s", ErrOutputLocked, req.OutputPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	segments, err := segment.LoadFile(req.SegmentsPath)
	if err != nil {
		return Summary{}, err
	}
	logger.Info("render started",
		logging.String(logging.FieldEventType, "render_start"),
		logging.String("segments_file", req.SegmentsPath),
		logging.Int("segments", len(segments)),
		logging.String("policy", r.cfg.Align.Policy),
		logging.String("backend", r.cfg.Synth.Backend),
	)

	plan, err := r.Plan(ctx, segments)
	if err != nil {
		return Summary{}, err
	}

	var background *audio.Buffer
	if req.BackgroundPath != "" {
		buf, err := r.loadBackground(ctx, req.BackgroundPath)
		if err != nil {
			return Summary{}, err
		}
		background = &buf
	}

	mix, err := mixer.New(MixerOptions(r.cfg), r.logger)
	if err != nil {
		return Summary{}, err
	}
	result, err := mix.Mix(plan.Chunks, background)
	if err != nil {
		return Summary{}, err
	}

	if err := wavio.WriteFile(req.OutputPath, result.Audio); err != nil {
		return Summary{}, fmt.Errorf("write output: %w", err)
	}

	summary := Summary{
		RenderID:        renderID,
		Segments:        len(plan.Chunks),
		Substituted:     plan.Substituted,
		Stretched:       plan.Stretched,
		ClippedSamples:  result.ClippedSamples,
		Peak:            result.Peak,
		OutputSeconds:   result.Audio.Duration(),
		OutputPath:      req.OutputPath,
		BackgroundTrack: background != nil,
	}
	if r.cache != nil {
		stats := r.cache.Stats()
		summary.CacheHits, summary.CacheMisses = stats.Hits, stats.Misses
		r.metrics.AddCacheStats(stats.Hits, stats.Misses)
	}
	r.metrics.AddClippedSamples(result.ClippedSamples)
	r.metrics.SetOutputSeconds(summary.OutputSeconds)
	r.metrics.MarkSuccess()
	summary.Elapsed = time.Since(started)

	if result.ClippedSamples > 0 {
		logging.WarnWithContext(logger, "output clipped", "output_clipped",
			logging.Int("clipped_samples", result.ClippedSamples),
			logging.Float64("peak", result.Peak),
			logging.String(logging.FieldErrorHint, "lower voice_gain_db or music_gain_db"),
			logging.String(logging.FieldImpact, "clipped samples are audibly distorted"),
		)
	}
	if path := strings.TrimSpace(r.cfg.Metrics.Textfile); path != "" {
		if err := r.metrics.WriteTextfile(path); err != nil {
			logging.WarnWithContext(logger, "metrics export failed", "metrics_write_failed",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check [metrics] textfile"),
				logging.String(logging.FieldImpact, "render metrics are not exported"),
			)
		}
	}

	logger.Info("render completed",
		logging.String(logging.FieldEventType, "render_complete"),
		logging.String("output", filepath.Clean(req.OutputPath)),
		logging.Int("segments", summary.Segments),
		logging.Int("substituted", summary.Substituted),
		logging.Int("stretched", summary.Stretched),
		logging.Float64("output_seconds", math.Round(summary.OutputSeconds*1000)/1000),
		logging.Duration("elapsed", summary.Elapsed),
	)
	return summary, nil
}
