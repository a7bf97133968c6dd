package render

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dubmix/internal/audio"
	"dubmix/internal/logging"
	"dubmix/internal/segment"
	"dubmix/internal/synth"
)

const retryBackoff = 250 * time.Millisecond

// ErrSynthesisFailed wraps a segment whose synthesis failed after every retry.
var ErrSynthesisFailed = errors.New("synthesis failed")

// clipResult is the synthesized audio for one segment.
type clipResult struct {
	audio       audio.Buffer
	substituted bool
	err         error
}

// synthesizeAll produces one buffer per segment, in segment order. Segments
// are processed in batches of [render] batch_size with at most
// [synth] concurrency requests in flight.
func (r *Renderer) synthesizeAll(ctx context.Context, segments []segment.Segment) ([]audio.Buffer, int, error) {
	results := make([]clipResult, len(segments))
	limit := max(r.cfg.Synth.Concurrency, 1)
	sampler := logging.NewProgressSampler(25)

	offset := 0
	for _, batch := range segment.Batches(segments, r.cfg.Render.BatchSize) {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		sem := make(chan struct{}, limit)
		var wg sync.WaitGroup
		for i, seg := range batch {
			idx := offset + i
			wg.Add(1)
			sem <- struct{}{}
			go func(idx int, seg segment.Segment) {
				defer wg.Done()
				defer func() { <-sem }()
				results[idx] = r.synthesizeOne(ctx, seg)
			}(idx, seg)
		}
		wg.Wait()
		offset += len(batch)

		percent := float64(offset) / float64(len(segments)) * 100
		if sampler.ShouldLog(percent, "synthesize") {
			r.logger.Info("synthesis progress",
				logging.Int("done", offset),
				logging.Int("total", len(segments)),
				logging.Float64("percent", percent),
			)
		}
	}

	audios := make([]audio.Buffer, len(results))
	substituted := 0
	for i, res := range results {
		if res.err != nil {
			return nil, 0, res.err
		}
		if res.substituted {
			substituted++
		}
		audios[i] = res.audio
	}
	return audios, substituted, nil
}

func (r *Renderer) synthesizeOne(ctx context.Context, seg segment.Segment) clipResult {
	segCtx := logging.WithSegmentID(ctx, seg.ID)
	logger := logging.WithContext(segCtx, r.logger)

	// Segment speakers are diarization labels, not voices.
	req := synth.Request{
		SegmentID: seg.ID,
		Text:      seg.Text,
		Speaker:   r.defaults.Speaker,
		Params:    r.defaults.Params,
	}

	attempts := max(r.cfg.Synth.Retries, 0) + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		started := time.Now()
		buf, err := r.synth.Synthesize(segCtx, req)
		r.metrics.ObserveSynthesis(time.Since(started).Seconds())
		// Resampling and stretching need at least two samples.
		if err == nil && buf.Len() <= 1 {
			err = fmt.Errorf("segment %d: %w: clip has %d samples", seg.ID, audio.ErrDegenerateAudio, buf.Len())
		}
		if err == nil {
			logger.Debug("clip synthesized",
				logging.Int("attempt", attempt),
				logging.Float64("clip_seconds", buf.Duration()),
				logging.Float64("slot_seconds", seg.Duration()),
			)
			return clipResult{audio: buf}
		}
		lastErr = err
		if ctx.Err() != nil || errors.Is(err, synth.ErrEmptyText) {
			break
		}
		if attempt < attempts {
			logger.Debug("synthesis attempt failed", logging.Int("attempt", attempt), logging.Error(err))
			select {
			case <-time.After(retryBackoff * time.Duration(attempt)):
			case <-ctx.Done():
			}
		}
	}

	if ctx.Err() != nil {
		return clipResult{err: ctx.Err()}
	}
	if !r.cfg.Render.SubstituteSilence {
		return clipResult{err: fmt.Errorf("segment %d: %w: %w", seg.ID, ErrSynthesisFailed, lastErr)}
	}

	r.metrics.IncSubstituted()
	logging.WarnWithContext(logger, "segment replaced by silence", "synthesis_failed",
		logging.Error(lastErr),
		logging.Int("attempts", attempts),
		logging.String(logging.FieldErrorHint, "check the synth backend output for this segment"),
		logging.String(logging.FieldImpact, "segment is silent in the rendered output"),
	)
	silence := audio.Silence(seg.Duration(), r.cfg.Mixer.SampleRate)
	if silence.Len() <= 1 {
		silence = audio.Buffer{Samples: make([]float32, 2), SampleRate: r.cfg.Mixer.SampleRate}
	}
	return clipResult{audio: silence, substituted: true}
}
