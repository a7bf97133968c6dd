package align

import (
	"fmt"
	"log/slog"
	"math"

	"dubmix/internal/audio"
	"dubmix/internal/logging"
	"dubmix/internal/segment"
)

// Options configures the stretch planner.
type Options struct {
	// Padding widens each window on both sides, in seconds.
	Padding float64
	// StretchTolerance is the band around 1.0 inside which no stretch is applied.
	StretchTolerance float64
}

// DefaultOptions mirrors the engine defaults.
func DefaultOptions() Options {
	return Options{Padding: 0.1, StretchTolerance: 0.08}
}

// Planner computes stretch-to-window placements.
type Planner struct {
	opts   Options
	logger *slog.Logger
}

// NewPlanner validates opts and returns a planner. A nil logger discards output.
func NewPlanner(opts Options, logger *slog.Logger) (*Planner, error) {
	if opts.Padding < 0 || math.IsNaN(opts.Padding) {
		return nil, fmt.Errorf("align: padding must be >= 0, got %v", opts.Padding)
	}
	if opts.StretchTolerance < 0 || math.IsNaN(opts.StretchTolerance) {
		return nil, fmt.Errorf("align: stretch tolerance must be >= 0, got %v", opts.StretchTolerance)
	}
	return &Planner{opts: opts, logger: logging.NewComponentLogger(logger, "align")}, nil
}

// Align implements Aligner.
func (p *Planner) Align(segments []segment.Segment, audios []audio.Buffer) ([]AlignedChunk, error) {
	return p.Plan(segments, audios)
}

// Plan returns one chunk per segment, in order.
func (p *Planner) Plan(segments []segment.Segment, audios []audio.Buffer) ([]AlignedChunk, error) {
	if err := checkCounts(segments, audios); err != nil {
		return nil, err
	}

	chunks := make([]AlignedChunk, 0, len(segments))
	prevEnd := 0.0
	stretched := 0
	for i, seg := range segments {
		buf := audios[i]
		if err := checkAudio(seg, buf); err != nil {
			return nil, err
		}
		start := math.Max(seg.Start-p.opts.Padding, prevEnd)
		end := math.Max(seg.End+p.opts.Padding, start+MinimumWindow)

		factor := (end - start) / buf.Duration()
		if math.Abs(1-factor) <= p.opts.StretchTolerance {
			factor = 1.0
		} else {
			stretched++
		}

		chunks = append(chunks, AlignedChunk{
			Segment:       seg,
			Audio:         buf,
			TargetStart:   start,
			TargetEnd:     end,
			StretchFactor: factor,
		})
		prevEnd = end
	}

	p.logger.Debug("alignment planned",
		logging.String("policy", string(PolicyStretch)),
		logging.Int("chunks", len(chunks)),
		logging.Int("stretched", stretched),
	)
	return chunks, nil
}
