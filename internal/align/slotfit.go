package align

import (
	"fmt"
	"log/slog"
	"math"

	"dubmix/internal/audio"
	"dubmix/internal/logging"
	"dubmix/internal/segment"
)

// SlotFitOptions holds the slot-fit padding constants, in milliseconds.
type SlotFitOptions struct {
	HeadMS     int
	TailMS     int
	OverflowMS int
	FadeMS     int
}

// DefaultSlotFitOptions returns the stock slot-fit constants.
func DefaultSlotFitOptions() SlotFitOptions {
	return SlotFitOptions{HeadMS: 70, TailMS: 120, OverflowMS: 220, FadeMS: 40}
}

func (o SlotFitOptions) validate() error {
	if o.HeadMS < 0 || o.TailMS < 0 || o.OverflowMS < 0 || o.FadeMS < 0 {
		return fmt.Errorf("align: slot-fit durations must be >= 0: %+v", o)
	}
	return nil
}

func msToSamples(ms, rate int) int {
	return audio.SamplesFor(float64(ms)/1000, rate)
}

// FitToSlot pads clip with head and tail silence, then fits it to slot
// seconds. A padded clip longer than slot plus the overflow allowance is
// truncated to the slot and faded out; a clip shorter than the slot is padded
// with trailing silence. Anything in between is returned padded but untrimmed.
func FitToSlot(clip audio.Buffer, slot float64, opts SlotFitOptions) (audio.Buffer, error) {
	if clip.SampleRate <= 0 {
		return audio.Buffer{}, fmt.Errorf("%w: sample rate %d", audio.ErrInvalidParameter, clip.SampleRate)
	}
	if slot <= 0 || math.IsNaN(slot) || math.IsInf(slot, 0) {
		return audio.Buffer{}, fmt.Errorf("%w: slot %v", audio.ErrInvalidParameter, slot)
	}
	if err := opts.validate(); err != nil {
		return audio.Buffer{}, err
	}

	rate := clip.SampleRate
	head := msToSamples(opts.HeadMS, rate)
	tail := msToSamples(opts.TailMS, rate)
	slotLen := max(1, audio.SamplesFor(slot, rate))
	overflow := msToSamples(opts.OverflowMS, rate)

	padded := make([]float32, head+len(clip.Samples)+tail)
	copy(padded[head:], clip.Samples)

	switch {
	case len(padded) > slotLen+overflow:
		cut := audio.Buffer{Samples: padded[:slotLen], SampleRate: rate}
		return audio.FadeOut(cut, float64(opts.FadeMS)/1000), nil
	case len(padded) < slotLen:
		out := make([]float32, slotLen)
		copy(out, padded)
		return audio.Buffer{Samples: out, SampleRate: rate}, nil
	default:
		return audio.Buffer{Samples: padded, SampleRate: rate}, nil
	}
}

// SlotFitter places slot-fitted clips back to back without stretching.
type SlotFitter struct {
	opts   SlotFitOptions
	logger *slog.Logger
}

// NewSlotFitter validates opts and returns a slot fitter.
func NewSlotFitter(opts SlotFitOptions, logger *slog.Logger) (*SlotFitter, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &SlotFitter{opts: opts, logger: logging.NewComponentLogger(logger, "align")}, nil
}

// Align implements Aligner. Each clip is fitted to its segment's duration
// and placed at max(segment start, previous end) with a stretch of 1.0.
func (f *SlotFitter) Align(segments []segment.Segment, audios []audio.Buffer) ([]AlignedChunk, error) {
	if err := checkCounts(segments, audios); err != nil {
		return nil, err
	}

	chunks := make([]AlignedChunk, 0, len(segments))
	prevEnd := 0.0
	trimmed := 0
	for i, seg := range segments {
		buf := audios[i]
		if err := checkAudio(seg, buf); err != nil {
			return nil, err
		}
		fitted, err := FitToSlot(buf, seg.Duration(), f.opts)
		if err != nil {
			return nil, &SegmentError{SegmentID: seg.ID, Err: err}
		}
		if fitted.Len() < buf.Len() {
			trimmed++
		}
		start := math.Max(seg.Start, prevEnd)
		end := start + math.Max(fitted.Duration(), MinimumWindow)
		chunks = append(chunks, AlignedChunk{
			Segment:       seg,
			Audio:         fitted,
			TargetStart:   start,
			TargetEnd:     end,
			StretchFactor: 1.0,
		})
		prevEnd = end
	}

	f.logger.Debug("alignment planned",
		logging.String("policy", string(PolicySlotFit)),
		logging.Int("chunks", len(chunks)),
		logging.Int("trimmed", trimmed),
	)
	return chunks, nil
}
