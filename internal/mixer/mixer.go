package mixer

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"

	"dubmix/internal/align"
	"dubmix/internal/audio"
	"dubmix/internal/logging"
)

// ErrEmptyChunkList marks a Mix call with nothing to render.
var ErrEmptyChunkList = errors.New("no chunks to mix")

// Options configures a Mixer. Gains are linear multipliers.
type Options struct {
	SampleRate  int
	DuckingGain float64
	MusicGain   float64
	VoiceGain   float64
	// Workers bounds concurrent chunk transforms; <= 0 means runtime.NumCPU.
	Workers int
}

// DefaultOptions returns 22.05 kHz, -6 dB ducking, -2 dB music, unity voice.
func DefaultOptions() Options {
	return Options{
		SampleRate:  22050,
		DuckingGain: audio.DBToGain(-6),
		MusicGain:   audio.DBToGain(-2),
		VoiceGain:   1,
		Workers:     runtime.NumCPU(),
	}
}

// Validate reports the first invalid option.
func (o Options) Validate() error {
	switch {
	case o.SampleRate <= 0:
		return fmt.Errorf("mixer: sample rate must be positive, got %d", o.SampleRate)
	case !(o.DuckingGain > 0 && o.DuckingGain <= 1):
		return fmt.Errorf("mixer: ducking gain must be in (0, 1], got %v", o.DuckingGain)
	case !(o.MusicGain > 0) || math.IsInf(o.MusicGain, 0):
		return fmt.Errorf("mixer: music gain must be positive, got %v", o.MusicGain)
	case !(o.VoiceGain > 0) || math.IsInf(o.VoiceGain, 0):
		return fmt.Errorf("mixer: voice gain must be positive, got %v", o.VoiceGain)
	}
	return nil
}

// Result is the rendered timeline plus clipping statistics.
type Result struct {
	Audio audio.Buffer
	// ClippedSamples counts samples the hard clip changed.
	ClippedSamples int
	// Peak is the largest absolute sample before clipping.
	Peak float64
}

// Mixer renders aligned chunks onto a timeline.
type Mixer struct {
	opts   Options
	logger *slog.Logger
}

// New validates opts and returns a mixer. A nil logger discards output.
func New(opts Options, logger *slog.Logger) (*Mixer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	return &Mixer{opts: opts, logger: logging.NewComponentLogger(logger, "mixer")}, nil
}

// SampleRate returns the output rate.
func (m *Mixer) SampleRate() int {
	return m.opts.SampleRate
}

// Mix places every chunk, ducks and blends the background when present, and
// hard-clips the result. background may be nil.
func (m *Mixer) Mix(chunks []align.AlignedChunk, background *audio.Buffer) (Result, error) {
	if len(chunks) == 0 {
		return Result{}, ErrEmptyChunkList
	}

	rate := m.opts.SampleRate
	totalEnd := 0.0
	for _, c := range chunks {
		totalEnd = math.Max(totalEnd, c.TargetEnd)
	}
	timeline := NewTimeline(rate, int(totalEnd*float64(rate))+rate)

	rendered, err := m.transformAll(chunks)
	if err != nil {
		return Result{}, err
	}
	duck := float32(m.opts.DuckingGain)
	for i, c := range chunks {
		offset := int(c.TargetStart * float64(rate))
		timeline.Place(offset, rendered[i].Samples, duck)
	}

	voiceGain := float32(m.opts.VoiceGain)
	voice := timeline.Voice()
	for i := range voice {
		voice[i] *= voiceGain
	}

	mixed := voice
	if background != nil && !background.Empty() {
		mixed, err = m.blendBackground(timeline, *background)
		if err != nil {
			return Result{}, err
		}
	}

	out := audio.Buffer{Samples: mixed, SampleRate: rate}
	peak := audio.Peak(out.Samples)
	clipped := audio.Clip(out.Samples)

	m.logger.Debug("mix complete",
		logging.Int("chunks", len(chunks)),
		logging.Float64("duration_seconds", out.Duration()),
		logging.Bool("background", background != nil),
		logging.Int("clipped_samples", clipped),
		logging.Float64("peak", peak),
	)
	return Result{Audio: out, ClippedSamples: clipped, Peak: peak}, nil
}

func (m *Mixer) blendBackground(timeline *Timeline, background audio.Buffer) ([]float32, error) {
	bg, err := audio.Resample(background, m.opts.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("mixer: resample background: %w", err)
	}
	voice := timeline.Voice()
	n := max(len(voice), bg.Len())
	music := float32(m.opts.MusicGain)
	out := make([]float32, n)
	for i := range out {
		var sample float32
		if i < bg.Len() {
			sample = bg.Samples[i] * music * timeline.DuckAt(i)
		}
		if i < len(voice) {
			sample += voice[i]
		}
		out[i] = sample
	}
	return out, nil
}

// transformAll resamples and stretches each chunk on a bounded worker pool.
// Each worker writes only its own slot of the result.
func (m *Mixer) transformAll(chunks []align.AlignedChunk) ([]audio.Buffer, error) {
	out := make([]audio.Buffer, len(chunks))
	errs := make([]error, len(chunks))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := min(m.opts.Workers, len(chunks))
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i], errs[i] = m.transform(chunks[i])
			}
		}()
	}
	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, &align.SegmentError{SegmentID: chunks[i].Segment.ID, Err: err}
		}
	}
	return out, nil
}

func (m *Mixer) transform(chunk align.AlignedChunk) (audio.Buffer, error) {
	buf, err := audio.Resample(chunk.Audio, m.opts.SampleRate)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("resample: %w", err)
	}
	buf, err = audio.TimeStretch(buf, chunk.StretchFactor)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("stretch: %w", err)
	}
	return buf, nil
}
