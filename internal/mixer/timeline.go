package mixer

// Timeline accumulates placed voice samples alongside a ducking curve.
// Both slices always have the same length and only ever grow.
type Timeline struct {
	voice      []float32
	duck       []float32
	sampleRate int
}

// NewTimeline allocates a timeline of length samples with a flat curve of 1.0.
func NewTimeline(sampleRate, length int) *Timeline {
	length = max(0, length)
	t := &Timeline{
		voice:      make([]float32, length),
		duck:       make([]float32, length),
		sampleRate: sampleRate,
	}
	for i := range t.duck {
		t.duck[i] = 1
	}
	return t
}

// Len returns the current length in samples.
func (t *Timeline) Len() int {
	return len(t.voice)
}

// SampleRate returns the timeline rate.
func (t *Timeline) SampleRate() int {
	return t.sampleRate
}

// Place adds samples at offset and lowers the ducking curve over the covered
// range to min(current, duck). The timeline grows as needed.
func (t *Timeline) Place(offset int, samples []float32, duck float32) {
	if offset < 0 {
		samples = samples[min(len(samples), -offset):]
		offset = 0
	}
	end := offset + len(samples)
	t.grow(end)
	voice := t.voice[offset:end]
	for i, s := range samples {
		voice[i] += s
	}
	duck = min(duck, 1)
	curve := t.duck[offset:end]
	for i := range curve {
		if duck < curve[i] {
			curve[i] = duck
		}
	}
}

// DuckAt returns the ducking curve value at sample i, or 1.0 past the end.
func (t *Timeline) DuckAt(i int) float32 {
	if i < 0 || i >= len(t.duck) {
		return 1
	}
	return t.duck[i]
}

// Voice returns the accumulated voice samples. The slice aliases the timeline.
func (t *Timeline) Voice() []float32 {
	return t.voice
}

func (t *Timeline) grow(n int) {
	extra := n - len(t.voice)
	if extra <= 0 {
		return
	}
	t.voice = append(t.voice, make([]float32, extra)...)
	start := len(t.duck)
	t.duck = append(t.duck, make([]float32, extra)...)
	for i := start; i < len(t.duck); i++ {
		t.duck[i] = 1
	}
}
