package audio

import (
	"errors"
	"math"
)

var (
	// ErrDegenerateAudio marks buffers too short to interpolate (one sample or fewer).
	ErrDegenerateAudio = errors.New("degenerate audio")
	// ErrInvalidParameter marks non-positive sample rates or stretch factors.
	ErrInvalidParameter = errors.New("invalid audio parameter")
)

// Buffer is a mono run of float samples in the nominal range [-1, 1].
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Len returns the number of samples.
func (b Buffer) Len() int {
	return len(b.Samples)
}

// Duration returns the buffer length in seconds. Buffers without a valid
// sample rate report zero.
func (b Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(len(b.Samples)) / float64(b.SampleRate)
}

// Empty reports whether the buffer carries no playable audio.
func (b Buffer) Empty() bool {
	return len(b.Samples) == 0 || b.SampleRate <= 0
}

// Silence returns a zeroed buffer of the given duration.
func Silence(seconds float64, sampleRate int) Buffer {
	n := SamplesFor(seconds, sampleRate)
	return Buffer{Samples: make([]float32, n), SampleRate: sampleRate}
}

// SamplesFor converts seconds to a rounded, non-negative sample count.
func SamplesFor(seconds float64, sampleRate int) int {
	if seconds <= 0 || sampleRate <= 0 {
		return 0
	}
	return int(math.Round(seconds * float64(sampleRate)))
}

// DBToGain converts decibels to a linear amplitude multiplier.
func DBToGain(db float64) float64 {
	return math.Pow(10, db/20.0)
}

// Peak returns the largest absolute sample value.
func Peak(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		v := math.Abs(float64(s))
		if v > peak {
			peak = v
		}
	}
	return peak
}

// Clip hard-limits samples to [-1, 1] in place and returns how many were altered.
func Clip(samples []float32) int {
	clipped := 0
	for i, s := range samples {
		switch {
		case s > 1:
			samples[i] = 1
			clipped++
		case s < -1:
			samples[i] = -1
			clipped++
		}
	}
	return clipped
}
