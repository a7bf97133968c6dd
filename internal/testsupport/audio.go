package testsupport

import (
	"math"
	"testing"

	"dubmix/internal/audio"
	"dubmix/internal/segment"
)

// Constant returns a buffer of seconds length filled with value.
func Constant(value float32, seconds float64, rate int) audio.Buffer {
	buf := audio.Silence(seconds, rate)
	for i := range buf.Samples {
		buf.Samples[i] = value
	}
	return buf
}

// Tone returns a sine wave of the given frequency and amplitude.
func Tone(freq, amplitude, seconds float64, rate int) audio.Buffer {
	buf := audio.Silence(seconds, rate)
	for i := range buf.Samples {
		buf.Samples[i] = float32(amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return buf
}

// Segment builds a segment or fails the test.
func Segment(t testing.TB, id int, start, end float64, text string) segment.Segment {
	t.Helper()

	seg, err := segment.New(id, start, end, text)
	if err != nil {
		t.Fatalf("segment.New(%d): %v", id, err)
	}
	return seg
}
