package audio

import (
	"fmt"
	"math"
)

// stretchEpsilon is the distance from unity below which TimeStretch is a no-op.
const stretchEpsilon = 1e-3

// Resample converts buf to toRate. The new length is
// round(len × toRate/fromRate). Identical rates return buf unchanged.
func Resample(buf Buffer, toRate int) (Buffer, error) {
	if buf.SampleRate <= 0 || toRate <= 0 {
		return Buffer{}, fmt.Errorf("%w: resample %d Hz -> %d Hz", ErrInvalidParameter, buf.SampleRate, toRate)
	}
	if buf.SampleRate == toRate {
		return buf, nil
	}
	if len(buf.Samples) <= 1 {
		return Buffer{}, fmt.Errorf("%w: resample needs at least 2 samples, got %d", ErrDegenerateAudio, len(buf.Samples))
	}
	n := targetLength(len(buf.Samples), float64(toRate)/float64(buf.SampleRate))
	return Buffer{Samples: interpolate(buf.Samples, n), SampleRate: toRate}, nil
}

// TimeStretch changes the duration of buf by factor without changing its
// sample rate. Factors within 1e-3 of unity return buf unchanged.
func TimeStretch(buf Buffer, factor float64) (Buffer, error) {
	if factor <= 0 || math.IsNaN(factor) || math.IsInf(factor, 0) {
		return Buffer{}, fmt.Errorf("%w: stretch factor %v", ErrInvalidParameter, factor)
	}
	if math.Abs(1-factor) < stretchEpsilon {
		return buf, nil
	}
	if len(buf.Samples) <= 1 {
		return Buffer{}, fmt.Errorf("%w: stretch needs at least 2 samples, got %d", ErrDegenerateAudio, len(buf.Samples))
	}
	n := targetLength(len(buf.Samples), factor)
	return Buffer{Samples: interpolate(buf.Samples, n), SampleRate: buf.SampleRate}, nil
}

// FadeOut returns a copy of buf whose final seconds ramp linearly to silence.
func FadeOut(buf Buffer, seconds float64) Buffer {
	out := Buffer{Samples: make([]float32, len(buf.Samples)), SampleRate: buf.SampleRate}
	copy(out.Samples, buf.Samples)
	n := SamplesFor(seconds, buf.SampleRate)
	if n > len(out.Samples) {
		n = len(out.Samples)
	}
	start := len(out.Samples) - n
	for k := 0; k < n; k++ {
		gain := float32(n-1-k) / float32(n)
		out.Samples[start+k] *= gain
	}
	return out
}

func targetLength(n int, ratio float64) int {
	length := int(math.Round(float64(n) * ratio))
	if length < 1 {
		return 1
	}
	return length
}

// interpolate samples src at n evenly spaced positions spanning [0, len(src)-1].
func interpolate(src []float32, n int) []float32 {
	out := make([]float32, n)
	if n == 1 {
		out[0] = src[0]
		return out
	}
	last := len(src) - 1
	step := float64(last) / float64(n-1)
	for j := 0; j < n-1; j++ {
		pos := float64(j) * step
		i := int(pos)
		if i >= last {
			out[j] = src[last]
			continue
		}
		frac := pos - float64(i)
		a := float64(src[i])
		b := float64(src[i+1])
		out[j] = float32(a + (b-a)*frac)
	}
	out[n-1] = src[last]
	return out
}
