// Package mixer renders aligned chunks and an optional background track into
// one mono timeline.
//
// Chunk transforms (resample to the mixer rate, then time-stretch) run on a
// bounded worker pool; placement into the shared Timeline happens on the
// calling goroutine in chunk order. The background is attenuated under speech
// through a ducking curve that keeps the strongest duck where chunks overlap.
// Output is hard-clipped to [-1, 1]; there is no soft limiter.
package mixer
