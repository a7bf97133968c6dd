// Package audio holds the mono sample buffer shared by every stage of the
// dubbing engine together with the pure transforms that operate on it.
//
// Resample and TimeStretch remap a buffer's duration by piecewise-linear
// interpolation over the sample index axis. Both are pitch-naive: stretching
// speech changes its pitch along with its length. Callers that need
// pitch-preserving correction must do it upstream before handing buffers to
// the engine.
//
// Transforms never mutate their input. The documented no-op fast paths return
// the input buffer itself so no allocation happens for clips that already
// match.
package audio
