// Package render orchestrates a full dub: it loads segments, synthesizes a
// clip per segment through the configured backend, aligns the clips with the
// configured policy, mixes them over an optional background and writes a
// 16-bit WAV.
//
// The orchestrator owns the retry policy for synthesis. A segment that keeps
// failing is replaced by silence of its own duration when
// render.substitute_silence is set, so the engine never drops a segment.
// Every log line of one render carries the same render_id.
package render
