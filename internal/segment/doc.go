// Package segment defines the timed span of original speech that drives
// alignment, and converts upstream transcription output into it.
//
// Segments are values: constructors validate timing, copy word lists, and the
// engine never mutates a Segment after creation. Subtitle files (SRT and
// WebVTT) and dict-shaped ASR JSON dumps are converted here so downstream
// packages only ever see the typed record.
package segment
