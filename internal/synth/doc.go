// Package synth defines the speech synthesis boundary.
//
// A Synthesizer turns one segment's text into a mono audio buffer. Concrete
// backends are chosen explicitly by configuration:
//   - clips: pre-rendered WAV files, one per segment, read from a directory
//   - command: an external TTS program invoked once per segment
//
// There is no runtime probing or fallback between backends; an unknown
// backend name is a configuration error.
package synth
