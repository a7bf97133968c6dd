// Package wavio serializes engine buffers to and from PCM WAV files.
//
// Output is always 16-bit little-endian mono at the buffer's sample rate,
// with samples converted as round(clamp(x, -1, 1) × 32767). Input accepts any
// integer PCM WAV; multichannel files are averaged down to mono.
package wavio
