// Package ffmpeg decodes arbitrary media into mono PCM WAV files that the
// wavio package can read.
package ffmpeg
