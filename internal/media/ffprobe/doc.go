// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Render uses it to pick the audio stream of a background media file and to
// report its duration before ffmpeg decodes it.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Stream: individual stream properties
//   - Format: container-level metadata
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - Parse: decodes an ffprobe JSON payload
//   - BinaryFor: locates ffprobe next to a configured ffmpeg
package ffprobe
