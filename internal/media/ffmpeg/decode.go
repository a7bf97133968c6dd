package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// AnyAudioStream lets ffmpeg choose the first audio stream.
const AnyAudioStream = -1

// DecodeArgs returns the ffmpeg arguments used by DecodeMono.
func DecodeArgs(source string, streamIndex, sampleRate int, dest string) []string {
	mapping := "0:a:0"
	if streamIndex >= 0 {
		mapping = fmt.Sprintf("0:%d", streamIndex)
	}
	return []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", mapping,
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
		dest,
	}
}

// DecodeMono extracts one audio stream from source, downmixed to mono at
// sampleRate, as a 16-bit WAV at dest.
func DecodeMono(ctx context.Context, ffmpegBinary, source string, streamIndex, sampleRate int, dest string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("ffmpeg decode: empty source path")
	}
	if sampleRate <= 0 {
		return fmt.Errorf("ffmpeg decode: invalid sample rate %d", sampleRate)
	}
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, ffmpegBinary, DecodeArgs(source, streamIndex, sampleRate, dest)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("ffmpeg decode: %w", ctxErr)
		}
		return fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}
