package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dubmix/internal/audio"
	"dubmix/internal/logging"
	"dubmix/internal/media/ffmpeg"
	"dubmix/internal/media/ffprobe"
	"dubmix/internal/wavio"
)

// IsWAV reports whether path can be read without ffmpeg.
func IsWAV(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".wav" || ext == ".wave"
}

// loadBackground reads the background track. WAV files are decoded directly;
// anything else is probed for its primary audio stream and decoded to mono
// at the mixer rate by ffmpeg.
func (r *Renderer) loadBackground(ctx context.Context, path string) (audio.Buffer, error) {
	if IsWAV(path) {
		buf, err := wavio.ReadFile(path)
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("load background: %w", err)
		}
		return buf, nil
	}

	ffmpegBin := r.cfg.FFmpegBinary()
	stream := ffmpeg.AnyAudioStream
	probe, err := ffprobe.Inspect(ctx, ffprobe.BinaryFor(ffmpegBin), path)
	if err != nil {
		logging.WarnWithContext(r.logger, "background probe failed", "ffprobe_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install ffprobe next to ffmpeg"),
			logging.String(logging.FieldImpact, "ffmpeg picks the first audio stream"),
		)
	} else {
		primary, err := probe.PrimaryAudioStream()
		if err != nil {
			return audio.Buffer{}, fmt.Errorf("load background %s: %w", path, err)
		}
		stream = primary.Index
		r.logger.Info("background probed",
			logging.String("path", path),
			logging.Int("stream", primary.Index),
			logging.String("codec", primary.CodecName),
			logging.Int("channels", primary.Channels),
			logging.Float64("duration_seconds", probe.DurationSeconds()),
		)
	}

	tmpDir, err := os.MkdirTemp("", "dubmix-bg-")
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("load background: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	dest := filepath.Join(tmpDir, "background.wav")
	if err := ffmpeg.DecodeMono(ctx, ffmpegBin, path, stream, r.cfg.Mixer.SampleRate, dest); err != nil {
		return audio.Buffer{}, fmt.Errorf("load background: %w", err)
	}
	buf, err := wavio.ReadFile(dest)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("load background: %w", err)
	}
	return buf, nil
}
