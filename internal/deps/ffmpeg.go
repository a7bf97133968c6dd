package deps

import (
	"dubmix/internal/media/ffprobe"
)

// FFmpegRequirements returns the ffmpeg and ffprobe requirements for the
// configured ffmpeg binary. ffprobe is looked up next to ffmpeg so a custom
// build directory serves both tools. required marks them non-optional.
func FFmpegRequirements(ffmpegBinary string, required bool) []Requirement {
	if ffmpegBinary == "" {
		ffmpegBinary = "ffmpeg"
	}
	return []Requirement{
		{
			Name:        "FFmpeg",
			Command:     ffmpegBinary,
			Description: "Decodes non-WAV background media",
			Hint:        "install ffmpeg or set render.ffmpeg_binary",
			Optional:    !required,
		},
		{
			Name:        "FFprobe",
			Command:     ffprobe.BinaryFor(ffmpegBinary),
			Description: "Selects the background audio stream",
			Hint:        "install ffprobe beside the configured ffmpeg",
			Optional:    !required,
		},
	}
}

// CheckFFmpeg reports ffmpeg and ffprobe availability.
func CheckFFmpeg(ffmpegBinary string, required bool) []Status {
	return CheckBinaries(FFmpegRequirements(ffmpegBinary, required))
}
