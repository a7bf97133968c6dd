package render

import (
	"log/slog"

	"dubmix/internal/align"
	"dubmix/internal/audio"
	"dubmix/internal/config"
	"dubmix/internal/mixer"
)

// AlignerFromConfig builds the aligner selected by [align] policy.
func AlignerFromConfig(cfg *config.Config, logger *slog.Logger) (align.Aligner, error) {
	policy, err := align.ParsePolicy(cfg.Align.Policy)
	if err != nil {
		return nil, err
	}
	opts := align.Options{
		Padding:          cfg.Align.PaddingSeconds,
		StretchTolerance: cfg.Align.StretchTolerance,
	}
	slot := align.SlotFitOptions{
		HeadMS:     cfg.Align.SlotFit.HeadMS,
		TailMS:     cfg.Align.SlotFit.TailMS,
		OverflowMS: cfg.Align.SlotFit.OverflowMS,
		FadeMS:     cfg.Align.SlotFit.FadeMS,
	}
	return align.NewAligner(policy, opts, slot, logger)
}

// MixerOptions converts the decibel settings under [mixer] into linear gains.
func MixerOptions(cfg *config.Config) mixer.Options {
	return mixer.Options{
		SampleRate:  cfg.Mixer.SampleRate,
		DuckingGain: audio.DBToGain(cfg.Mixer.DuckingDB),
		MusicGain:   audio.DBToGain(cfg.Mixer.MusicGainDB),
		VoiceGain:   audio.DBToGain(cfg.Mixer.VoiceGainDB),
		Workers:     cfg.Mixer.Workers,
	}
}
