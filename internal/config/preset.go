package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// presetFile mirrors the YAML preset layout. Absent keys leave the
// corresponding config value untouched.
type presetFile struct {
	Pipeline struct {
		Aligner struct {
			Policy            *string  `yaml:"policy"`
			TransitionPadding *float64 `yaml:"transition_padding"`
			StretchFactor     *float64 `yaml:"stretch_factor"`
		} `yaml:"aligner"`
		Mixer struct {
			SampleRate  *int     `yaml:"sample_rate"`
			DuckingDB   *float64 `yaml:"ducking_db"`
			MusicGainDB *float64 `yaml:"music_gain_db"`
			VoiceGainDB *float64 `yaml:"voice_gain_db"`
		} `yaml:"mixer"`
		TTS struct {
			Speaker     *string  `yaml:"speaker"`
			LengthScale *float64 `yaml:"length_scale"`
			NoiseScale  *float64 `yaml:"noise_scale"`
			NoiseScaleW *float64 `yaml:"noise_scale_w"`
		} `yaml:"tts"`
	} `yaml:"pipeline"`
}

// ApplyPreset overlays the YAML preset at path onto c. An empty path is a
// no-op. Preset values take precedence over values read from TOML.
func (c *Config) ApplyPreset(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("preset.path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return fmt.Errorf("read preset: %w", err)
	}
	var preset presetFile
	if err := yaml.Unmarshal(data, &preset); err != nil {
		return fmt.Errorf("parse preset %s: %w", expanded, err)
	}
	c.Preset.Path = expanded

	aligner := preset.Pipeline.Aligner
	setIf(&c.Align.Policy, aligner.Policy)
	setIf(&c.Align.PaddingSeconds, aligner.TransitionPadding)
	setIf(&c.Align.StretchTolerance, aligner.StretchFactor)

	mixer := preset.Pipeline.Mixer
	setIf(&c.Mixer.SampleRate, mixer.SampleRate)
	setIf(&c.Mixer.DuckingDB, mixer.DuckingDB)
	setIf(&c.Mixer.MusicGainDB, mixer.MusicGainDB)
	setIf(&c.Mixer.VoiceGainDB, mixer.VoiceGainDB)

	tts := preset.Pipeline.TTS
	setIf(&c.Synth.Speaker, tts.Speaker)
	setIf(&c.Synth.LengthScale, tts.LengthScale)
	setIf(&c.Synth.NoiseScale, tts.NoiseScale)
	setIf(&c.Synth.NoiseScaleW, tts.NoiseScaleW)
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
