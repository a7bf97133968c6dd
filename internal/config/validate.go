package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAlign(); err != nil {
		return err
	}
	if err := c.validateMixer(); err != nil {
		return err
	}
	if err := c.validateSynth(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAlign() error {
	switch c.Align.Policy {
	case "stretch", "slot_fit":
	default:
		return fmt.Errorf("align.policy must be \"stretch\" or \"slot_fit\", got %q", c.Align.Policy)
	}
	if c.Align.PaddingSeconds < 0 || math.IsNaN(c.Align.PaddingSeconds) {
		return errors.New("align.padding_seconds must be >= 0")
	}
	if c.Align.StretchTolerance < 0 || math.IsNaN(c.Align.StretchTolerance) {
		return errors.New("align.stretch_tolerance must be >= 0")
	}
	return ensureNonNegativeMap(map[string]int{
		"align.slot_fit.head_ms":     c.Align.SlotFit.HeadMS,
		"align.slot_fit.tail_ms":     c.Align.SlotFit.TailMS,
		"align.slot_fit.overflow_ms": c.Align.SlotFit.OverflowMS,
		"align.slot_fit.fade_ms":     c.Align.SlotFit.FadeMS,
	})
}

func (c *Config) validateMixer() error {
	if c.Mixer.SampleRate < 8000 || c.Mixer.SampleRate > 192000 {
		return fmt.Errorf("mixer.sample_rate must be between 8000 and 192000, got %d", c.Mixer.SampleRate)
	}
	if c.Mixer.DuckingDB > 0 {
		return errors.New("mixer.ducking_db must be <= 0 (ducking attenuates)")
	}
	for key, value := range map[string]float64{
		"mixer.ducking_db":    c.Mixer.DuckingDB,
		"mixer.music_gain_db": c.Mixer.MusicGainDB,
		"mixer.voice_gain_db": c.Mixer.VoiceGainDB,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%s must be a finite number", key)
		}
	}
	if c.Mixer.Workers < 0 {
		return errors.New("mixer.workers must be >= 0 (0 uses every CPU)")
	}
	return nil
}

func (c *Config) validateSynth() error {
	switch c.Synth.Backend {
	case "clips":
	case "command":
		if strings.TrimSpace(c.Synth.Command) == "" {
			return errors.New("synth.command must be set when synth.backend is \"command\" (or set DUBMIX_SYNTH_COMMAND)")
		}
	default:
		return fmt.Errorf("synth.backend must be \"clips\" or \"command\", got %q", c.Synth.Backend)
	}
	if c.Synth.LengthScale <= 0 {
		return errors.New("synth.length_scale must be positive")
	}
	if c.Synth.NoiseScale < 0 || c.Synth.NoiseScaleW < 0 {
		return errors.New("synth.noise_scale and synth.noise_scale_w must be >= 0")
	}
	if c.Synth.Cache && strings.TrimSpace(c.Synth.CachePath) == "" {
		return errors.New("synth.cache_path must be set when synth.cache is true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func ensureNonNegativeMap(values map[string]int) error {
	for key, value := range values {
		if value < 0 {
			return fmt.Errorf("%s must be >= 0", key)
		}
	}
	return nil
}
