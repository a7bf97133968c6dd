package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAlign()
	if err := c.normalizeSynth(); err != nil {
		return err
	}
	c.normalizeRender()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAlign() {
	policy := strings.ToLower(strings.TrimSpace(c.Align.Policy))
	policy = strings.ReplaceAll(policy, "-", "_")
	if policy == "" {
		policy = defaultPolicy
	}
	c.Align.Policy = policy
}

func (c *Config) normalizeSynth() error {
	c.Synth.Backend = strings.ToLower(strings.TrimSpace(c.Synth.Backend))
	if c.Synth.Backend == "" {
		c.Synth.Backend = defaultSynthBackend
	}
	c.Synth.Command = strings.TrimSpace(c.Synth.Command)
	if c.Synth.Command == "" {
		if value, ok := os.LookupEnv("DUBMIX_SYNTH_COMMAND"); ok {
			c.Synth.Command = strings.TrimSpace(value)
		}
	}
	c.Synth.Speaker = strings.TrimSpace(c.Synth.Speaker)
	if c.Synth.Speaker == "" {
		c.Synth.Speaker = defaultSpeaker
	}
	if c.Synth.LengthScale == 0 {
		c.Synth.LengthScale = defaultLengthScale
	}
	if c.Synth.NoiseScale == 0 {
		c.Synth.NoiseScale = defaultNoiseScale
	}
	if c.Synth.NoiseScaleW == 0 {
		c.Synth.NoiseScaleW = defaultNoiseScaleW
	}
	if c.Synth.Retries < 0 {
		c.Synth.Retries = 0
	}
	if c.Synth.TimeoutSeconds <= 0 {
		c.Synth.TimeoutSeconds = defaultSynthTimeout
	}
	if c.Synth.Concurrency <= 0 {
		c.Synth.Concurrency = defaultSynthConcurrency
	}

	var err error
	if c.Synth.ClipsDir, err = expandPath(strings.TrimSpace(c.Synth.ClipsDir)); err != nil {
		return fmt.Errorf("synth.clips_dir: %w", err)
	}
	if strings.TrimSpace(c.Synth.CachePath) == "" {
		c.Synth.CachePath = filepath.Join(c.Paths.CacheDir, defaultCacheFile)
	}
	if c.Synth.CachePath, err = expandPath(c.Synth.CachePath); err != nil {
		return fmt.Errorf("synth.cache_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeRender() {
	if c.Render.BatchSize <= 0 {
		c.Render.BatchSize = defaultRenderBatchSize
	}
	c.Render.FFmpegBinary = strings.TrimSpace(c.Render.FFmpegBinary)
	if c.Render.FFmpegBinary == "" {
		c.Render.FFmpegBinary = defaultFFmpegBinary
	}
}

func (c *Config) normalizeMetrics() error {
	var err error
	if c.Metrics.Textfile, err = expandPath(strings.TrimSpace(c.Metrics.Textfile)); err != nil {
		return fmt.Errorf("metrics.textfile: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("DUBMIX_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
