package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	CacheDir string `toml:"cache_dir"`
	LogDir   string `toml:"log_dir"`
}

// SlotFit holds the slot-fit padding constants in milliseconds.
type SlotFit struct {
	HeadMS     int `toml:"head_ms"`
	TailMS     int `toml:"tail_ms"`
	OverflowMS int `toml:"overflow_ms"`
	FadeMS     int `toml:"fade_ms"`
}

// Align contains alignment policy settings.
type Align struct {
	// Policy is "stretch" or "slot_fit".
	Policy           string  `toml:"policy"`
	PaddingSeconds   float64 `toml:"padding_seconds"`
	StretchTolerance float64 `toml:"stretch_tolerance"`
	SlotFit          SlotFit `toml:"slot_fit"`
}

// Mixer contains timeline mixing settings. Gains are in decibels.
type Mixer struct {
	SampleRate  int     `toml:"sample_rate"`
	DuckingDB   float64 `toml:"ducking_db"`
	MusicGainDB float64 `toml:"music_gain_db"`
	VoiceGainDB float64 `toml:"voice_gain_db"`
	Workers     int     `toml:"workers"`
}

// Synth contains speech synthesis backend settings.
type Synth struct {
	// Backend is "clips" or "command".
	Backend        string   `toml:"backend"`
	ClipsDir       string   `toml:"clips_dir"`
	Command        string   `toml:"command"`
	Args           []string `toml:"args"`
	Speaker        string   `toml:"speaker"`
	LengthScale    float64  `toml:"length_scale"`
	NoiseScale     float64  `toml:"noise_scale"`
	NoiseScaleW    float64  `toml:"noise_scale_w"`
	Retries        int      `toml:"retries"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	Concurrency    int      `toml:"concurrency"`
	Cache          bool     `toml:"cache"`
	CachePath      string   `toml:"cache_path"`
}

// Render contains orchestration settings.
type Render struct {
	SubstituteSilence bool   `toml:"substitute_silence"`
	BatchSize         int    `toml:"batch_size"`
	FFmpegBinary      string `toml:"ffmpeg_binary"`
}

// Preset points at an optional YAML preset overlay.
type Preset struct {
	Path string `toml:"path"`
}

// Metrics contains Prometheus textfile export settings.
type Metrics struct {
	Textfile string `toml:"textfile"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for dubmix.
//
// Configuration sections by subsystem:
//   - Paths: cache and log directories
//   - Align: alignment policy, padding, and stretch tolerance
//   - Mixer: output rate, ducking, and gains
//   - Synth: synthesis backend, voice parameters, retries, and clip cache
//   - Render: orchestration behaviour and the ffmpeg binary
//   - Preset: YAML preset overlay
//   - Metrics: Prometheus textfile export
//   - Logging: log format and level
type Config struct {
	Paths   Paths   `toml:"paths"`
	Align   Align   `toml:"align"`
	Mixer   Mixer   `toml:"mixer"`
	Synth   Synth   `toml:"synth"`
	Render  Render  `toml:"render"`
	Preset  Preset  `toml:"preset"`
	Metrics Metrics `toml:"metrics"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/dubmix/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has the preset applied and all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	loadDotEnv(resolvedPath)

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.ApplyPreset(cfg.Preset.Path); err != nil {
		return nil, "", false, err
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("dubmix.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the cache and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.CacheDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used to decode background media.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Render.FFmpegBinary); bin != "" {
		return bin
	}
	return defaultFFmpegBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "dubmix")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/dubmix"
	}
	return filepath.Join(home, ".cache", "dubmix")
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
