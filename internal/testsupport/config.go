package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"dubmix/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The clips backend points at an empty clips directory and the cache is off.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.CacheDir = filepath.Join(base, "cache")
	cfgVal.Paths.LogDir = ""
	cfgVal.Synth.Backend = "clips"
	cfgVal.Synth.ClipsDir = filepath.Join(base, "clips")
	cfgVal.Synth.CachePath = filepath.Join(base, "cache", "clips.db")
	cfgVal.Synth.Cache = false
	cfgVal.Mixer.SampleRate = 8000
	cfgVal.Mixer.Workers = 2

	if err := os.MkdirAll(cfgVal.Synth.ClipsDir, 0o755); err != nil {
		t.Fatalf("mkdir clips dir: %v", err)
	}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithCache enables the SQLite clip cache.
func WithCache() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Synth.Cache = true
		if err := os.MkdirAll(b.cfg.Paths.CacheDir, 0o755); err != nil {
			b.t.Fatalf("mkdir cache dir: %v", err)
		}
	}
}

// WithPolicy selects the alignment policy.
func WithPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Align.Policy = policy
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Synth.ClipsDir)
}
