package preflight

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dubmix/internal/config"
	"dubmix/internal/deps"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" || result.Hint == "" {
		t.Fatalf("expected detail and hint, got %#v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
	if CheckOutputPath(filepath.Join(f, "out.wav")).Passed {
		t.Fatal("expected failure when output parent is a file")
	}
}

func TestRunAllGatesOnConfig(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Synth.Backend = "clips"
	cfg.Synth.ClipsDir = base
	cfg.Synth.Cache = false
	cfg.Paths.LogDir = ""

	results := RunAll(&cfg)
	if len(results) != 1 || results[0].Name != "Clips directory" || !results[0].Passed {
		t.Fatalf("expected only a passing clips check, got %#v", results)
	}

	cfg.Synth.Cache = true
	cfg.Paths.CacheDir = filepath.Join(base, "missing-cache")
	results = RunAll(&cfg)
	if err := Check(results); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady for missing cache dir, got %v", err)
	}
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestDepResultsTreatsOptionalAsPassing(t *testing.T) {
	results := DepResults([]deps.Status{
		{Name: "FFmpeg", Optional: true, Detail: "binary \"ffmpeg\" not found"},
		{Name: "TTS command", Detail: "binary \"piper\" not found", Hint: "install piper"},
	})
	if !results[0].Passed || results[1].Passed {
		t.Fatalf("unexpected results %#v", results)
	}
	if results[1].Hint != "install piper" {
		t.Fatalf("expected hint carried over, got %q", results[1].Hint)
	}
	if err := Check(results); err == nil {
		t.Fatal("expected required missing binary to fail")
	}
}

func TestCheckSystemDepsIncludesCommand(t *testing.T) {
	cfg := config.Default()
	cfg.Synth.Backend = "command"
	cfg.Synth.Command = "clearly-not-a-tts-binary"
	statuses := CheckSystemDeps(&cfg, false)
	if len(statuses) != 3 || statuses[2].Name != "TTS command" || statuses[2].Available {
		t.Fatalf("unexpected statuses %#v", statuses)
	}
	for _, status := range statuses {
		if status.Hint == "" {
			t.Fatalf("expected a hint for %s", status.Name)
		}
	}
}

func TestCheckClipCache(t *testing.T) {
	cfg := config.Default()
	cfg.Synth.Cache = false
	if r := CheckClipCache(context.Background(), &cfg); !r.Passed || r.Detail != "Disabled" {
		t.Fatalf("unexpected disabled result %#v", r)
	}
	cfg.Synth.Cache = true
	cfg.Synth.CachePath = filepath.Join(t.TempDir(), "clips.db")
	r := CheckClipCache(context.Background(), &cfg)
	if !r.Passed {
		t.Fatalf("expected pass, got %s", r.Detail)
	}
}
