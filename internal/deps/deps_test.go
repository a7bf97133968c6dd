package deps

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for empty command: %q", results[2].Detail)
	}

	if missing := Missing(results); len(missing) != 2 {
		t.Fatalf("expected 2 missing requirements, got %d", len(missing))
	}
}

func TestCheckFFmpegUsesSiblingProbe(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs")
	}
	dir := t.TempDir()
	script := []byte("#!/bin/sh\nexit 0\n")
	for _, name := range []string{"ffmpeg", "ffprobe"} {
		if err := os.WriteFile(filepath.Join(dir, name), script, 0o755); err != nil {
			t.Fatalf("write %s stub: %v", name, err)
		}
	}

	statuses := CheckFFmpeg(filepath.Join(dir, "ffmpeg"), true)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	for _, status := range statuses {
		if !status.Available || status.Optional {
			t.Fatalf("expected required and available, got %#v", status)
		}
	}
	if statuses[1].Command != filepath.Join(dir, "ffprobe") {
		t.Fatalf("expected sibling ffprobe, got %q", statuses[1].Command)
	}
}

func TestCheckFFmpegOptionalWhenNotRequired(t *testing.T) {
	statuses := CheckFFmpeg(filepath.Join(t.TempDir(), "ffmpeg"), false)
	if len(Missing(statuses)) != 0 {
		t.Fatalf("optional tools must not count as missing: %#v", statuses)
	}
	if statuses[0].Available {
		t.Fatal("expected ffmpeg stub path to be unavailable")
	}
}
