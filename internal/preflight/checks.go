package preflight

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"

	"dubmix/internal/config"
	"dubmix/internal/deps"
	"dubmix/internal/synthcache"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok", "grant read and write access to the current user")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok", "grant read access to the current user")
}

func checkDirectory(name, path string, mode uint32, okDetail, permHint string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path), Hint: "create the directory or change the configured path"}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path), Hint: "point the setting at a directory"}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err), Hint: permHint}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckOutputPath verifies that the directory receiving the rendered WAV is writable.
func CheckOutputPath(path string) Result {
	return CheckDirectoryAccess("Output directory", filepath.Dir(path))
}

// CheckSystemDeps evaluates the external binaries the config needs.
// needFFmpeg is true when the background track is not a WAV file.
func CheckSystemDeps(cfg *config.Config, needFFmpeg bool) []deps.Status {
	requirements := deps.FFmpegRequirements(cfg.FFmpegBinary(), needFFmpeg)
	if cfg.Synth.Backend == "command" {
		requirements = append(requirements, deps.Requirement{
			Name:        "TTS command",
			Command:     cfg.Synth.Command,
			Description: "Synthesizes each segment",
			Hint:        "install the TTS program or fix synth.command",
		})
	}
	return deps.CheckBinaries(requirements)
}

// CheckClipCache opens the clip cache and reports how many clips it holds.
func CheckClipCache(ctx context.Context, cfg *config.Config) Result {
	const name = "Clip cache"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if !cfg.Synth.Cache {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	store, err := synthcache.Open(cfg.Synth.CachePath)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Synth.CachePath, err), Hint: "delete the cache database to rebuild it"}
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", cfg.Synth.CachePath, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d clips)", cfg.Synth.CachePath, count)}
}
