package preflight

import (
	"errors"
	"fmt"
	"strings"

	"dubmix/internal/config"
	"dubmix/internal/deps"
)

// ErrNotReady is returned by Check when any preflight result failed.
var ErrNotReady = errors.New("preflight failed")

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
	// Hint suggests a fix when the check did not pass cleanly.
	Hint   string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	if cfg.Synth.Backend == "clips" {
		results = append(results, CheckDirectoryReadable("Clips directory", cfg.Synth.ClipsDir))
	}

	if cfg.Synth.Cache {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	}

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	return results
}

// DepResults converts missing required binaries into failed results.
func DepResults(statuses []deps.Status) []Result {
	results := make([]Result, 0, len(statuses))
	for _, status := range statuses {
		if status.Available {
			results = append(results, Result{Name: status.Name, Passed: true, Detail: status.Command})
			continue
		}
		results = append(results, Result{Name: status.Name, Passed: status.Optional, Detail: status.Detail, Hint: status.Hint})
	}
	return results
}

// Check joins every failed result into a single ErrNotReady error.
func Check(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotReady, strings.Join(failed, "; "))
}
