// Package logging assembles structured slog loggers and formatting helpers used
// across dubmix.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so render code can tag log lines
// with the render ID and segment being processed. The package also provides a
// no-op logger for tests and for components constructed without a logger.
//
// Prefer these constructors over hand-rolled slog setup so every component
// emits data with the same shape.
package logging
