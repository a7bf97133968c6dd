// Package main hosts the dubmix CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration once, applies flag
// overrides, and hands the work to internal/render: "render" produces a WAV,
// "plan" shows the aligned windows without mixing, "check" reports readiness,
// and "config" scaffolds or validates the configuration file.
//
// Keep this package lean: add functionality to the internal packages first,
// then surface it through dedicated commands or flags here.
package main
