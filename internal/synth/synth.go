package synth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"dubmix/internal/audio"
	"dubmix/internal/config"
)

var (
	// ErrUnknownBackend marks a backend name with no implementation.
	ErrUnknownBackend = errors.New("unknown synth backend")
	// ErrClipNotFound marks a segment with no pre-rendered clip.
	ErrClipNotFound = errors.New("clip not found")
	// ErrEmptyText marks a request with nothing to say.
	ErrEmptyText = errors.New("empty text")
)

const (
	BackendClips   = "clips"
	BackendCommand = "command"
)

// Params are the voice controls passed to the TTS model.
type Params struct {
	LengthScale float64
	NoiseScale  float64
	NoiseScaleW float64
}

// Request asks for one segment to be spoken.
type Request struct {
	SegmentID int
	Text      string
	Speaker   string
	Params    Params
}

// withDefaults fills unset speaker and params from d.
func (r Request) withDefaults(d Request) Request {
	if strings.TrimSpace(r.Speaker) == "" {
		r.Speaker = d.Speaker
	}
	if r.Params.LengthScale == 0 {
		r.Params.LengthScale = d.Params.LengthScale
	}
	if r.Params.NoiseScale == 0 {
		r.Params.NoiseScale = d.Params.NoiseScale
	}
	if r.Params.NoiseScaleW == 0 {
		r.Params.NoiseScaleW = d.Params.NoiseScaleW
	}
	return r
}

// Synthesizer produces speech audio for a request.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) (audio.Buffer, error)
}

// Identifier is implemented by backends whose output depends on state
// outside the request text, such as a clip file chosen by segment id.
// Caches fold the identity into their key.
type Identifier interface {
	Identity(ctx context.Context, req Request) (string, error)
}

// Func adapts a function to the Synthesizer interface.
type Func func(ctx context.Context, req Request) (audio.Buffer, error)

// Synthesize calls f.
func (f Func) Synthesize(ctx context.Context, req Request) (audio.Buffer, error) {
	return f(ctx, req)
}

// DefaultsFromConfig returns the request defaults configured under [synth].
func DefaultsFromConfig(cfg *config.Config) Request {
	return Request{
		Speaker: cfg.Synth.Speaker,
		Params: Params{
			LengthScale: cfg.Synth.LengthScale,
			NoiseScale:  cfg.Synth.NoiseScale,
			NoiseScaleW: cfg.Synth.NoiseScaleW,
		},
	}
}

// New builds the backend named by cfg.Synth.Backend.
func New(cfg *config.Config, logger *slog.Logger) (Synthesizer, error) {
	if cfg == nil {
		return nil, errors.New("synth: config is required")
	}
	defaults := DefaultsFromConfig(cfg)
	switch cfg.Synth.Backend {
	case BackendClips:
		return NewClips(cfg.Synth.ClipsDir, defaults, logger)
	case BackendCommand:
		return NewCommand(CommandOptions{
			Binary:   cfg.Synth.Command,
			Args:     cfg.Synth.Args,
			Timeout:  time.Duration(cfg.Synth.TimeoutSeconds) * time.Second,
			Defaults: defaults,
		}, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Synth.Backend)
	}
}
