package synth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"dubmix/internal/audio"
	"dubmix/internal/logging"
	"dubmix/internal/wavio"
)

// CommandOptions configures the external-program backend.
type CommandOptions struct {
	Binary string
	// Args may contain {text}, {output}, {speaker}, {segment_id},
	// {length_scale}, {noise_scale}, and {noise_scale_w} placeholders.
	Args     []string
	Timeout  time.Duration
	Defaults Request
}

// Command runs an external TTS program once per request. The text is always
// written to the program's stdin. When no argument uses {output}, the program
// must write the WAV to stdout.
type Command struct {
	opts   CommandOptions
	logger *slog.Logger
}

// NewCommand validates opts and returns the backend.
func NewCommand(opts CommandOptions, logger *slog.Logger) (*Command, error) {
	opts.Binary = strings.TrimSpace(opts.Binary)
	if opts.Binary == "" {
		return nil, errors.New("synth command: binary is required (synth.command)")
	}
	opts.Args = append([]string(nil), opts.Args...)
	return &Command{opts: opts, logger: logging.NewComponentLogger(logger, "synth")}, nil
}

func (c *Command) usesOutputFile() bool {
	for _, arg := range c.opts.Args {
		if strings.Contains(arg, "{output}") {
			return true
		}
	}
	return false
}

// ExpandArgs substitutes request values into the configured arguments.
func ExpandArgs(args []string, req Request, output string) []string {
	replacer := strings.NewReplacer(
		"{text}", req.Text,
		"{output}", output,
		"{speaker}", req.Speaker,
		"{segment_id}", strconv.Itoa(req.SegmentID),
		"{length_scale}", strconv.FormatFloat(req.Params.LengthScale, 'f', -1, 64),
		"{noise_scale}", strconv.FormatFloat(req.Params.NoiseScale, 'f', -1, 64),
		"{noise_scale_w}", strconv.FormatFloat(req.Params.NoiseScaleW, 'f', -1, 64),
	)
	out := make([]string, len(args))
	for i, arg := range args {
		out[i] = replacer.Replace(arg)
	}
	return out
}

// Synthesize runs the program and decodes the WAV it produces.
func (c *Command) Synthesize(ctx context.Context, req Request) (audio.Buffer, error) {
	req = req.withDefaults(c.opts.Defaults)
	if strings.TrimSpace(req.Text) == "" {
		return audio.Buffer{}, fmt.Errorf("synth command: segment %d: %w", req.SegmentID, ErrEmptyText)
	}
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	tmpDir, err := os.MkdirTemp("", "dubmix-synth-")
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("synth command: temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)
	output := filepath.Join(tmpDir, fmt.Sprintf("segment_%d.wav", req.SegmentID))

	args := ExpandArgs(c.opts.Args, req, output)
	cmd := exec.CommandContext(ctx, c.opts.Binary, args...) //nolint:gosec
	cmd.Stdin = strings.NewReader(req.Text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		return audio.Buffer{}, fmt.Errorf("synth command: segment %d: %w: %s", req.SegmentID, err, detail)
	}

	var buf audio.Buffer
	if c.usesOutputFile() {
		buf, err = wavio.ReadFile(output)
	} else {
		buf, err = wavio.Decode(bytes.NewReader(stdout.Bytes()))
	}
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("synth command: segment %d output: %w", req.SegmentID, err)
	}

	logging.WithContext(ctx, c.logger).Debug("segment synthesized",
		logging.String("binary", c.opts.Binary),
		logging.String("speaker", req.Speaker),
		logging.Duration("elapsed", time.Since(started)),
		logging.Float64("seconds", buf.Duration()),
	)
	return buf, nil
}
