package synth

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dubmix/internal/audio"
	"dubmix/internal/logging"
	"dubmix/internal/wavio"
)

// Clips serves pre-rendered WAV files from a directory.
type Clips struct {
	dir      string
	defaults Request
	logger   *slog.Logger
}

// NewClips returns a clip-directory backend. The directory must exist.
func NewClips(dir string, defaults Request, logger *slog.Logger) (*Clips, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("synth clips: directory is required (synth.clips_dir or --clips)")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("synth clips: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("synth clips: %s is not a directory", dir)
	}
	return &Clips{dir: dir, defaults: defaults, logger: logging.NewComponentLogger(logger, "synth")}, nil
}

// ClipCandidates lists the file names probed for a segment, in order.
func ClipCandidates(segmentID int) []string {
	return []string{
		fmt.Sprintf("%d.wav", segmentID),
		fmt.Sprintf("%04d.wav", segmentID),
		fmt.Sprintf("segment_%d.wav", segmentID),
		fmt.Sprintf("segment_%04d.wav", segmentID),
	}
}

// resolve returns the first clip candidate present for segmentID.
func (c *Clips) resolve(segmentID int) (string, fs.FileInfo, error) {
	for _, name := range ClipCandidates(segmentID) {
		path := filepath.Join(c.dir, name)
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", nil, fmt.Errorf("synth clips: segment %d: %w", segmentID, err)
		}
		return path, info, nil
	}
	return "", nil, fmt.Errorf("synth clips: segment %d in %s: %w", segmentID, c.dir, ErrClipNotFound)
}

// Identity implements Identifier. A clip is identified by its segment, its
// resolved path and the file's size and modification time, so edited clips
// and segments sharing a line of text never collide.
func (c *Clips) Identity(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path, info, err := c.resolve(req.SegmentID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("segment=%d path=%s size=%d mtime=%d",
		req.SegmentID, path, info.Size(), info.ModTime().UnixNano()), nil
}

// Synthesize reads the first clip candidate that exists.
func (c *Clips) Synthesize(ctx context.Context, req Request) (audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return audio.Buffer{}, err
	}
	req = req.withDefaults(c.defaults)
	path, _, err := c.resolve(req.SegmentID)
	if err != nil {
		return audio.Buffer{}, err
	}
	buf, err := wavio.ReadFile(path)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("synth clips: segment %d: %w", req.SegmentID, err)
	}
	logging.WithContext(ctx, c.logger).Debug("clip loaded",
		logging.String("path", path),
		logging.Float64("seconds", buf.Duration()),
	)
	return buf, nil
}
