package align

import (
	"errors"
	"fmt"

	"dubmix/internal/audio"
	"dubmix/internal/segment"
)

// MinimumWindow is the narrowest target window in seconds.
const MinimumWindow = 0.05

var (
	// ErrInputMismatch marks a segment list and audio list of different lengths.
	ErrInputMismatch = errors.New("segment/audio count mismatch")
	// ErrEmptyAudio marks a segment whose synthesized audio has zero duration.
	ErrEmptyAudio = errors.New("empty audio")
)

// SegmentError ties a failure to the segment that caused it.
type SegmentError struct {
	SegmentID int
	Err       error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d: %v", e.SegmentID, e.Err)
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}

// AlignedChunk is one clip placed on the output timeline.
type AlignedChunk struct {
	Segment       segment.Segment
	Audio         audio.Buffer
	TargetStart   float64
	TargetEnd     float64
	StretchFactor float64
}

// TargetDuration returns the window length in seconds.
func (c AlignedChunk) TargetDuration() float64 {
	return max(0, c.TargetEnd-c.TargetStart)
}

// AudioDuration returns the source clip length in seconds.
func (c AlignedChunk) AudioDuration() float64 {
	return c.Audio.Duration()
}

func checkCounts(segments []segment.Segment, audios []audio.Buffer) error {
	if len(segments) != len(audios) {
		return fmt.Errorf("%w: %d segments, %d audio buffers", ErrInputMismatch, len(segments), len(audios))
	}
	return nil
}

func checkAudio(seg segment.Segment, buf audio.Buffer) error {
	if buf.Empty() {
		return &SegmentError{SegmentID: seg.ID, Err: ErrEmptyAudio}
	}
	return nil
}
