package segment

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSegment marks segments whose timing violates start >= 0 and end > start.
var ErrInvalidSegment = errors.New("invalid segment")

// Word is the optional per-word timing attached by forced alignment.
type Word struct {
	Text  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Score float64 `json:"score,omitempty"`
}

// Segment is one span of original speech on the source timeline.
type Segment struct {
	ID      int     `json:"id"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
	Words   []Word  `json:"words,omitempty"`
}

// Option customizes optional Segment metadata.
type Option func(*Segment)

// WithSpeaker attaches a diarization label.
func WithSpeaker(speaker string) Option {
	return func(s *Segment) {
		s.Speaker = speaker
	}
}

// WithWords attaches a copy of the per-word timings.
func WithWords(words []Word) Option {
	return func(s *Segment) {
		if len(words) == 0 {
			s.Words = nil
			return
		}
		s.Words = make([]Word, len(words))
		copy(s.Words, words)
	}
}

// New validates timing and builds a Segment.
func New(id int, start, end float64, text string, opts ...Option) (Segment, error) {
	if math.IsNaN(start) || math.IsNaN(end) || math.IsInf(start, 0) || math.IsInf(end, 0) {
		return Segment{}, fmt.Errorf("%w: segment %d has non-finite timing", ErrInvalidSegment, id)
	}
	if start < 0 {
		return Segment{}, fmt.Errorf("%w: segment %d starts before zero (%.3fs)", ErrInvalidSegment, id, start)
	}
	if end <= start {
		return Segment{}, fmt.Errorf("%w: segment %d ends at %.3fs, not after start %.3fs", ErrInvalidSegment, id, end, start)
	}
	seg := Segment{ID: id, Start: start, End: end, Text: text}
	for _, opt := range opts {
		opt(&seg)
	}
	return seg, nil
}

// Duration returns the span length in seconds.
func (s Segment) Duration() float64 {
	return math.Max(0, s.End-s.Start)
}

// Batches splits segments into consecutive groups of at most size entries.
func Batches(segments []Segment, size int) [][]Segment {
	if size <= 0 {
		size = len(segments)
	}
	var batches [][]Segment
	for start := 0; start < len(segments); start += size {
		end := min(start+size, len(segments))
		batches = append(batches, segments[start:end])
	}
	return batches
}
