package render

import (
	"fmt"
	"math"

	"dubmix/internal/segment"
)

// Retimed returns the segments moved to their aligned windows, for writing
// a subtitle track that matches the dub. Word timings are mapped linearly
// from the source span onto the target window.
func (p Plan) Retimed() ([]segment.Segment, error) {
	out := make([]segment.Segment, 0, len(p.Chunks))
	for _, chunk := range p.Chunks {
		seg := chunk.Segment
		words := retimeWords(seg, chunk.TargetStart, chunk.TargetEnd)
		moved, err := segment.New(seg.ID, chunk.TargetStart, chunk.TargetEnd, seg.Text,
			segment.WithSpeaker(seg.Speaker),
			segment.WithWords(words))
		if err != nil {
			return nil, fmt.Errorf("retime segment %d: %w", seg.ID, err)
		}
		out = append(out, moved)
	}
	return out, nil
}

func retimeWords(seg segment.Segment, start, end float64) []segment.Word {
	if len(seg.Words) == 0 {
		return nil
	}
	scale := 1.0
	if d := seg.Duration(); d > 0 {
		scale = (end - start) / d
	}
	place := func(t float64) float64 {
		return math.Min(end, math.Max(start, start+(t-seg.Start)*scale))
	}
	words := make([]segment.Word, len(seg.Words))
	for i, w := range seg.Words {
		w.Start = place(w.Start)
		w.End = place(w.End)
		words[i] = w
	}
	return words
}
