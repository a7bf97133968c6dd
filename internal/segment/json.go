package segment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type rawWord struct {
	Word  string   `json:"word"`
	Text  string   `json:"text"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
	Score *float64 `json:"score"`
}

type rawSegment struct {
	ID      *int      `json:"id"`
	Start   *float64  `json:"start"`
	End     *float64  `json:"end"`
	Text    string    `json:"text"`
	Speaker *string   `json:"speaker"`
	Words   []rawWord `json:"words"`
}

type rawEnvelope struct {
	Segments []rawSegment `json:"segments"`
}

// DecodeJSON converts an ASR segment dump into Segments. It accepts either a
// bare array or an object with a "segments" array. Missing ids default to the
// array position; words lacking timing are dropped because they cannot be
// placed.
func DecodeJSON(r io.Reader) ([]Segment, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read segments json: %w", err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode segments json: empty input")
	}

	var raws []rawSegment
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("decode segments json: %w", err)
		}
	} else {
		var env rawEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("decode segments json: %w", err)
		}
		raws = env.Segments
	}

	segments := make([]Segment, 0, len(raws))
	seen := make(map[int]struct{}, len(raws))
	for idx, raw := range raws {
		id := idx
		if raw.ID != nil {
			id = *raw.ID
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("decode segments json: duplicate segment id %d", id)
		}
		seen[id] = struct{}{}
		if raw.Start == nil || raw.End == nil {
			return nil, fmt.Errorf("decode segments json: segment %d missing start or end", id)
		}
		text := NormalizeText(raw.Text)
		if text == "" {
			continue
		}
		opts := []Option{WithWords(convertWords(raw.Words))}
		if raw.Speaker != nil {
			opts = append(opts, WithSpeaker(strings.TrimSpace(*raw.Speaker)))
		}
		seg, err := New(id, *raw.Start, *raw.End, text, opts...)
		if err != nil {
			return nil, fmt.Errorf("decode segments json: %w", err)
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func convertWords(raws []rawWord) []Word {
	if len(raws) == 0 {
		return nil
	}
	words := make([]Word, 0, len(raws))
	for _, raw := range raws {
		if raw.Start == nil || raw.End == nil {
			continue
		}
		text := raw.Word
		if text == "" {
			text = raw.Text
		}
		word := Word{Text: strings.TrimSpace(text), Start: *raw.Start, End: *raw.End}
		if raw.Score != nil {
			word.Score = *raw.Score
		}
		words = append(words, word)
	}
	return words
}
