package segment_test

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubmix/internal/segment"
)

func TestNewValidatesTiming(t *testing.T) {
	cases := []struct {
		name       string
		start, end float64
		wantErr    bool
	}{
		{"valid", 0, 1, false},
		{"negative start", -0.1, 1, true},
		{"zero width", 1, 1, true},
		{"reversed", 2, 1, true},
		{"nan", math.NaN(), 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := segment.New(0, tc.start, tc.end, "hi")
			if tc.wantErr && !errors.Is(err, segment.ErrInvalidSegment) {
				t.Fatalf("expected ErrInvalidSegment, got %v", err)
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestWithWordsCopies(t *testing.T) {
	words := []segment.Word{{Text: "hello", Start: 0, End: 0.4}}
	seg, err := segment.New(3, 0, 1, "hello", segment.WithWords(words), segment.WithSpeaker("SPEAKER_00"))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	words[0].Text = "mutated"
	if seg.Words[0].Text != "hello" {
		t.Fatalf("expected segment words to be copied, got %q", seg.Words[0].Text)
	}
	if seg.Speaker != "SPEAKER_00" {
		t.Fatalf("unexpected speaker %q", seg.Speaker)
	}
	if seg.Duration() != 1 {
		t.Fatalf("unexpected duration %v", seg.Duration())
	}
}

func TestBatches(t *testing.T) {
	segs := make([]segment.Segment, 5)
	batches := segment.Batches(segs, 2)
	if len(batches) != 3 || len(batches[2]) != 1 {
		t.Fatalf("unexpected batches: %d groups", len(batches))
	}
	if got := segment.Batches(segs, 0); len(got) != 1 || len(got[0]) != 5 {
		t.Fatalf("size 0 should yield one batch, got %d", len(got))
	}
}

func TestParseSubtitlesSRT(t *testing.T) {
	input := "1\r\n00:00:00,500 --> 00:00:02,000\r\nПривіт,\r\nсвіте\r\n\r\n" +
		"2\n00:00:02,500 --> 00:00:04,250\n<i>second</i> line\n\n" +
		"3\n00:00:05,000 --> 00:00:06,000\n   \n"
	segs, err := segment.ParseSubtitles(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSubtitles returned error: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments (empty cue skipped), got %d", len(segs))
	}
	if segs[0].ID != 0 || segs[1].ID != 1 {
		t.Fatalf("expected sequential ids, got %d and %d", segs[0].ID, segs[1].ID)
	}
	if segs[0].Text != "Привіт, світе" {
		t.Fatalf("unexpected joined text %q", segs[0].Text)
	}
	if segs[1].Text != "second line" {
		t.Fatalf("expected markup stripped, got %q", segs[1].Text)
	}
	if segs[1].Start != 2.5 || segs[1].End != 4.25 {
		t.Fatalf("unexpected timing %v-%v", segs[1].Start, segs[1].End)
	}
}

func TestParseSubtitlesVTT(t *testing.T) {
	input := "WEBVTT\n\nNOTE produced upstream\n\ncue-1\n00:01.000 --> 00:02.500 align:start\nhello there\n\n01:00:00.000 --> 01:00:01.000\nlate\n"
	segs, err := segment.ParseSubtitles(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseSubtitles returned error: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected 2 segments, got %d", len(segs))
	}
	if segs[0].Start != 1 || segs[0].End != 2.5 {
		t.Fatalf("unexpected timing %v-%v", segs[0].Start, segs[0].End)
	}
	if segs[1].Start != 3600 {
		t.Fatalf("unexpected hour timestamp %v", segs[1].Start)
	}
}

func TestParseSubtitlesRejectsBadTiming(t *testing.T) {
	if _, err := segment.ParseSubtitles(strings.NewReader("1\n00:00:xx,000 --> 00:00:01,000\ntext\n")); err == nil {
		t.Fatal("expected error for malformed timestamp")
	}
	_, err := segment.ParseSubtitles(strings.NewReader("1\n00:00:02,000 --> 00:00:01,000\ntext\n"))
	if !errors.Is(err, segment.ErrInvalidSegment) {
		t.Fatalf("expected ErrInvalidSegment for reversed cue, got %v", err)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	for _, value := range []float64{0, 2.3, 61.001, 3725.999} {
		formatted := segment.FormatTimestamp(value)
		parsed, err := segment.ParseTimestamp(formatted)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q): %v", formatted, err)
		}
		if math.Abs(parsed-value) > 1e-9 {
			t.Fatalf("round trip %v -> %q -> %v", value, formatted, parsed)
		}
	}
	if got := segment.FormatTimestamp(3725.5); got != "01:02:05,500" {
		t.Fatalf("unexpected format %q", got)
	}
}

func TestWriteSRT(t *testing.T) {
	a, _ := segment.New(0, 0, 1.5, "one")
	b, _ := segment.New(1, 2, 3, "two")
	var sb strings.Builder
	if err := segment.WriteSRT(&sb, []segment.Segment{a, b}); err != nil {
		t.Fatalf("WriteSRT returned error: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,500\none\n\n2\n00:00:02,000 --> 00:00:03,000\ntwo\n\n"
	if sb.String() != want {
		t.Fatalf("unexpected srt:\n%s", sb.String())
	}
	parsed, err := segment.ParseSubtitles(strings.NewReader(sb.String()))
	if err != nil || len(parsed) != 2 {
		t.Fatalf("expected written srt to parse back, got %d segments, err %v", len(parsed), err)
	}
}

func TestDecodeJSONShapes(t *testing.T) {
	bare := `[
		{"start": 0.0, "end": 1.2, "text": " hello ", "speaker": "SPEAKER_01",
		 "words": [{"word": "hello", "start": 0.1, "end": 0.5, "score": 0.9}, {"word": "uh"}]},
		{"start": 1.5, "end": 2.0, "text": "", "speaker": null},
		{"start": 2.0, "end": 3.0, "text": "world", "speaker": null}
	]`
	segs, err := segment.DecodeJSON(strings.NewReader(bare))
	if err != nil {
		t.Fatalf("DecodeJSON returned error: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("expected empty-text segment skipped, got %d", len(segs))
	}
	if segs[0].Text != "hello" || segs[0].Speaker != "SPEAKER_01" {
		t.Fatalf("unexpected first segment %+v", segs[0])
	}
	if len(segs[0].Words) != 1 || segs[0].Words[0].Score != 0.9 {
		t.Fatalf("expected untimed word dropped, got %+v", segs[0].Words)
	}
	if segs[1].ID != 2 || segs[1].Speaker != "" {
		t.Fatalf("expected positional id 2 and no speaker, got %+v", segs[1])
	}

	wrapped := `{"segments": [{"id": 7, "start": 0, "end": 1, "text": "x"}]}`
	segs, err = segment.DecodeJSON(strings.NewReader(wrapped))
	if err != nil {
		t.Fatalf("DecodeJSON returned error: %v", err)
	}
	if len(segs) != 1 || segs[0].ID != 7 {
		t.Fatalf("unexpected wrapped decode %+v", segs)
	}
}

func TestDecodeJSONErrors(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"missing":   `[{"start": 0, "text": "x"}]`,
		"duplicate": `[{"id": 1, "start": 0, "end": 1, "text": "a"}, {"id": 1, "start": 1, "end": 2, "text": "b"}]`,
		"reversed":  `[{"start": 2, "end": 1, "text": "a"}]`,
	}
	for name, input := range cases {
		if _, err := segment.DecodeJSON(strings.NewReader(input)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadFileDispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	srtPath := filepath.Join(dir, "in.srt")
	if err := os.WriteFile(srtPath, []byte("1\n00:00:00,000 --> 00:00:01,000\nhi\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	segs, err := segment.LoadFile(srtPath)
	if err != nil || len(segs) != 1 {
		t.Fatalf("LoadFile srt: %d segments, err %v", len(segs), err)
	}
	if _, err := segment.LoadFile(filepath.Join(dir, "in.txt")); err == nil {
		t.Fatal("expected unsupported extension error")
	}
}
