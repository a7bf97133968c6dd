package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubmix/internal/audio"
	"dubmix/internal/segment"
	"dubmix/internal/wavio"
)

// WriteClip writes buf as a 16-bit WAV at path.
func WriteClip(t testing.TB, path string, buf audio.Buffer) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := wavio.WriteFile(path, buf); err != nil {
		t.Fatalf("write clip %s: %v", path, err)
	}
}

// WriteClips writes one <id>.wav tone per segment into dir. Each clip lasts
// the segment duration scaled by ratio.
func WriteClips(t testing.TB, dir string, segments []segment.Segment, ratio float64, rate int) {
	t.Helper()

	for _, seg := range segments {
		clip := Tone(440, 0.3, seg.Duration()*ratio, rate)
		WriteClip(t, filepath.Join(dir, fmt.Sprintf("%d.wav", seg.ID)), clip)
	}
}

// WriteSRT writes segments as an SRT file and returns its path.
func WriteSRT(t testing.TB, dir string, segments []segment.Segment) string {
	t.Helper()

	var b strings.Builder
	if err := segment.WriteSRT(&b, segments); err != nil {
		t.Fatalf("segment.WriteSRT: %v", err)
	}
	path := filepath.Join(dir, "input.srt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
