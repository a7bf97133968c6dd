package ffmpeg_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"dubmix/internal/media/ffmpeg"
	"dubmix/internal/testsupport"
	"dubmix/internal/wavio"
)

func TestDecodeArgs(t *testing.T) {
	got := strings.Join(ffmpeg.DecodeArgs("in.mkv", 2, 22050, "out.wav"), " ")
	for _, want := range []string{"-i in.mkv", "-map 0:2", "-ac 1", "-ar 22050", "-c:a pcm_s16le out.wav"} {
		if !strings.Contains(got, want) {
			t.Fatalf("expected %q in %q", want, got)
		}
	}
	if first := strings.Join(ffmpeg.DecodeArgs("in.mp3", ffmpeg.AnyAudioStream, 8000, "o.wav"), " "); !strings.Contains(first, "-map 0:a:0") {
		t.Fatalf("expected first-audio mapping, got %q", first)
	}
}

func TestDecodeMonoRunsBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}
	dir := t.TempDir()
	fixture := filepath.Join(dir, "fixture.wav")
	testsupport.WriteClip(t, fixture, testsupport.Tone(100, 0.5, 0.25, 8000))

	stub := filepath.Join(dir, "ffmpeg")
	script := "#!/bin/sh\nfor last; do :; done\ncp " + fixture + " \"$last\"\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	dest := filepath.Join(dir, "decoded.wav")
	if err := ffmpeg.DecodeMono(context.Background(), stub, filepath.Join(dir, "bed.mp3"), 1, 8000, dest); err != nil {
		t.Fatalf("DecodeMono: %v", err)
	}
	buf, err := wavio.ReadFile(dest)
	if err != nil {
		t.Fatalf("read decoded: %v", err)
	}
	if buf.SampleRate != 8000 || buf.Len() != 2000 {
		t.Fatalf("unexpected decoded buffer: rate=%d len=%d", buf.SampleRate, buf.Len())
	}
}

func TestDecodeMonoReportsFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell stub")
	}
	stub := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\necho 'no such stream' >&2\nexit 1\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	err := ffmpeg.DecodeMono(context.Background(), stub, "bed.mp3", 0, 8000, filepath.Join(t.TempDir(), "o.wav"))
	if err == nil || !strings.Contains(err.Error(), "no such stream") {
		t.Fatalf("expected ffmpeg output in error, got %v", err)
	}
	if err := ffmpeg.DecodeMono(context.Background(), stub, "bed.mp3", 0, 0, "o.wav"); err == nil {
		t.Fatal("expected invalid rate error")
	}
}
