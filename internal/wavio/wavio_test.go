package wavio_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"dubmix/internal/audio"
	"dubmix/internal/wavio"
)

func TestPCM16Conversion(t *testing.T) {
	cases := []struct {
		in   float32
		want int16
	}{
		{0, 0},
		{1, 32767},
		{-1, -32767},
		{1.7, 32767},
		{-3, -32767},
		{0.5, 16384},
		{-0.5, -16384},
		{float32(math.NaN()), 0},
	}
	for _, tc := range cases {
		if got := wavio.PCM16(tc.in); got != tc.want {
			t.Fatalf("PCM16(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestWriteFileIsBitExact(t *testing.T) {
	samples := []float32{0, 0.25, -0.25, 1, -1, 1.5, 0.00002}
	path := filepath.Join(t.TempDir(), "nested", "out.wav")
	if err := wavio.WriteFile(path, audio.Buffer{Samples: samples, SampleRate: 22050}); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	idx := bytes.Index(raw, []byte("data"))
	if idx < 0 {
		t.Fatal("data chunk not found")
	}
	size := binary.LittleEndian.Uint32(raw[idx+4 : idx+8])
	if int(size) != len(samples)*2 {
		t.Fatalf("unexpected data size %d", size)
	}
	pcm := raw[idx+8:]
	for i, s := range samples {
		got := int16(binary.LittleEndian.Uint16(pcm[i*2:]))
		if want := wavio.PCM16(s); got != want {
			t.Fatalf("sample %d: got %d want %d", i, got, want)
		}
	}
	if rate := binary.LittleEndian.Uint32(raw[24:28]); rate != 22050 {
		t.Fatalf("unexpected header sample rate %d", rate)
	}
}

func TestReadFileRoundTrip(t *testing.T) {
	samples := make([]float32, 2205)
	for i := range samples {
		samples[i] = float32(0.8 * math.Sin(2*math.Pi*440*float64(i)/22050))
	}
	path := filepath.Join(t.TempDir(), "tone.wav")
	if err := wavio.WriteFile(path, audio.Buffer{Samples: samples, SampleRate: 22050}); err != nil {
		t.Fatalf("WriteFile returned error: %v", err)
	}
	buf, err := wavio.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if buf.SampleRate != 22050 || buf.Len() != len(samples) {
		t.Fatalf("unexpected decoded buffer: %d Hz, %d samples", buf.SampleRate, buf.Len())
	}
	for i := range samples {
		if math.Abs(float64(buf.Samples[i]-samples[i])) > 2.0/32767 {
			t.Fatalf("sample %d drifted: %v vs %v", i, buf.Samples[i], samples[i])
		}
	}
}

func TestReadFileRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	if err := os.WriteFile(path, []byte("definitely not riff"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := wavio.ReadFile(path); !errors.Is(err, wavio.ErrInvalidWAV) {
		t.Fatalf("expected ErrInvalidWAV, got %v", err)
	}
}
