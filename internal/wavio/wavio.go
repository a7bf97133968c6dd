package wavio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"dubmix/internal/audio"
)

const (
	outputBitDepth = 16
	pcmFormat      = 1
)

// ErrInvalidWAV marks files the decoder cannot read as PCM WAV.
var ErrInvalidWAV = errors.New("invalid wav")

// PCM16 converts one float sample to its 16-bit PCM value.
func PCM16(sample float32) int16 {
	v := float64(sample)
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(-1, math.Min(1, v))
	return int16(math.Round(v * 32767))
}

// Encode writes buf as a 16-bit mono WAV stream.
func Encode(w io.WriteSeeker, buf audio.Buffer) error {
	if buf.SampleRate <= 0 {
		return fmt.Errorf("encode wav: invalid sample rate %d", buf.SampleRate)
	}
	data := make([]int, len(buf.Samples))
	for i, s := range buf.Samples {
		data[i] = int(PCM16(s))
	}
	enc := wav.NewEncoder(w, buf.SampleRate, outputBitDepth, 1, pcmFormat)
	intBuf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: buf.SampleRate},
		Data:           data,
		SourceBitDepth: outputBitDepth,
	}
	if err := enc.Write(intBuf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize wav: %w", err)
	}
	return nil
}

// WriteFile writes buf to path, creating parent directories. The file is
// written under a temporary name and renamed into place.
func WriteFile(path string, buf audio.Buffer) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp wav: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if err := Encode(tmp, buf); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp wav: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return fmt.Errorf("move wav into place: %w", err)
	}
	return nil
}

// Decode reads a PCM WAV stream into a mono float buffer.
func Decode(r io.ReadSeeker) (audio.Buffer, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return audio.Buffer{}, fmt.Errorf("%w: not a PCM wav stream", ErrInvalidWAV)
	}
	pcm, err := dec.FullPCMBuffer()
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%w: read pcm: %v", ErrInvalidWAV, err)
	}
	if pcm.Format == nil || pcm.Format.SampleRate <= 0 {
		return audio.Buffer{}, fmt.Errorf("%w: missing format", ErrInvalidWAV)
	}
	channels := pcm.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	bitDepth := pcm.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return audio.Buffer{}, fmt.Errorf("%w: unsupported bit depth %d", ErrInvalidWAV, bitDepth)
	}
	scale := 1.0 / math.Pow(2, float64(bitDepth-1))
	if bitDepth == 8 {
		// 8-bit WAV is unsigned; go-audio hands back the raw byte values.
		return audio.Buffer{Samples: downmix(pcm.Data, channels, scale, 128), SampleRate: pcm.Format.SampleRate}, nil
	}
	return audio.Buffer{Samples: downmix(pcm.Data, channels, scale, 0), SampleRate: pcm.Format.SampleRate}, nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) (audio.Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("open wav: %w", err)
	}
	defer file.Close()
	buf, err := Decode(file)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("%s: %w", path, err)
	}
	return buf, nil
}

func downmix(data []int, channels int, scale float64, offset int) []float32 {
	frames := len(data) / channels
	out := make([]float32, frames)
	for f := 0; f < frames; f++ {
		var sum float64
		base := f * channels
		for c := 0; c < channels; c++ {
			sum += float64(data[base+c] - offset)
		}
		out[f] = float32(sum / float64(channels) * scale)
	}
	return out
}
