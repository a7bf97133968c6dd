package synthcache_test

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"dubmix/internal/audio"
	"dubmix/internal/synth"
	"dubmix/internal/synthcache"
	"dubmix/internal/testsupport"
)

func countingSynth(calls *atomic.Int32) synth.Synthesizer {
	return synth.Func(func(ctx context.Context, req synth.Request) (audio.Buffer, error) {
		calls.Add(1)
		return testsupport.Tone(220, 0.5, 0.1, 8000), nil
	})
}

func TestWrapServesSecondRequestFromCache(t *testing.T) {
	store := testsupport.MustOpenCache(t)
	var calls atomic.Int32
	cached, err := synthcache.Wrap(store, countingSynth(&calls), "clips", nil)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	req := synth.Request{SegmentID: 1, Text: "Hello  world", Speaker: "neutral_female", Params: synth.Params{LengthScale: 1}}
	first, err := cached.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("first Synthesize: %v", err)
	}
	req.SegmentID = 9
	req.Text = "Hello world"
	second, err := cached.Synthesize(context.Background(), req)
	if err != nil {
		t.Fatalf("second Synthesize: %v", err)
	}

	if calls.Load() != 1 {
		t.Fatalf("expected one backend call, got %d", calls.Load())
	}
	if second.SampleRate != first.SampleRate || len(second.Samples) != len(first.Samples) {
		t.Fatalf("cached clip differs: %d/%d vs %d/%d", second.SampleRate, len(second.Samples), first.SampleRate, len(first.Samples))
	}
	for i := range first.Samples {
		if first.Samples[i] != second.Samples[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, first.Samples[i], second.Samples[i])
		}
	}
	if stats := cached.Stats(); stats.Hits != 1 || stats.Misses != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestKeySeparatesVoiceSettings(t *testing.T) {
	base := synth.Request{Text: "line", Speaker: "a", Params: synth.Params{LengthScale: 1, NoiseScale: 0.667, NoiseScaleW: 0.8}}
	tests := []struct {
		name    string
		backend string
		mutate  func(*synth.Request)
	}{
		{name: "backend", backend: "command"},
		{name: "speaker", backend: "clips", mutate: func(r *synth.Request) { r.Speaker = "b" }},
		{name: "length scale", backend: "clips", mutate: func(r *synth.Request) { r.Params.LengthScale = 1.1 }},
		{name: "noise scale", backend: "clips", mutate: func(r *synth.Request) { r.Params.NoiseScale = 0.5 }},
		{name: "text", backend: "clips", mutate: func(r *synth.Request) { r.Text = "other line" }},
	}
	want := synthcache.Key("clips", "", base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			if tt.mutate != nil {
				tt.mutate(&req)
			}
			if got := synthcache.Key(tt.backend, "", req); got == want {
				t.Fatalf("expected key to change, both %s", got)
			}
		})
	}
	same := base
	same.SegmentID = 42
	same.Text = "  line "
	if synthcache.Key("clips", "", same) != want {
		t.Fatal("segment id and surrounding whitespace must not affect the key")
	}
	if synthcache.Key("clips", "segment=0", base) == want {
		t.Fatal("expected backend identity to change the key")
	}
}

func TestWrapKeepsSameTextClipsApart(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteClip(t, filepath.Join(dir, "0.wav"), testsupport.Constant(0.2, 1.0, 8000))
	testsupport.WriteClip(t, filepath.Join(dir, "1.wav"), testsupport.Constant(0.7, 0.5, 8000))
	clips, err := synth.NewClips(dir, synth.Request{}, nil)
	if err != nil {
		t.Fatalf("NewClips: %v", err)
	}
	cached, err := synthcache.Wrap(testsupport.MustOpenCache(t), clips, "clips", nil)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}

	ctx := context.Background()
	for round := 0; round < 2; round++ {
		for _, tc := range []struct {
			id      int
			samples int
			value   float32
		}{
			{0, 8000, 0.2},
			{1, 4000, 0.7},
		} {
			buf, err := cached.Synthesize(ctx, synth.Request{SegmentID: tc.id, Text: "Yes."})
			if err != nil {
				t.Fatalf("round %d segment %d: %v", round, tc.id, err)
			}
			if buf.Len() != tc.samples || math.Abs(float64(buf.Samples[0]-tc.value)) > 1e-3 {
				t.Fatalf("round %d segment %d: got %d samples starting %v", round, tc.id, buf.Len(), buf.Samples[0])
			}
		}
	}
	if stats := cached.Stats(); stats.Hits != 2 || stats.Misses != 2 {
		t.Fatalf("expected one miss then one hit per segment, got %+v", stats)
	}
}

func TestWrapBypassesCacheWhenClipIsMissing(t *testing.T) {
	clips, err := synth.NewClips(t.TempDir(), synth.Request{}, nil)
	if err != nil {
		t.Fatalf("NewClips: %v", err)
	}
	store := testsupport.MustOpenCache(t)
	cached, err := synthcache.Wrap(store, clips, "clips", nil)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	if _, err := cached.Synthesize(context.Background(), synth.Request{SegmentID: 3, Text: "x"}); !errors.Is(err, synth.ErrClipNotFound) {
		t.Fatalf("expected ErrClipNotFound, got %v", err)
	}
	if n, err := store.Count(context.Background()); err != nil || n != 0 {
		t.Fatalf("expected empty cache, got %d (%v)", n, err)
	}
}

func TestWrapDoesNotCacheFailures(t *testing.T) {
	store := testsupport.MustOpenCache(t)
	boom := errors.New("tts crashed")
	var calls atomic.Int32
	failing := synth.Func(func(ctx context.Context, req synth.Request) (audio.Buffer, error) {
		calls.Add(1)
		return audio.Buffer{}, boom
	})
	cached, err := synthcache.Wrap(store, failing, "command", nil)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := cached.Synthesize(context.Background(), synth.Request{Text: "x"}); !errors.Is(err, boom) {
			t.Fatalf("attempt %d: expected backend error, got %v", i, err)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("expected failures to reach the backend every time, got %d calls", calls.Load())
	}
	if n, err := store.Count(context.Background()); err != nil || n != 0 {
		t.Fatalf("expected empty cache, got %d (%v)", n, err)
	}
}

func TestWrapRequiresStoreAndInner(t *testing.T) {
	if _, err := synthcache.Wrap(nil, synth.Func(nil), "clips", nil); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := synthcache.Wrap(testsupport.MustOpenCache(t), nil, "clips", nil); err == nil {
		t.Fatal("expected error for nil inner")
	}
}

func TestStoreReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "clips.db")
	store, err := synthcache.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	clip := audio.Buffer{Samples: []float32{0.25, -0.5, 1}, SampleRate: 16000}
	if err := store.Put(ctx, synthcache.Entry{Key: "k", Backend: "clips", Speaker: "s", Audio: clip}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := synthcache.Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	got, ok, err := reopened.Get(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.SampleRate != 16000 || len(got.Samples) != 3 || got.Samples[1] != -0.5 {
		t.Fatalf("unexpected clip %+v", got)
	}
	if _, ok, err := reopened.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestStorePutRejectsEmptyAudio(t *testing.T) {
	store := testsupport.MustOpenCache(t)
	err := store.Put(context.Background(), synthcache.Entry{Key: "k"})
	if !errors.Is(err, audio.ErrDegenerateAudio) {
		t.Fatalf("expected ErrDegenerateAudio, got %v", err)
	}
}

func TestStorePrune(t *testing.T) {
	store := testsupport.MustOpenCache(t)
	ctx := context.Background()
	clip := audio.Buffer{Samples: []float32{0.1}, SampleRate: 8000}
	if err := store.Put(ctx, synthcache.Entry{Key: "old", Audio: clip}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	removed, err := store.Prune(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", removed)
	}
}
