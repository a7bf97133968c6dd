package mixer_test

import (
	"errors"
	"math"
	"testing"

	"dubmix/internal/align"
	"dubmix/internal/audio"
	"dubmix/internal/mixer"
	"dubmix/internal/testsupport"
)

const rate = 8000

func newMixer(t *testing.T, mutate func(*mixer.Options)) *mixer.Mixer {
	t.Helper()
	opts := mixer.Options{SampleRate: rate, DuckingGain: 0.5, MusicGain: 1, VoiceGain: 1, Workers: 2}
	if mutate != nil {
		mutate(&opts)
	}
	m, err := mixer.New(opts, nil)
	if err != nil {
		t.Fatalf("mixer.New: %v", err)
	}
	return m
}

func chunk(t *testing.T, id int, start, end, stretch float64, buf audio.Buffer) align.AlignedChunk {
	t.Helper()
	return align.AlignedChunk{
		Segment:       testsupport.Segment(t, id, start, end, "x"),
		Audio:         buf,
		TargetStart:   start,
		TargetEnd:     end,
		StretchFactor: stretch,
	}
}

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func TestMixRejectsEmptyChunkList(t *testing.T) {
	_, err := newMixer(t, nil).Mix(nil, nil)
	if !errors.Is(err, mixer.ErrEmptyChunkList) {
		t.Fatalf("expected ErrEmptyChunkList, got %v", err)
	}
}

func TestMixOutputCoversEveryChunk(t *testing.T) {
	chunks := []align.AlignedChunk{
		chunk(t, 0, 0, 1, 1, testsupport.Constant(0.1, 1, rate)),
		chunk(t, 1, 2.5, 3.25, 1, testsupport.Constant(0.1, 0.75, rate)),
	}
	res, err := newMixer(t, nil).Mix(chunks, nil)
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if res.Audio.SampleRate != rate {
		t.Fatalf("expected rate %d, got %d", rate, res.Audio.SampleRate)
	}
	if want := int(3.25 * rate); res.Audio.Len() < want {
		t.Fatalf("output %d samples shorter than last chunk end %d", res.Audio.Len(), want)
	}
	if !near(res.Audio.Samples[int(2.6*rate)], 0.1) {
		t.Fatalf("expected voice at 2.6s, got %v", res.Audio.Samples[int(2.6*rate)])
	}
	if res.Audio.Samples[int(1.5*rate)] != 0 {
		t.Fatalf("expected silence between chunks, got %v", res.Audio.Samples[int(1.5*rate)])
	}
}

func TestMixHardClipsOverdrivenGain(t *testing.T) {
	m := newMixer(t, func(o *mixer.Options) { o.VoiceGain = 20; o.MusicGain = 8 })
	chunks := []align.AlignedChunk{
		chunk(t, 0, 0, 1, 1, testsupport.Tone(220, 0.9, 1, rate)),
		chunk(t, 1, 0.5, 1.5, 1, testsupport.Tone(330, 0.9, 1, rate)),
	}
	bg := testsupport.Tone(110, 0.9, 2, rate)
	res, err := m.Mix(chunks, &bg)
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	for i, s := range res.Audio.Samples {
		if s < -1 || s > 1 {
			t.Fatalf("sample %d out of range: %v", i, s)
		}
	}
	if res.ClippedSamples == 0 {
		t.Fatal("expected clipped samples to be reported")
	}
	if res.Peak <= 1 {
		t.Fatalf("expected pre-clip peak above 1, got %v", res.Peak)
	}
}

func TestMixDucksBackgroundUnderVoice(t *testing.T) {
	chunks := []align.AlignedChunk{chunk(t, 0, 0, 1, 1, testsupport.Constant(0.1, 1, rate))}
	bg := testsupport.Constant(0.5, 3, rate)
	res, err := newMixer(t, nil).Mix(chunks, &bg)
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if res.Audio.Len() != bg.Len() {
		t.Fatalf("expected output padded to background length %d, got %d", bg.Len(), res.Audio.Len())
	}
	if got := res.Audio.Samples[100]; !near(got, 0.35) {
		t.Fatalf("expected ducked background plus voice 0.35, got %v", got)
	}
	if got := res.Audio.Samples[int(2.5*rate)]; !near(got, 0.5) {
		t.Fatalf("expected unducked background 0.5, got %v", got)
	}
}

func TestMixPadsShortBackground(t *testing.T) {
	chunks := []align.AlignedChunk{chunk(t, 0, 0, 2, 1, testsupport.Constant(0.1, 2, rate))}
	bg := testsupport.Constant(0.5, 0.5, rate)
	res, err := newMixer(t, nil).Mix(chunks, &bg)
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if want := 3 * rate; res.Audio.Len() != want {
		t.Fatalf("expected timeline length %d, got %d", want, res.Audio.Len())
	}
	if got := res.Audio.Samples[rate]; !near(got, 0.1) {
		t.Fatalf("expected voice only after background ends, got %v", got)
	}
}

func TestMixResamplesAndStretchesChunks(t *testing.T) {
	// 3 s at 16 kHz squeezed into a 1 s window at 8 kHz.
	src := testsupport.Constant(0.2, 3, 16000)
	chunks := []align.AlignedChunk{chunk(t, 0, 0, 1, 1.0/3.0, src)}
	res, err := newMixer(t, nil).Mix(chunks, nil)
	if err != nil {
		t.Fatalf("Mix: %v", err)
	}
	if got := res.Audio.Samples[rate-2]; !near(got, 0.2) {
		t.Fatalf("expected voice just before 1s, got %v", got)
	}
	if got := res.Audio.Samples[rate+1]; got != 0 {
		t.Fatalf("expected silence after the window, got %v", got)
	}
}

func TestMixReportsDegenerateChunk(t *testing.T) {
	chunks := []align.AlignedChunk{
		chunk(t, 0, 0, 1, 1, testsupport.Constant(0.1, 1, rate)),
		chunk(t, 4, 1, 2, 1, audio.Buffer{Samples: []float32{0.3}, SampleRate: 16000}),
	}
	_, err := newMixer(t, nil).Mix(chunks, nil)
	if !errors.Is(err, audio.ErrDegenerateAudio) {
		t.Fatalf("expected ErrDegenerateAudio, got %v", err)
	}
	var segErr *align.SegmentError
	if !errors.As(err, &segErr) || segErr.SegmentID != 4 {
		t.Fatalf("expected SegmentError for segment 4, got %v", err)
	}
}

func TestMixIsIndependentOfWorkerCount(t *testing.T) {
	var chunks []align.AlignedChunk
	for i := range 12 {
		start := float64(i) * 0.4
		chunks = append(chunks, chunk(t, i, start, start+0.5, 1.1, testsupport.Tone(200+float64(i)*10, 0.2, 0.45, 11025)))
	}
	serial, err := newMixer(t, func(o *mixer.Options) { o.Workers = 1 }).Mix(chunks, nil)
	if err != nil {
		t.Fatalf("serial Mix: %v", err)
	}
	parallel, err := newMixer(t, func(o *mixer.Options) { o.Workers = 8 }).Mix(chunks, nil)
	if err != nil {
		t.Fatalf("parallel Mix: %v", err)
	}
	if serial.Audio.Len() != parallel.Audio.Len() {
		t.Fatalf("length differs: %d vs %d", serial.Audio.Len(), parallel.Audio.Len())
	}
	for i := range serial.Audio.Samples {
		if serial.Audio.Samples[i] != parallel.Audio.Samples[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, serial.Audio.Samples[i], parallel.Audio.Samples[i])
		}
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	cases := map[string]func(*mixer.Options){
		"zero rate":    func(o *mixer.Options) { o.SampleRate = 0 },
		"duck above 1": func(o *mixer.Options) { o.DuckingGain = 1.5 },
		"zero duck":    func(o *mixer.Options) { o.DuckingGain = 0 },
		"zero music":   func(o *mixer.Options) { o.MusicGain = 0 },
		"neg voice":    func(o *mixer.Options) { o.VoiceGain = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			opts := mixer.DefaultOptions()
			mutate(&opts)
			if _, err := mixer.New(opts, nil); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestTimelineDuckingTakesMinimum(t *testing.T) {
	tl := mixer.NewTimeline(rate, 100)
	tl.Place(0, make([]float32, 60), 0.5)
	tl.Place(40, make([]float32, 60), 0.3)

	if got := tl.DuckAt(50); got != 0.3 {
		t.Fatalf("overlap should take min duck 0.3, got %v", got)
	}
	if got := tl.DuckAt(10); got != 0.5 {
		t.Fatalf("expected 0.5 before overlap, got %v", got)
	}
	if got := tl.DuckAt(99); got != 0.3 {
		t.Fatalf("expected 0.3 after overlap, got %v", got)
	}
	tl.Place(0, make([]float32, 10), 0.9)
	if got := tl.DuckAt(5); got != 0.5 {
		t.Fatalf("weaker duck must not raise the curve, got %v", got)
	}
}

func TestTimelineGrowsMonotonically(t *testing.T) {
	tl := mixer.NewTimeline(rate, 10)
	tl.Place(8, []float32{0.25, 0.25, 0.25, 0.25}, 0.5)
	if tl.Len() != 12 {
		t.Fatalf("expected timeline to grow to 12, got %d", tl.Len())
	}
	if tl.Voice()[11] != 0.25 || tl.DuckAt(11) != 0.5 {
		t.Fatalf("grown region not written: voice=%v duck=%v", tl.Voice()[11], tl.DuckAt(11))
	}
	tl.Place(0, []float32{0.5}, 1)
	if tl.Len() != 12 {
		t.Fatalf("timeline must not shrink, got %d", tl.Len())
	}
	if tl.DuckAt(100) != 1 {
		t.Fatal("expected unity past the end")
	}
}
