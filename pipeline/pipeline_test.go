// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"bytes"
	"errors"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/Liam-coding/Voice-API/formats/raw"
	"github.com/Liam-coding/Voice-API/formats/wav"
	"github.com/Liam-coding/Voice-API/internal/audiotest"
	"github.com/Liam-coding/Voice-API/probe"
	"github.com/Liam-coding/Voice-API/quality"
)

func quiet() Option {
	return WithLogger(slog.New(slog.DiscardHandler))
}

func rmsOf(t *testing.T, pcm []byte) float64 {
	t.Helper()

	samples, err := raw.Decode(pcm, raw.PCM16)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return quality.Measure(samples).RMS
}

func TestNormalize_ShortInput(t *testing.T) {
	t.Parallel()

	p := New(quiet())
	for _, n := range []int{0, 1, 2, 50, 99} {
		out := p.Normalize(audiotest.SinePCM16(16000, 200, 440, 0.5)[:n])

		if !out.Substituted {
			t.Errorf("%d bytes: not substituted", n)
		}
		if out.Verdict.Reason != quality.ReasonTooShort {
			t.Errorf("%d bytes: reason = %v, want too_short", n, out.Verdict.Reason)
		}
		if len(out.PCM) != 32000 {
			t.Errorf("%d bytes: output = %d bytes, want 32000", n, len(out.PCM))
		}
	}
}

func TestNormalize_SpeechPCM16(t *testing.T) {
	t.Parallel()

	p := New(quiet())
	for _, n := range []int{160, 1600, 16000, 48000} {
		out := p.Normalize(audiotest.SinePCM16(16000, n, 440, 0.3))

		if out.Substituted {
			t.Errorf("%d samples: substituted (%v)", n, out.Verdict.Reason)
		}
		if out.Strategy != "pcm16" {
			t.Errorf("%d samples: strategy = %q, want pcm16", n, out.Strategy)
		}
		if !out.Verdict.Acceptable || out.Verdict.Degraded {
			t.Errorf("%d samples: verdict = %+v", n, out.Verdict)
		}
		if want := 2 * min(n, MaxOutputSamples); len(out.PCM) != want {
			t.Errorf("%d samples: output = %d bytes, want %d", n, len(out.PCM), want)
		}
	}
}

func TestNormalize_Silence(t *testing.T) {
	t.Parallel()

	p := New(quiet())
	out := p.Normalize(make([]byte, 3200))

	if !out.Substituted {
		t.Fatal("silence was not substituted")
	}
	if out.Verdict.Reason != quality.ReasonTooQuiet {
		t.Errorf("reason = %v, want too_quiet", out.Verdict.Reason)
	}
	if out.Strategy != "" {
		t.Errorf("strategy = %q, want none", out.Strategy)
	}
	if n := len(out.PCM); n < 16000 || n > 64000 {
		t.Errorf("output = %d bytes, want 0.5 s to 2 s", n)
	}
	if rmsOf(t, out.PCM) == 0 {
		t.Error("substitute tone is silent")
	}
}

func TestNormalize_SubstituteIsDeterministic(t *testing.T) {
	t.Parallel()

	p := New(quiet())
	a := p.Normalize(make([]byte, 3200))
	b := p.Normalize(make([]byte, 3200))

	if !bytes.Equal(a.PCM, b.PCM) {
		t.Error("two substitutions for the same input differ")
	}

	// the tone itself is acceptable input
	again := p.Normalize(a.PCM)
	if again.Substituted {
		t.Errorf("probe tone was rejected: %v", again.Verdict.Reason)
	}
	if len(again.PCM) != len(a.PCM) {
		t.Errorf("probe tone length changed: %d -> %d", len(a.PCM), len(again.PCM))
	}
}

func TestNormalize_Degraded(t *testing.T) {
	t.Parallel()

	out := New(quiet()).Normalize(audiotest.SinePCM16(16000, 4000, 440, 0.004))

	if out.Substituted {
		t.Fatalf("soft input substituted: %v", out.Verdict.Reason)
	}
	if !out.Verdict.Degraded {
		t.Errorf("verdict = %+v, want degraded", out.Verdict)
	}
}

// sineWAV returns n samples of a 440 Hz sine as a mono 16-bit WAV file.
func sineWAV(t testing.TB, rate, n int) []byte {
	t.Helper()

	samples := audiotest.Sine(rate, n, 440, 0.3)
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s * 32767)
	}
	file, err := wav.Marshal(rate, 16, 1, data)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	return file
}

func TestNormalize_WAV(t *testing.T) {
	t.Parallel()

	out := New(quiet()).Normalize(sineWAV(t, 8000, 8000))

	if out.Substituted {
		t.Fatalf("wav input substituted: %v (%v)", out.Verdict.Reason, out.Attempts)
	}
	if out.Strategy != "container" {
		t.Errorf("strategy = %q, want container", out.Strategy)
	}
	if out.Hint != (probe.Hint{Kind: probe.Container, Format: probe.FormatWAV}) {
		t.Errorf("hint = %v", out.Hint)
	}
	if len(out.Attempts) != 1 || out.Attempts[0].Strategy != "pcm16" || !errors.Is(out.Attempts[0].Err, ErrSkipped) {
		t.Errorf("attempts = %v, want skipped pcm16", out.Attempts)
	}
	// one second at 8 kHz becomes about one second at 16 kHz
	if n := len(out.PCM) / 2; n < 15900 || n > MaxOutputSamples {
		t.Errorf("output = %d samples", n)
	}
	if d := out.Duration().Seconds(); d < 0.99 || d > 1 {
		t.Errorf("duration = %v", out.Duration())
	}
}

func TestNormalize_LongWAV(t *testing.T) {
	t.Parallel()

	// past the decode limit the container is cut, not handed to the raw
	// readers
	out := New(quiet()).Normalize(sineWAV(t, TargetRate, 61*TargetRate))

	if out.Substituted || out.Strategy != "container" {
		t.Fatalf("strategy = %q substituted = %t, attempts %v", out.Strategy, out.Substituted, out.Attempts)
	}
	if out.Verdict.Reason != quality.ReasonNone || !out.Verdict.Acceptable {
		t.Errorf("verdict = %+v", out.Verdict)
	}
	if len(out.PCM) != 2*MaxOutputSamples {
		t.Errorf("output = %d bytes", len(out.PCM))
	}
}

func TestNormalize_UnsupportedContainer(t *testing.T) {
	t.Parallel()

	// a webm header over noise: loud enough for every raw reading, but it
	// is container payload
	data := []byte{0x1A, 0x45, 0xDF, 0xA3}
	rng := rand.New(rand.NewPCG(1, 2))
	for range 8192 {
		data = append(data, byte(rng.Uint32()))
	}

	out := New(quiet()).Normalize(data)

	if out.Hint != (probe.Hint{Kind: probe.Container, Format: probe.FormatWebM}) {
		t.Fatalf("hint = %v", out.Hint)
	}
	if !out.Substituted || out.Strategy != "" {
		t.Fatalf("strategy = %q substituted = %t", out.Strategy, out.Substituted)
	}
	if out.Verdict.Reason != quality.ReasonUndecodable {
		t.Errorf("reason = %v, want undecodable", out.Verdict.Reason)
	}
	if len(out.PCM) != 32000 {
		t.Errorf("output = %d bytes, want the 1 s default", len(out.PCM))
	}
	for _, a := range out.Attempts {
		if a.Strategy == "container" {
			if !errors.Is(a.Err, ErrNoDecoder) {
				t.Errorf("container: %v", a.Err)
			}
			continue
		}
		if !errors.Is(a.Err, ErrSkipped) {
			t.Errorf("%s: %v, want skipped", a.Strategy, a.Err)
		}
	}
	if len(out.Attempts) != 4 {
		t.Errorf("attempts = %v", out.Attempts)
	}
}

func TestNormalize_Undecodable(t *testing.T) {
	t.Parallel()

	// odd-length DC bytes: constant under every raw reading and no container
	// signature
	data := bytes.Repeat([]byte{0x80}, 401)
	out := New(quiet()).Normalize(data)

	if !out.Substituted {
		t.Fatal("not substituted")
	}
	if out.Verdict.Reason != quality.ReasonUndecodable {
		t.Errorf("reason = %v, want undecodable", out.Verdict.Reason)
	}
	if len(out.PCM) != 32000 {
		t.Errorf("output = %d bytes, want the 1 s default", len(out.PCM))
	}

	var methods []string
	for _, a := range out.Attempts {
		methods = append(methods, a.Strategy)
	}
	if want := []string{"pcm16", "container", "float32", "uint8"}; !slices.Equal(methods, want) {
		t.Errorf("attempts = %v, want %v", methods, want)
	}
}

type recorded struct {
	strategy    string
	substituted bool
	reason      string
}

type fakeRecorder struct {
	mu    sync.Mutex
	calls []recorded
}

func (r *fakeRecorder) ObserveNormalize(strategy string, substituted bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, recorded{strategy, substituted, reason})
}

func TestNormalize_Recorder(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	p := New(quiet(), WithRecorder(rec))

	p.Normalize(audiotest.SinePCM16(16000, 1600, 440, 0.3))
	p.Normalize(make([]byte, 3200))

	want := []recorded{
		{"pcm16", false, "none"},
		{"none", true, "too_quiet"},
	}
	if !slices.Equal(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

func TestNormalize_Dump(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	p := New(quiet(), WithDumpDir(dir))
	out := p.Normalize(audiotest.SinePCM16(16000, 1600, 440, 0.3))

	files, err := filepath.Glob(filepath.Join(dir, "*.wav"))
	if err != nil || len(files) != 1 {
		t.Fatalf("dump files = %v, %v", files, err)
	}

	dumped, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	if probe.Detect(dumped).Format != probe.FormatWAV {
		t.Fatal("dump is not a wav file")
	}

	again := New(quiet()).Normalize(dumped)
	if again.Substituted || len(again.PCM) != len(out.PCM) {
		t.Errorf("dump re-normalized to %d bytes (substituted %v), want %d", len(again.PCM), again.Substituted, len(out.PCM))
	}
}

func TestNormalize_Concurrent(t *testing.T) {
	t.Parallel()

	p := New(quiet())
	input := audiotest.SinePCM16(16000, 8000, 440, 0.3)
	want := p.Normalize(input).PCM

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			if got := p.Normalize(input).PCM; !bytes.Equal(got, want) {
				t.Error("concurrent result differs")
			}
		})
	}
	wg.Wait()
}

func BenchmarkNormalize(b *testing.B) {
	p := New(quiet())
	input := audiotest.SinePCM16(16000, 16000, 440, 0.3)

	for b.Loop() {
		p.Normalize(input)
	}
}
