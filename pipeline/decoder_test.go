// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"slices"
	"testing"

	"github.com/Liam-coding/Voice-API/audio"
	"github.com/Liam-coding/Voice-API/formats/raw"
	"github.com/Liam-coding/Voice-API/internal/audiotest"
	"github.com/Liam-coding/Voice-API/probe"
)

type stubStrategy struct {
	name string
	fn   func([]byte) (audio.Signal, error)
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Decode(data []byte, _ probe.Hint) (audio.Signal, error) {
	return s.fn(data)
}

func TestDecoder_Strategies(t *testing.T) {
	t.Parallel()

	got := NewDecoder(DefaultRegistry(), 0).Strategies()
	if want := []string{"pcm16", "container", "float32", "uint8"}; !slices.Equal(got, want) {
		t.Errorf("Strategies() = %v, want %v", got, want)
	}
}

func TestDecoder_RecoversPanic(t *testing.T) {
	t.Parallel()

	ok := audio.Signal{Samples: []float32{0.5}, SampleRate: TargetRate}
	d := NewDecoderWith(
		stubStrategy{name: "broken", fn: func([]byte) (audio.Signal, error) { panic("index out of range") }},
		stubStrategy{name: "fine", fn: func([]byte) (audio.Signal, error) { return ok, nil }},
	)

	got, err := d.Decode([]byte{1, 2, 3}, probe.Hint{})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.Strategy != "fine" {
		t.Errorf("strategy = %q, want fine", got.Strategy)
	}
	if len(got.Attempts) != 1 || !errors.Is(got.Attempts[0].Err, ErrPanic) {
		t.Errorf("attempts = %v, want one panic", got.Attempts)
	}
}

func TestDecoder_Failure(t *testing.T) {
	t.Parallel()

	errA := errors.New("a")
	d := NewDecoderWith(
		stubStrategy{name: "a", fn: func([]byte) (audio.Signal, error) { return audio.Signal{}, errA }},
		stubStrategy{name: "b", fn: func([]byte) (audio.Signal, error) { return audio.Signal{}, ErrNoSignal }},
	)

	_, err := d.Decode(nil, probe.Hint{})

	var failure *DecodeFailure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %v, want *DecodeFailure", err)
	}
	if !slices.Equal(failure.Methods(), []string{"a", "b"}) {
		t.Errorf("Methods() = %v", failure.Methods())
	}
	if !errors.Is(err, errA) || !errors.Is(err, ErrNoSignal) {
		t.Errorf("%v does not wrap the strategy errors", err)
	}
}

func TestRawStrategy(t *testing.T) {
	t.Parallel()

	sine := audiotest.Sine(16000, 1600, 440, 0.3)
	pcm16 := rawStrategy{name: "pcm16", encoding: raw.PCM16, direct: true}
	f32 := rawStrategy{name: "float32", encoding: raw.Float32}
	u8 := rawStrategy{name: "uint8", encoding: raw.Uint8}

	tests := []struct {
		name    string
		s       rawStrategy
		data    []byte
		hint    probe.Hint
		wantErr error
		wantLen int
	}{
		{name: "pcm16 sine", s: pcm16, data: audiotest.PCM16(sine), wantLen: 1600},
		{name: "pcm16 under 100 bytes", s: pcm16, data: audiotest.PCM16(sine[:40]), wantErr: ErrSkipped},
		{name: "pcm16 behind signature", s: pcm16, data: audiotest.PCM16(sine), hint: probe.Hint{Kind: probe.Container, Format: probe.FormatOgg}, wantErr: ErrSkipped},
		{name: "pcm16 silence", s: pcm16, data: make([]byte, 3200), wantErr: ErrNoSignal},
		{name: "pcm16 too few", s: pcm16, data: audiotest.PCM16(sine[:100]), wantErr: ErrTooFewSamples},
		{name: "float32 sine", s: f32, data: audiotest.Float32LE(sine), wantLen: 1600},
		{name: "float32 out of range", s: f32, data: audiotest.Float32LE(audiotest.Sine(16000, 1600, 440, 1.5)), wantErr: raw.ErrOutOfRange},
		{name: "float32 misaligned", s: f32, data: make([]byte, 1602), wantErr: raw.ErrMisaligned},
		{name: "uint8 sine", s: u8, data: audiotest.Uint8(sine), wantLen: 1600},
		{name: "uint8 zero bytes", s: u8, data: make([]byte, 1600), wantErr: ErrConstant},
		{name: "float32 behind signature", s: f32, data: audiotest.Float32LE(sine), hint: probe.Hint{Kind: probe.Container, Format: probe.FormatWebM}, wantErr: ErrSkipped},
		{name: "uint8 behind signature", s: u8, data: audiotest.Uint8(sine), hint: probe.Hint{Kind: probe.Container, Format: probe.FormatMP3}, wantErr: ErrSkipped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sig, err := tt.s.Decode(tt.data, tt.hint)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if sig.Len() != tt.wantLen || sig.SampleRate != TargetRate {
				t.Errorf("got %d samples at %d Hz", sig.Len(), sig.SampleRate)
			}
		})
	}
}

func TestContainerStrategy_HintWithoutDecoder(t *testing.T) {
	t.Parallel()

	s := containerStrategy{registry: DefaultRegistry()}
	_, err := s.Decode([]byte("fLaC\x00\x00\x00\x22"), probe.Hint{Kind: probe.Container, Format: probe.FormatFLAC})
	if !errors.Is(err, ErrNoDecoder) {
		t.Errorf("err = %v, want ErrNoDecoder", err)
	}
}

func TestContainerStrategy_Limit(t *testing.T) {
	t.Parallel()

	file := sineWAV(t, TargetRate, 61*TargetRate)
	s := containerStrategy{registry: DefaultRegistry(), limit: defaultMaxDecodedSamples}

	sig, err := s.Decode(file, probe.Detect(file))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if sig.Len() != defaultMaxDecodedSamples || !sig.Truncated {
		t.Errorf("got %d samples, truncated=%t; want %d, true", sig.Len(), sig.Truncated, defaultMaxDecodedSamples)
	}
}
