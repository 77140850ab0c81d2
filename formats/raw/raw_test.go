// SPDX-License-Identifier: EPL-2.0

package raw

import (
	"errors"
	"math"
	"testing"

	"github.com/Liam-coding/Voice-API/internal/audiotest"
)

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	signal := audiotest.Sine(16000, 1601, 440, 0.3)

	tests := []struct {
		enc       Encoding
		tolerance float64
	}{
		{enc: PCM16, tolerance: 1.0 / 16384},
		{enc: Float32, tolerance: 0},
		{enc: Uint8, tolerance: 1.0 / 128},
	}

	for _, tt := range tests {
		t.Run(tt.enc.String(), func(t *testing.T) {
			t.Parallel()

			data := Encode(signal, tt.enc)
			if len(data) != len(signal)*tt.enc.Width() {
				t.Fatalf("encoded %d bytes, want %d", len(data), len(signal)*tt.enc.Width())
			}

			got, err := Decode(data, tt.enc)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if len(got) != len(signal) {
				t.Fatalf("decoded %d samples, want %d", len(got), len(signal))
			}
			for i := range got {
				if d := math.Abs(float64(got[i] - signal[i])); d > tt.tolerance {
					t.Fatalf("sample %d: %v vs %v (diff %v)", i, got[i], signal[i], d)
				}
			}
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
		enc  Encoding
		want error
	}{
		{name: "pcm16 single byte", data: []byte{1}, enc: PCM16, want: ErrEmpty},
		{name: "float misaligned", data: make([]byte, 6), enc: Float32, want: ErrMisaligned},
		{name: "float out of range", data: audiotest.Float32LE([]float32{0.5, 2}), enc: Float32, want: ErrOutOfRange},
		{name: "float nan", data: audiotest.Float32LE([]float32{float32(math.NaN())}), enc: Float32, want: ErrOutOfRange},
		{name: "uint8 empty", data: nil, enc: Uint8, want: ErrEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Decode(tt.data, tt.enc); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_PCM16DropsOddByte(t *testing.T) {
	t.Parallel()

	got, err := Decode([]byte{0x00, 0x40, 0xff}, PCM16)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0] != 0.5 {
		t.Errorf("got %v, want [0.5]", got)
	}
}

func TestDecode_Uint8Centre(t *testing.T) {
	t.Parallel()

	got, _ := Decode([]byte{128, 0, 255}, Uint8)
	if got[0] != 0 || got[1] != -1 || got[2] <= 0.99 {
		t.Errorf("got %v", got)
	}
}
