// SPDX-License-Identifier: EPL-2.0

package intpcm

import (
	"errors"
	"io"
	"testing"

	goaudio "github.com/go-audio/audio"
)

type fakeReader struct {
	data []int
	off  int
}

func (f *fakeReader) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	n := copy(buf.Data, f.data[f.off:])
	f.off += n
	return n, nil
}

func TestSource_Scaling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		bitDepth  int
		unsigned8 bool
		in        int
		want      float32
	}{
		{name: "16-bit min", bitDepth: 16, in: -32768, want: -1},
		{name: "24-bit half", bitDepth: 24, in: 1 << 22, want: 0.5},
		{name: "32-bit quarter", bitDepth: 32, in: 1 << 29, want: 0.25},
		{name: "8-bit unsigned centre", bitDepth: 8, unsigned8: true, in: 128, want: 0},
		{name: "8-bit signed", bitDepth: 8, in: -64, want: -0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			format := &goaudio.Format{NumChannels: 1, SampleRate: 8000}
			src, err := New(&fakeReader{data: []int{tt.in}}, format, tt.bitDepth, tt.unsigned8)
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			buf := make([]float32, 4)
			n, err := src.ReadSamples(buf)
			if n != 1 || !errors.Is(err, io.EOF) {
				t.Fatalf("ReadSamples = (%d, %v), want (1, EOF)", n, err)
			}
			if buf[0] != tt.want {
				t.Errorf("sample = %v, want %v", buf[0], tt.want)
			}
		})
	}
}

func TestNew_Rejects(t *testing.T) {
	t.Parallel()

	format := &goaudio.Format{NumChannels: 1, SampleRate: 8000}
	if _, err := New(&fakeReader{}, format, 12, false); !errors.Is(err, ErrUnsupportedBitDepth) {
		t.Errorf("err = %v, want ErrUnsupportedBitDepth", err)
	}
	if _, err := New(&fakeReader{}, nil, 16, false); err == nil {
		t.Error("New with nil format returned no error")
	}
}

func TestSource_StereoWholeFrames(t *testing.T) {
	t.Parallel()

	format := &goaudio.Format{NumChannels: 2, SampleRate: 8000}
	src, _ := New(&fakeReader{data: []int{1, 2, 3, 4, 5, 6}}, format, 16, false)

	n, err := src.ReadSamples(make([]float32, 5))
	if n != 4 || err != nil {
		t.Fatalf("ReadSamples = (%d, %v), want (4, nil)", n, err)
	}
	n, err = src.ReadSamples(make([]float32, 4))
	if n != 2 || !errors.Is(err, io.EOF) {
		t.Fatalf("ReadSamples = (%d, %v), want (2, EOF)", n, err)
	}
}
