// SPDX-License-Identifier: EPL-2.0

// Package intpcm adapts go-audio integer PCM readers to audio.Source.
package intpcm

import (
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
)

var ErrUnsupportedBitDepth = errors.New("unsupported PCM bit depth")

// Reader is the part of the go-audio wav and aiff decoders used here.
type Reader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type Source struct {
	r        Reader
	format   *goaudio.Format
	bitDepth int
	offset   int
	scale    float32
	buf      *goaudio.IntBuffer
	done     bool
}

// New wraps r. unsigned8 marks 8-bit data stored with a +128 offset, as WAV
// does.
func New(r Reader, format *goaudio.Format, bitDepth int, unsigned8 bool) (*Source, error) {
	if format == nil || format.NumChannels < 1 || format.SampleRate < 1 {
		return nil, fmt.Errorf("invalid format %+v", format)
	}

	s := &Source{r: r, format: format, bitDepth: bitDepth}
	switch bitDepth {
	case 8:
		s.scale = 1.0 / (1 << 7)
		if unsigned8 {
			s.offset = 128
		}
	case 16:
		s.scale = 1.0 / (1 << 15)
	case 24:
		s.scale = 1.0 / (1 << 23)
	case 32:
		s.scale = 1.0 / (1 << 31)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}

	return s, nil
}

func (s *Source) SampleRate() int { return s.format.SampleRate }
func (s *Source) Channels() int   { return s.format.NumChannels }
func (s *Source) BitDepth() int   { return s.bitDepth }
func (s *Source) Close() error    { return nil }

func (s *Source) BufSize() int {
	if s.buf != nil {
		return cap(s.buf.Data)
	}
	return 4096
}

func (s *Source) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	want := len(dst) - len(dst)%s.Channels()
	if want == 0 {
		return 0, nil
	}

	if s.buf == nil || cap(s.buf.Data) < want {
		s.buf = &goaudio.IntBuffer{
			Format:         s.format,
			Data:           make([]int, want),
			SourceBitDepth: s.bitDepth,
		}
	}
	s.buf.Data = s.buf.Data[:want]

	n, err := s.r.PCMBuffer(s.buf)
	for i, v := range s.buf.Data[:n] {
		dst[i] = float32(v-s.offset) * s.scale
	}

	switch {
	case err == nil && n == want:
		return n, nil
	case err == nil, errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		s.done = true
		return n, io.EOF
	default:
		return n, fmt.Errorf("pcm buffer: %w", err)
	}
}
