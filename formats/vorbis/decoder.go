// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/Liam-coding/Voice-API/audio"
)

// oggReader is the subset of oggvorbis.Reader the source needs.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec oggReader
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// ReadSamples reads interleaved values straight into dst. oggvorbis
// counts values, not frames, so dst is trimmed to whole frames first.
func (s *source) ReadSamples(dst []float32) (int, error) {
	ch := max(s.dec.Channels(), 1)
	want := len(dst) - len(dst)%ch
	if want == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:want])
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("vorbis: %w", err)
	}
	return n, err
}

// Decoder decodes Ogg Vorbis streams via jfreymuth/oggvorbis.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("vorbis: %w", err)
	}
	if dec.Channels() < 1 || dec.SampleRate() < 1 {
		return nil, fmt.Errorf("vorbis: invalid stream layout (%d ch, %d Hz)", dec.Channels(), dec.SampleRate())
	}

	return &source{dec: dec}, nil
}
