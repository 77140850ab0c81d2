// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"

	"github.com/Liam-coding/Voice-API/audio"
	"github.com/Liam-coding/Voice-API/utils"
)

// go-mp3 always produces interleaved stereo 16-bit little-endian PCM.
const (
	channels       = 2
	bytesPerSample = 2
)

// mp3Reader is the subset of gomp3.Decoder the source needs.
type mp3Reader interface {
	Read([]byte) (int, error)
	SampleRate() int
}

type source struct {
	dec  mp3Reader
	buf  []byte
	tail []byte // odd byte left over from the previous read
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return cap(s.buf) / bytesPerSample }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst)*bytesPerSample - len(s.tail)
	if cap(s.buf) < len(s.tail)+need {
		s.buf = make([]byte, len(s.tail)+need)
	}
	s.buf = s.buf[:len(s.tail)+need]
	copy(s.buf, s.tail)

	n, err := s.dec.Read(s.buf[len(s.tail):])
	avail := s.buf[:len(s.tail)+n]
	samples := len(avail) / bytesPerSample
	s.tail = append(s.tail[:0], avail[samples*bytesPerSample:]...)

	for i := range samples {
		dst[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(avail[i*bytesPerSample:])))
	}

	if err != nil && !errors.Is(err, io.EOF) {
		return samples, fmt.Errorf("mp3: %w", err)
	}
	return samples, err
}

// Decoder decodes MPEG-1/2 Layer III streams through go-mp3.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("mp3: %w", err)
	}
	if dec.SampleRate() <= 0 {
		return nil, fmt.Errorf("mp3: invalid sample rate %d", dec.SampleRate())
	}

	return &source{dec: dec, buf: make([]byte, 8192)}, nil
}
