// SPDX-License-Identifier: EPL-2.0

package audio

import "io"

// SliceSource serves interleaved samples from memory.
type SliceSource struct {
	samples    []float32
	sampleRate int
	channels   int
	off        int
}

// NewSliceSource wraps samples, which must be interleaved for channels > 1.
func NewSliceSource(samples []float32, sampleRate, channels int) *SliceSource {
	if channels < 1 {
		channels = 1
	}
	return &SliceSource{samples: samples, sampleRate: sampleRate, channels: channels}
}

// SignalSource exposes a mono Signal as a Source.
func SignalSource(sig Signal) *SliceSource {
	return NewSliceSource(sig.Samples, sig.SampleRate, 1)
}

func (s *SliceSource) SampleRate() int { return s.sampleRate }
func (s *SliceSource) Channels() int   { return s.channels }
func (s *SliceSource) BufSize() int    { return 4096 }
func (s *SliceSource) Close() error    { return nil }

func (s *SliceSource) ReadSamples(dst []float32) (int, error) {
	if s.off >= len(s.samples) {
		return 0, io.EOF
	}
	// whole frames only
	want := len(dst) - len(dst)%s.channels
	n := copy(dst[:want], s.samples[s.off:])
	s.off += n
	if s.off >= len(s.samples) {
		return n, io.EOF
	}
	return n, nil
}
