// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/Liam-coding/Voice-API/utils"
)

const (
	// one-pole low-pass coefficient applied to source frames when downsampling
	lowpassAlpha = 0.5

	maxEmptyReads = 16
)

// Resampler converts a Source to another sample rate with Catmull-Rom
// cubic interpolation. Channel layout is preserved. When downsampling, source
// frames pass through a one-pole low-pass filter first to reduce aliasing.
type Resampler struct {
	src      Source
	channels int
	dstRate  int
	step     float64 // source frames per output frame

	// window[0..3] hold frames t-1, t0, t+1, t+2; output is interpolated
	// between window[1] and window[2] at offset frac.
	window [4][]float32
	valid  [4]bool
	frac   float64
	primed bool
	eof    bool

	frame   []float32
	lowpass bool
	lpState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	ch := max(src.Channels(), 1)

	r := &Resampler{
		src:      src,
		channels: ch,
		dstRate:  dstRate,
		step:     float64(src.SampleRate()) / float64(dstRate),
		frame:    make([]float32, ch),
		lpState:  make([]float32, ch),
	}
	r.lowpass = r.step > 1
	for i := range r.window {
		r.window[i] = make([]float32, ch)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// pull reads the next source frame into r.frame. ok is false once the
// source is exhausted.
func (r *Resampler) pull() (ok bool, err error) {
	for range maxEmptyReads {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.frame)
		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("resampler: %w", err)
		}

		if n >= r.channels {
			return true, nil
		}
	}

	return false, ErrNoProgress
}

func (r *Resampler) filter(dst []float32) {
	if !r.lowpass {
		return
	}
	for c := range dst {
		dst[c] = lowpassAlpha*dst[c] + (1-lowpassAlpha)*r.lpState[c]
		r.lpState[c] = dst[c]
	}
}

// prime fills the window so that the first output frame lands exactly on
// the first source frame. The leading edge is a copy of that frame.
func (r *Resampler) prime() error {
	ok, err := r.pull()
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}

	copy(r.lpState, r.frame)
	r.filter(r.frame)
	copy(r.window[0], r.frame)
	copy(r.window[1], r.frame)
	r.valid[0], r.valid[1] = true, true

	for i := 2; i < 4; i++ {
		ok, err := r.pull()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		r.filter(r.frame)
		copy(r.window[i], r.frame)
		r.valid[i] = true
	}

	r.primed = true
	return nil
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	first := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = first
	copy(r.valid[:], r.valid[1:])
	r.valid[3] = false

	ok, err := r.pull()
	if err != nil {
		return err
	}
	if ok {
		r.filter(r.frame)
		copy(r.window[3], r.frame)
		r.valid[3] = true
	}

	return nil
}

// ReadSamples produces interleaved samples at the destination rate.
// len(dst) must be a multiple of Channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	ch := r.channels
	frames := len(dst) / ch
	out := 0

	for out < frames {
		for r.frac >= 1 {
			r.frac--
			if err := r.advance(); err != nil {
				return out * ch, err
			}
		}

		if !r.valid[1] {
			return out * ch, io.EOF
		}

		t := float32(r.frac)
		for c := range ch {
			y1 := r.window[1][c]
			y0 := y1
			if r.valid[0] {
				y0 = r.window[0][c]
			}
			y2 := y1
			if r.valid[2] {
				y2 = r.window[2][c]
			}
			y3 := y2
			if r.valid[3] {
				y3 = r.window[3][c]
			}
			dst[out*ch+c] = utils.CubicInterpolate(y0, y1, y2, y3, t)
		}

		out++
		r.frac += r.step
	}

	return out * ch, nil
}
