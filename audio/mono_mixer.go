// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// MonoMixer folds a multi-channel Source down to one channel by averaging
// each frame. Mono sources pass through untouched.
type MonoMixer struct {
	src     Source
	scratch []float32
}

func NewMonoMixer(src Source) *MonoMixer {
	return &MonoMixer{src: src}
}

func (m *MonoMixer) SampleRate() int { return m.src.SampleRate() }
func (m *MonoMixer) Channels() int   { return 1 }
func (m *MonoMixer) BufSize() int    { return m.src.BufSize() }

func (m *MonoMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("mono mixer: %w", err)
	}
	return nil
}

// ReadSamples fills dst with at most len(dst) mono frames.
func (m *MonoMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	ch := m.src.Channels()
	if ch <= 1 {
		return m.src.ReadSamples(dst)
	}

	need := len(dst) * ch
	if cap(m.scratch) < need {
		m.scratch = make([]float32, need)
	}
	m.scratch = m.scratch[:need]

	n, err := m.src.ReadSamples(m.scratch)
	frames := n / ch
	if frames == 0 {
		return 0, err
	}

	scale := 1 / float32(ch)
	for f := range frames {
		var sum float32
		for _, v := range m.scratch[f*ch : (f+1)*ch] {
			sum += v
		}
		dst[f] = sum * scale
	}

	return frames, err
}
