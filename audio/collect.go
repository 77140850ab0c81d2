// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// Collect drains src into a mono Signal at rate.
//
// Sources at another rate go through a Resampler and multi-channel sources
// through a MonoMixer. limit caps the number of collected samples; zero
// means no cap. A longer source is cut at limit and the Signal is marked
// Truncated. Collect does not close src.
func Collect(src Source, rate, limit int) (Signal, error) {
	if rate <= 0 || src.SampleRate() <= 0 {
		return Signal{}, ErrInvalidSampleRate
	}

	var chain Source = src
	if src.SampleRate() != rate {
		chain = NewResampler(chain, rate)
	}
	chain = NewMonoMixer(chain)

	bufSize := chain.BufSize()
	if bufSize <= 0 {
		bufSize = 4096
	}
	buf := make([]float32, bufSize)

	var out []float32
	empty := 0
	for {
		n, err := chain.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if limit > 0 && len(out) > limit {
			return Signal{Samples: out[:limit], SampleRate: rate, Truncated: true}, nil
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Signal{}, fmt.Errorf("collect: %w", err)
		}

		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return Signal{}, ErrNoProgress
			}
			continue
		}
		empty = 0
	}

	return Signal{Samples: out, SampleRate: rate}, nil
}
