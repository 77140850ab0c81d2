// SPDX-License-Identifier: EPL-2.0

// Package tone synthesizes the probe signal sent in place of unusable
// input: a 440 Hz fundamental with two harmonics and a little seeded noise,
// so every call with the same duration yields the same samples.
package tone

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
	"time"

	"github.com/Liam-coding/Voice-API/utils"
)

const (
	SampleRate = 16000

	DefaultDuration = time.Second
	MinDuration     = 500 * time.Millisecond
	MaxDuration     = 2 * time.Second

	fundamental = 440.0
	gain        = 0.25
	noiseSigma  = 0.03
)

var partials = []struct{ ratio, amp float64 }{
	{1, 1},
	{2, 0.3},
	{3, 0.1},
}

// Samples returns the probe tone for d at SampleRate. Non-positive
// durations produce a single sample so the result is never empty.
func Samples(d time.Duration) []int16 {
	n := max(int(int64(d)*SampleRate/int64(time.Second)), 1)

	rng := rand.New(rand.NewPCG(0x5EED, 0x70AE))
	out := make([]int16, n)
	for i := range out {
		t := float64(i) / SampleRate
		var v float64
		for _, p := range partials {
			v += p.amp * math.Sin(2*math.Pi*fundamental*p.ratio*t)
		}
		v += noiseSigma * rng.NormFloat64()
		out[i] = utils.Float32ToInt16(float32(v * gain))
	}

	return out
}

// PCM is Samples encoded as 16-bit little-endian bytes.
func PCM(d time.Duration) []byte {
	samples := Samples(d)
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// AdaptiveDuration maps the length of the rejected input onto
// [MinDuration, MaxDuration].
func AdaptiveDuration(input time.Duration) time.Duration {
	return min(max(input, MinDuration), MaxDuration)
}
