// SPDX-License-Identifier: EPL-2.0

package audio

import "time"

// Signal is a fully decoded mono signal held in memory.
type Signal struct {
	Samples    []float32
	SampleRate int
	// Truncated is set when the source had more audio than the collector
	// was allowed to keep.
	Truncated bool
}

// Len returns the number of samples.
func (s Signal) Len() int { return len(s.Samples) }

// Duration of the signal, zero when the sample rate is unknown.
func (s Signal) Duration() time.Duration {
	if s.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(s.Samples)) * time.Second / time.Duration(s.SampleRate)
}

// Seconds is Duration as a float, handy for duration arithmetic.
func (s Signal) Seconds() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return float64(len(s.Samples)) / float64(s.SampleRate)
}
