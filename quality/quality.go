// SPDX-License-Identifier: EPL-2.0

// Package quality decides whether a decoded signal is usable speech input
// or should be replaced by a probe tone.
package quality

import (
	"math"

	"github.com/Liam-coding/Voice-API/audio"
)

// Fixed gate thresholds.
const (
	// MinSamples is 10 ms at 16 kHz.
	MinSamples = 160
	QuietPeak  = 0.005
	QuietRMS   = 0.001
)

// Reason explains a verdict.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTooShort
	ReasonTooQuiet
	// ReasonUndecodable is used by callers when no decode strategy
	// produced a signal at all.
	ReasonUndecodable
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonTooShort:
		return "too_short"
	case ReasonTooQuiet:
		return "too_quiet"
	case ReasonUndecodable:
		return "undecodable"
	default:
		return "unknown"
	}
}

// Stats are the amplitude measurements a verdict is based on.
type Stats struct {
	Samples int
	Peak    float64
	RMS     float64
	Min     float64
	Max     float64
}

// Measure computes Stats over samples.
func Measure(samples []float32) Stats {
	st := Stats{Samples: len(samples)}
	if len(samples) == 0 {
		return st
	}

	st.Min, st.Max = math.Inf(1), math.Inf(-1)
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
		st.Min = min(st.Min, v)
		st.Max = max(st.Max, v)
	}
	st.Peak = max(math.Abs(st.Min), math.Abs(st.Max))
	st.RMS = math.Sqrt(sum / float64(len(samples)))

	return st
}

// Verdict is the gate's classification of one signal.
type Verdict struct {
	Acceptable          bool
	Reason              Reason
	RecommendSubstitute bool
	// Degraded marks quiet input that still carries energy and is sent
	// as-is.
	Degraded bool
	Stats    Stats
}

// Assess classifies sig. Rules apply in order: too short, too quiet,
// quiet but energetic (degraded), acceptable.
func Assess(sig audio.Signal) Verdict {
	return AssessStats(Measure(sig.Samples))
}

// AssessStats is Assess over precomputed measurements.
func AssessStats(st Stats) Verdict {
	switch {
	case st.Samples < MinSamples:
		return Verdict{Reason: ReasonTooShort, RecommendSubstitute: true, Stats: st}
	case st.Peak < QuietPeak && st.RMS < QuietRMS:
		return Verdict{Reason: ReasonTooQuiet, RecommendSubstitute: true, Stats: st}
	case st.Peak < QuietPeak:
		return Verdict{Acceptable: true, Degraded: true, Stats: st}
	default:
		return Verdict{Acceptable: true, Stats: st}
	}
}

// Undecodable is the verdict for input no strategy could decode.
func Undecodable(st Stats) Verdict {
	return Verdict{Reason: ReasonUndecodable, RecommendSubstitute: true, Stats: st}
}
