// SPDX-License-Identifier: EPL-2.0

package voiceapi

import (
	"testing"

	"github.com/Liam-coding/Voice-API/quality"
)

func TestNormalize_NeverEmpty(t *testing.T) {
	t.Parallel()

	inputs := map[string][]byte{
		"nil":     nil,
		"one":     {0x42},
		"text":    []byte("this is not audio, just a sentence typed by somebody"),
		"riff":    []byte("RIFF\x24\x00\x00\x00WAVEfmt "),
		"zero 1k": make([]byte, 1024),
	}

	for name, in := range inputs {
		pcm, v := Normalize(in)
		if len(pcm) == 0 || len(pcm)%2 != 0 {
			t.Errorf("%s: %d output bytes", name, len(pcm))
		}
		if v.Acceptable == v.RecommendSubstitute {
			t.Errorf("%s: inconsistent verdict %+v", name, v)
		}
		if v.RecommendSubstitute && v.Reason == quality.ReasonNone {
			t.Errorf("%s: substitution without a reason", name)
		}
	}
}
