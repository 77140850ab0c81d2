// SPDX-License-Identifier: EPL-2.0

package voiceapi

import (
	"sync"

	"github.com/Liam-coding/Voice-API/pipeline"
	"github.com/Liam-coding/Voice-API/quality"
)

var defaultPipeline = sync.OnceValue(func() *pipeline.Pipeline {
	return pipeline.New()
})

// Normalize converts data to canonical 16 kHz mono 16-bit PCM using the
// default decoders and the default slog logger. The returned PCM is never
// empty.
func Normalize(data []byte) ([]byte, quality.Verdict) {
	out := defaultPipeline().Normalize(data)
	return out.PCM, out.Verdict
}
