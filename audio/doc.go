// SPDX-License-Identifier: EPL-2.0

// Package audio provides the low-level signal primitives used by the
// normalization pipeline.
//
// # Source Interface
//
// Every decoder in formats/ yields a Source, a pull-based stream of
// interleaved float32 samples in [-1, 1]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Sources chain: a Resampler or MonoMixer wraps another Source and is a
// Source itself.
//
// # Resampling and Mixing
//
// Resampler changes the rate with cubic interpolation and a light low-pass
// filter on the way down. MonoMixer averages channels:
//
//	mono := audio.NewMonoMixer(audio.NewResampler(src, 16000))
//
// Collect wires both and drains the result into a Signal, the in-memory
// mono representation the rest of the module works on:
//
//	sig, err := audio.Collect(src, 16000, 0)
//
// A non-zero limit bounds memory for long uploads. Collect stops reading
// there and marks the Signal Truncated instead of failing, so callers
// still get the first limit samples:
//
//	sig, err := audio.Collect(src, 16000, 60*16000)
//	if sig.Truncated {
//	    // the source ran past one minute
//	}
//
// # Format Registry
//
// Registry maps format keys to decoders and remembers registration order,
// which is the order blind container decoding tries them in:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//	for _, name := range reg.Formats() { ... }
package audio
