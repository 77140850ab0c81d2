// SPDX-License-Identifier: EPL-2.0

// Package voiceapi relays client audio to a remote speech translation
// service.
//
// Uploaded audio arrives in whatever shape the client produced: a WAV, MP3,
// Ogg Vorbis or AIFF file, or headerless samples of unknown width. Before it
// is sent upstream it is normalized to the one format the service accepts,
// 16 kHz mono signed 16-bit little-endian PCM of at most one second.
//
// # Normalizing
//
// The simplest entry point is Normalize:
//
//	pcm, verdict := voiceapi.Normalize(upload)
//	if verdict.RecommendSubstitute {
//		// pcm holds the probe tone, not the upload
//	}
//
// Normalize never fails. Input that cannot be decoded, is shorter than
// 10 ms, or is effectively silent is replaced by a deterministic 440 Hz
// probe tone so the upstream session still sees well-formed audio.
//
// For logging, metrics or debug dumps build a pipeline.Pipeline directly:
//
//	p := pipeline.New(
//		pipeline.WithLogger(logger),
//		pipeline.WithDumpDir("/tmp/voice-dump"),
//	)
//	out := p.Normalize(upload)
//
// # Packages
//
//   - probe guesses the encoding from magic bytes and length
//   - formats/wav, formats/mp3, formats/vorbis and formats/aiff decode
//     containers into audio.Source streams
//   - formats/raw reads and writes headerless samples
//   - audio resamples and downmixes sources into an audio.Signal
//   - quality decides whether a signal is usable
//   - tone synthesizes the probe tone
//   - pipeline runs the decode cascade and encodes the result
//   - session owns the connection to the translation service
//   - result parses the service's replies
//
// The HTTP front end lives in internal/server and is started by
// cmd/voice-api.
package voiceapi
