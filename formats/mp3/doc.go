// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams into an audio.Source using
// github.com/hajimehoshi/go-mp3.
//
// # Decoding
//
//	src, err := mp3.Decoder{}.Decode(r)
//	if err != nil {
//	    // not an MP3 stream
//	}
//	defer src.Close()
//
// Decode fails as soon as go-mp3 cannot find a valid frame header, so a
// failed Decode is cheap. The normalization pipeline relies on that when
// it tries containers blind.
//
// # Output Format
//
//   - Samples: float32 in [-1, 1], converted from the library's 16-bit output
//   - Channels: always 2; mono files are duplicated by go-mp3
//   - Sample rate: the stream's own, usually 44.1 or 48 kHz
//
// Use audio.Collect, or audio.NewMonoMixer and audio.NewResampler
// directly, to get 16 kHz mono:
//
//	sig, err := audio.Collect(src, 16000, 0)
//
// # Limitations
//
// Decoding only. ID3 tags ahead of the first frame are skipped by go-mp3;
// the tag contents are not exposed.
package mp3
