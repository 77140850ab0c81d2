// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files into an audio.Source using
// github.com/go-audio/aiff.
//
// # Decoding
//
//	src, err := aiff.Decoder{}.Decode(r)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // no FORM/AIFF header
//	}
//
// The go-audio decoder seeks between chunks. Input that is not an
// io.ReadSeeker is read into memory first.
//
// # Supported Layouts
//
//   - Integer PCM at 8, 16, 24 and 32 bits (8-bit AIFF samples are signed)
//   - Any channel count and sample rate
//
// Anything else is reported as ErrUnsupportedAiffLayout.
//
// # Output Format
//
// Samples are float32 in [-1, 1], scaled by the source bit depth. Channels
// stay interleaved; audio.Collect mixes them down.
package aiff
