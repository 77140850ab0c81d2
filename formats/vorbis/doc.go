// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams into an audio.Source using
// github.com/jfreymuth/oggvorbis.
//
// # Decoding
//
//	src, err := vorbis.Decoder{}.Decode(r)
//	if err != nil {
//	    // not an Ogg Vorbis stream, or an Ogg stream with another codec
//	}
//	defer src.Close()
//
// The library already produces interleaved float32 samples, so the Source
// copies them through unchanged.
//
// # Output Format
//
//   - Samples: float32 in [-1, 1]
//   - Channels and sample rate: as stored in the identification header
//
// # Limitations
//
// Only the Vorbis codec is handled. Ogg files carrying Opus or FLAC fail in
// Decode; webm/Opus uploads are recognized by the probe package but have no
// decoder here.
package vorbis
