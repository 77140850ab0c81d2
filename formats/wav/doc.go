// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes PCM WAV files on top of
// github.com/go-audio/wav.
//
// # Decoding
//
//	src, err := wav.Decoder{}.Decode(bytes.NewReader(data))
//	switch {
//	case errors.Is(err, wav.ErrNotWavFile):
//	    // no RIFF/WAVE header
//	case errors.Is(err, wav.ErrUnsupportedEncoding):
//	    // float or compressed WAV
//	}
//
// # Supported Layouts
//
//   - Integer PCM at 8 (unsigned), 16, 24 and 32 bits
//   - Any channel count and sample rate
//
// Float and compressed variants (format tags other than 1) are rejected
// with ErrUnsupportedEncoding.
//
// # Encoding
//
// Encode writes interleaved integer samples to an io.WriteSeeker.
// EncodePCM16 and WriteFile are the mono 16-bit shortcuts the service uses
// to dump normalized audio:
//
//	err := wav.WriteFile("out.wav", 16000, samples)
//
// Marshal returns the file as a byte slice, which is handy for building
// fixtures in tests:
//
//	file, err := wav.Marshal(8000, 16, 1, []int{0, 1000, -1000})
package wav
