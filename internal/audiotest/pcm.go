// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"math"
)

// Sine returns n samples of a sine wave with the given amplitude.
func Sine(sampleRate, n int, frequency, amplitude float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(amplitude * math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)))
	}
	return out
}

// PCM16 encodes samples as signed 16-bit little-endian bytes.
func PCM16(samples []float32) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		v := max(-1, min(1, float64(s)))
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v*math.MaxInt16)))
	}
	return out
}

// Float32LE encodes samples as IEEE-754 little-endian bytes.
func Float32LE(samples []float32) []byte {
	out := make([]byte, 4*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(s))
	}
	return out
}

// Uint8 encodes samples as offset 8-bit unsigned bytes.
func Uint8(samples []float32) []byte {
	out := make([]byte, len(samples))
	for i, s := range samples {
		v := math.Round(float64(s)*128 + 128)
		out[i] = byte(max(0, min(255, v)))
	}
	return out
}

// SinePCM16 is Sine encoded with PCM16.
func SinePCM16(sampleRate, n int, frequency, amplitude float64) []byte {
	return PCM16(Sine(sampleRate, n, frequency, amplitude))
}
