// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"encoding/binary"

	"github.com/Liam-coding/Voice-API/utils"
)

const (
	// TargetRate is the canonical output rate.
	TargetRate = 16000
	// MaxOutputSamples caps the canonical output length.
	MaxOutputSamples = 16000
)

// Decimate keeps every stride-th sample, stride = floor(len/targetLen),
// and returns at most targetLen samples. Shorter input passes through.
func Decimate(samples []float32, targetLen int) []float32 {
	if targetLen <= 0 || len(samples) <= targetLen {
		return samples
	}

	stride := len(samples) / targetLen
	out := make([]float32, targetLen)
	for i := range out {
		out[i] = samples[i*stride]
	}
	return out
}

// Quantize encodes samples as mono 16-bit little-endian PCM.
func Quantize(samples []float32) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(utils.Float32ToInt16(s)))
	}
	return out
}

// Int16s is the inverse of Quantize's byte layout. A trailing odd byte is
// dropped.
func Int16s(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return out
}
