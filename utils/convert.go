// SPDX-License-Identifier: EPL-2.0

package utils

import "math"

// Float32ToInt16 clamps x to [-1,1] and scales by 32767. NaN maps to 0.
func Float32ToInt16(x float32) int16 {
	if x != x {
		return 0
	}
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	return int16(x * math.MaxInt16)
}

// Int16ToFloat32 maps a signed 16-bit sample to [-1,1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768
}

// Uint8ToFloat32 centres an unsigned 8-bit sample on zero.
func Uint8ToFloat32(v uint8) float32 {
	return (float32(v) - 128) / 128
}

// Float32ToUint8 is the inverse of Uint8ToFloat32, clamped.
func Float32ToUint8(x float32) uint8 {
	v := math.Round(float64(x)*128 + 128)
	if v < 0 {
		return 0
	}
	if v > math.MaxUint8 {
		return math.MaxUint8
	}
	return uint8(v)
}
