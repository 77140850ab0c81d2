// SPDX-License-Identifier: EPL-2.0

// Package raw interprets headerless byte buffers as PCM samples.
package raw

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/Liam-coding/Voice-API/utils"
)

// Encoding is a raw sample layout.
type Encoding int

const (
	PCM16   Encoding = iota // signed 16-bit little-endian
	Float32                 // IEEE-754 32-bit little-endian, nominal range [-1,1]
	Uint8                   // unsigned 8-bit, 128 is silence
)

var (
	ErrMisaligned = errors.New("buffer length is not a multiple of the sample width")
	ErrOutOfRange = errors.New("sample outside [-1,1]")
	ErrEmpty      = errors.New("no samples")
)

func (e Encoding) String() string {
	switch e {
	case PCM16:
		return "pcm16"
	case Float32:
		return "float32"
	case Uint8:
		return "uint8"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// Width is the size of one sample in bytes.
func (e Encoding) Width() int {
	switch e {
	case PCM16:
		return 2
	case Float32:
		return 4
	default:
		return 1
	}
}

// Decode converts data to float samples.
//
// PCM16 ignores a trailing odd byte. Float32 requires aligned input and
// rejects values outside [-1,1], NaN included, since that is what
// container or compressed bytes look like when read as floats.
func Decode(data []byte, enc Encoding) ([]float32, error) {
	switch enc {
	case PCM16:
		n := len(data) / 2
		if n == 0 {
			return nil, ErrEmpty
		}
		out := make([]float32, n)
		for i := range out {
			out[i] = utils.Int16ToFloat32(int16(binary.LittleEndian.Uint16(data[2*i:])))
		}
		return out, nil

	case Float32:
		if len(data)%4 != 0 {
			return nil, ErrMisaligned
		}
		if len(data) == 0 {
			return nil, ErrEmpty
		}
		out := make([]float32, len(data)/4)
		for i := range out {
			v := math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
			if !(v >= -1 && v <= 1) {
				return nil, fmt.Errorf("%w: %v at sample %d", ErrOutOfRange, v, i)
			}
			out[i] = v
		}
		return out, nil

	case Uint8:
		if len(data) == 0 {
			return nil, ErrEmpty
		}
		out := make([]float32, len(data))
		for i, b := range data {
			out[i] = utils.Uint8ToFloat32(b)
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unknown encoding %v", enc)
	}
}

// Encode is the inverse of Decode. Values are clamped to [-1,1].
func Encode(samples []float32, enc Encoding) []byte {
	out := make([]byte, len(samples)*enc.Width())
	for i, s := range samples {
		switch enc {
		case PCM16:
			binary.LittleEndian.PutUint16(out[2*i:], uint16(utils.Float32ToInt16(s)))
		case Float32:
			binary.LittleEndian.PutUint32(out[4*i:], math.Float32bits(max(-1, min(1, s))))
		default:
			out[i] = utils.Float32ToUint8(s)
		}
	}
	return out
}
