// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"fmt"

	"github.com/Liam-coding/Voice-API/audio"
	"github.com/Liam-coding/Voice-API/formats/raw"
	"github.com/Liam-coding/Voice-API/probe"
)

// Decoded is a successful decode.
type Decoded struct {
	Signal   audio.Signal
	Strategy string
	// Attempts holds the strategies that failed before the winner.
	Attempts []Attempt
}

// Decoder runs strategies in order and stops at the first success.
type Decoder struct {
	strategies []Strategy
}

// NewDecoder builds the standard cascade: direct 16-bit PCM, container
// decode through reg, 32-bit float, 8-bit unsigned.
func NewDecoder(reg *audio.Registry, maxSamples int) *Decoder {
	return NewDecoderWith(
		rawStrategy{name: "pcm16", encoding: raw.PCM16, direct: true},
		containerStrategy{registry: reg, limit: maxSamples},
		rawStrategy{name: "float32", encoding: raw.Float32},
		rawStrategy{name: "uint8", encoding: raw.Uint8},
	)
}

// NewDecoderWith uses a custom strategy list.
func NewDecoderWith(strategies ...Strategy) *Decoder {
	return &Decoder{strategies: strategies}
}

// Strategies lists strategy names in the order they run.
func (d *Decoder) Strategies() []string {
	names := make([]string, len(d.strategies))
	for i, s := range d.strategies {
		names[i] = s.Name()
	}
	return names
}

// Decode returns the first strategy result that succeeds, or a
// *DecodeFailure.
func (d *Decoder) Decode(data []byte, hint probe.Hint) (Decoded, error) {
	var attempts []Attempt
	for _, s := range d.strategies {
		sig, err := run(s, data, hint)
		if err == nil {
			return Decoded{Signal: sig, Strategy: s.Name(), Attempts: attempts}, nil
		}
		attempts = append(attempts, Attempt{Strategy: s.Name(), Err: err})
	}

	return Decoded{}, &DecodeFailure{Attempts: attempts}
}

func run(s Strategy, data []byte, hint probe.Hint) (sig audio.Signal, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()
	return s.Decode(data, hint)
}
