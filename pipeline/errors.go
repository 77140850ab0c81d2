// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSkipped marks a strategy that did not apply to the input.
	ErrSkipped = errors.New("not applicable")

	ErrTooFewSamples = errors.New("too few samples")
	ErrNoSignal      = errors.New("no signal energy")
	ErrConstant      = errors.New("constant signal")
	ErrNoDecoder     = errors.New("no decoder registered")
	ErrPanic         = errors.New("decoder panicked")
)

// Attempt is the outcome of one strategy.
type Attempt struct {
	Strategy string
	Err      error
}

// DecodeFailure is returned when every strategy failed. It lists the
// attempts in order.
type DecodeFailure struct {
	Attempts []Attempt
}

func (f *DecodeFailure) Error() string {
	parts := make([]string, len(f.Attempts))
	for i, a := range f.Attempts {
		parts[i] = fmt.Sprintf("%s: %v", a.Strategy, a.Err)
	}
	return "decode failed (" + strings.Join(parts, "; ") + ")"
}

func (f *DecodeFailure) Unwrap() []error {
	errs := make([]error, len(f.Attempts))
	for i, a := range f.Attempts {
		errs[i] = a.Err
	}
	return errs
}

// Methods lists the attempted strategy names.
func (f *DecodeFailure) Methods() []string {
	names := make([]string, len(f.Attempts))
	for i, a := range f.Attempts {
		names[i] = a.Strategy
	}
	return names
}
