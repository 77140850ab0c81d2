// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrInvalidSampleRate is returned for non-positive sample rates.
	ErrInvalidSampleRate = errors.New("sample rate must be positive")

	// ErrNoProgress is returned when a source keeps returning empty reads
	// without signalling io.EOF.
	ErrNoProgress = errors.New("source stopped producing samples")
)
