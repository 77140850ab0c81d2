// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	// ErrUnsupportedEncoding is returned for anything but integer PCM.
	ErrUnsupportedEncoding = errors.New("only integer PCM WAV is supported")
)
