// SPDX-License-Identifier: EPL-2.0

package aiff

import "errors"

var (
	ErrNotAiffFile = errors.New("not an AIFF file")
	// ErrUnsupportedAiffLayout covers missing format info and bit depths
	// other than 8, 16, 24 and 32.
	ErrUnsupportedAiffLayout = errors.New("unsupported AIFF layout")
)
