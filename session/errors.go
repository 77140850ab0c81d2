// SPDX-License-Identifier: EPL-2.0

package session

import "errors"

var (
	// ErrRetriesExhausted is returned by Connect once the consecutive
	// failure count reached its bound. No dial is attempted.
	ErrRetriesExhausted = errors.New("session: connect retries exhausted")
	// ErrServiceUnavailable is returned when no session could be
	// established for a request.
	ErrServiceUnavailable = errors.New("session: translation service unavailable")
	ErrNotConnected       = errors.New("session: not connected")
	// ErrTransportClosed is returned by transport operations after the
	// connection ended.
	ErrTransportClosed = errors.New("session: transport closed")
)
