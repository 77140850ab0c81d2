// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"fmt"
	"net/url"
)

// DefaultUserAgent is sent on the upgrade request.
const DefaultUserAgent = "VoiceTranslationClient/1.0"

// Endpoint describes one session to open.
type Endpoint struct {
	URL        string
	SourceLang string
	TargetLang string
	Token      string
	UserAgent  string
	// InsecureSkipVerify disables TLS certificate checks.
	InsecureSkipVerify bool
}

// Target returns URL with the language pair in its query.
func (e Endpoint) Target() (string, error) {
	u, err := url.Parse(e.URL)
	if err != nil {
		return "", fmt.Errorf("session: bad url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("session: bad url %q", e.URL)
	}

	q := u.Query()
	q.Set("source_lang", e.SourceLang)
	q.Set("target_lang", e.TargetLang)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Transport is one open connection to the translation service. Receive
// returns the next reply frame. Implementations must allow Ping, IsAlive
// and Close concurrently with Receive.
type Transport interface {
	Send(ctx context.Context, frame []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Ping(ctx context.Context) error
	// IsAlive reports whether the connection is still usable without
	// doing any I/O.
	IsAlive() bool
	Close() error
}

// Dialer opens transports.
type Dialer interface {
	Dial(ctx context.Context, ep Endpoint) (Transport, error)
}
