// SPDX-License-Identifier: EPL-2.0

package session

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var errDial = errors.New("connection refused")

type fakeTransport struct {
	replies chan []byte
	recvErr error
	pingErr error
	closed  atomic.Bool

	mu   sync.Mutex
	sent [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{replies: make(chan []byte, 4)}
}

func (f *fakeTransport) Send(_ context.Context, frame []byte) error {
	if f.closed.Load() {
		return ErrTransportClosed
	}
	f.mu.Lock()
	f.sent = append(f.sent, bytes.Clone(frame))
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Receive(ctx context.Context) ([]byte, error) {
	if f.recvErr != nil {
		return nil, f.recvErr
	}
	select {
	case data := <-f.replies:
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeTransport) Ping(context.Context) error { return f.pingErr }
func (f *fakeTransport) IsAlive() bool              { return !f.closed.Load() }

func (f *fakeTransport) Close() error {
	f.closed.Store(true)
	return nil
}

func (f *fakeTransport) frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent
}

// fakeDialer fails the first failures dials (all of them when negative)
// and otherwise hands out transports built by next.
type fakeDialer struct {
	failures int
	next     func() *fakeTransport

	mu    sync.Mutex
	dials []Endpoint
	conns []*fakeTransport
}

func (d *fakeDialer) Dial(_ context.Context, ep Endpoint) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dials = append(d.dials, ep)
	if d.failures < 0 || len(d.dials) <= d.failures {
		return nil, errDial
	}

	next := d.next
	if next == nil {
		next = newFakeTransport
	}
	t := next()
	d.conns = append(d.conns, t)
	return t, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.dials)
}

func (d *fakeDialer) last() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.conns) == 0 {
		return nil
	}
	return d.conns[len(d.conns)-1]
}

func testConfig() Config {
	return Config{
		URL:              "ws://translator.invalid/ws",
		Token:            "secret",
		ReceiveTimeout:   time.Second,
		ReconnectBackoff: time.Millisecond,
		StartupBackoff:   time.Millisecond,
		CloseGrace:       50 * time.Millisecond,
	}
}

func newTestManager(cfg Config, d Dialer, opts ...Option) *Manager {
	opts = append([]Option{WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	return New(cfg, d, opts...)
}
