// SPDX-License-Identifier: EPL-2.0

package session

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/coder/websocket"
)

// DefaultReadLimit fits replies that carry base64 audio.
const DefaultReadLimit = 16 << 20

// WebsocketDialer opens transports over github.com/coder/websocket.
type WebsocketDialer struct {
	// HTTPClient overrides the client used for the upgrade request.
	HTTPClient *http.Client
	// ReadLimit caps a single reply frame. Zero means DefaultReadLimit.
	ReadLimit int64
}

func (d WebsocketDialer) Dial(ctx context.Context, ep Endpoint) (Transport, error) {
	target, err := ep.Target()
	if err != nil {
		return nil, err
	}

	ua := ep.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	header := http.Header{"User-Agent": {ua}}
	if ep.Token != "" {
		header.Set("Authorization", "Bearer "+ep.Token)
	}

	client := d.HTTPClient
	if client == nil && ep.InsecureSkipVerify {
		tr := http.DefaultTransport.(*http.Transport).Clone()
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in through config
		client = &http.Client{Transport: tr}
	}

	conn, _, err := websocket.Dial(ctx, target, &websocket.DialOptions{
		HTTPHeader: header,
		HTTPClient: client,
	})
	if err != nil {
		return nil, fmt.Errorf("session: dial: %w", err)
	}

	limit := d.ReadLimit
	if limit <= 0 {
		limit = DefaultReadLimit
	}
	conn.SetReadLimit(limit)

	return newWSTransport(conn), nil
}

type wsTransport struct {
	conn   *websocket.Conn
	frames chan []byte
	done   chan struct{}
	cancel context.CancelFunc

	// err is the read loop's exit error, set before done is closed.
	err       error
	closeOnce sync.Once
}

func newWSTransport(conn *websocket.Conn) *wsTransport {
	ctx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{
		conn:   conn,
		frames: make(chan []byte, 8),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go t.readLoop(ctx)
	return t
}

// readLoop keeps a reader running at all times; control frames, pongs
// included, are only processed while a Read is in progress.
func (t *wsTransport) readLoop(ctx context.Context) {
	defer close(t.done)

	for {
		_, data, err := t.conn.Read(ctx)
		if err != nil {
			t.err = err
			return
		}

		select {
		case t.frames <- data:
		case <-ctx.Done():
			t.err = ctx.Err()
			return
		}
	}
}

func (t *wsTransport) Send(ctx context.Context, frame []byte) error {
	if !t.IsAlive() {
		return t.closedErr()
	}
	if err := t.conn.Write(ctx, websocket.MessageBinary, frame); err != nil {
		return fmt.Errorf("session: send: %w", err)
	}
	return nil
}

func (t *wsTransport) Receive(ctx context.Context) ([]byte, error) {
	select {
	case data := <-t.frames:
		return data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
	}

	// frames that arrived before the close are still delivered
	select {
	case data := <-t.frames:
		return data, nil
	default:
		return nil, t.closedErr()
	}
}

func (t *wsTransport) Ping(ctx context.Context) error {
	if !t.IsAlive() {
		return t.closedErr()
	}
	if err := t.conn.Ping(ctx); err != nil {
		return fmt.Errorf("session: ping: %w", err)
	}
	return nil
}

func (t *wsTransport) IsAlive() bool {
	select {
	case <-t.done:
		return false
	default:
		return true
	}
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close(websocket.StatusNormalClosure, "client closing")
		t.cancel()
		<-t.done
	})

	var ce websocket.CloseError
	if err != nil && !errors.As(err, &ce) && !errors.Is(err, net.ErrClosed) {
		return fmt.Errorf("session: close: %w", err)
	}
	return nil
}

func (t *wsTransport) closedErr() error {
	<-t.done
	if status := websocket.CloseStatus(t.err); status != -1 {
		return fmt.Errorf("%w: peer closed with %v", ErrTransportClosed, status)
	}
	if t.err == nil || errors.Is(t.err, context.Canceled) {
		return ErrTransportClosed
	}
	return fmt.Errorf("%w: %v", ErrTransportClosed, t.err)
}
