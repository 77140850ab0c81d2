// SPDX-License-Identifier: EPL-2.0

// Package session owns the single long-lived connection to the translation
// service and serializes translation exchanges over it.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/Liam-coding/Voice-API/result"
)

// State of the managed connection.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	// Closing covers the grace period Close gives an in-flight exchange.
	Closing
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Closing:
		return "closing"
	default:
		return "disconnected"
	}
}

// Config holds the session settings. Zero fields take the defaults below.
type Config struct {
	URL                string
	Token              string
	UserAgent          string
	InsecureSkipVerify bool

	// MaxConnectAttempts bounds consecutive failed Connect calls.
	MaxConnectAttempts int
	ConnectTimeout     time.Duration
	ReceiveTimeout     time.Duration

	// ReconnectAttempts and ReconnectBackoff drive EnsureConnected.
	ReconnectAttempts int
	ReconnectBackoff  time.Duration
	// StartupAttempts and StartupBackoff drive Start.
	StartupAttempts int
	StartupBackoff  time.Duration

	// CloseGrace is how long Close waits for an in-flight exchange.
	CloseGrace time.Duration
	// ChunkSize is the frame size used by Stream, in bytes.
	ChunkSize int

	SourceLang string
	TargetLang string
}

// Defaults.
const (
	DefaultMaxConnectAttempts = 3
	DefaultConnectTimeout     = 10 * time.Second
	DefaultReceiveTimeout     = 30 * time.Second
	DefaultReconnectAttempts  = 3
	DefaultReconnectBackoff   = time.Second
	DefaultStartupAttempts    = 3
	DefaultStartupBackoff     = 2 * time.Second
	DefaultCloseGrace         = 100 * time.Millisecond
	// DefaultChunkSize is 100 ms of canonical PCM.
	DefaultChunkSize = 3200

	DefaultSourceLang = "zh"
	DefaultTargetLang = "en"
)

func (c Config) withDefaults() Config {
	setDefault(&c.MaxConnectAttempts, DefaultMaxConnectAttempts)
	setDefault(&c.ConnectTimeout, DefaultConnectTimeout)
	setDefault(&c.ReceiveTimeout, DefaultReceiveTimeout)
	setDefault(&c.ReconnectAttempts, DefaultReconnectAttempts)
	setDefault(&c.ReconnectBackoff, DefaultReconnectBackoff)
	setDefault(&c.StartupAttempts, DefaultStartupAttempts)
	setDefault(&c.StartupBackoff, DefaultStartupBackoff)
	setDefault(&c.CloseGrace, DefaultCloseGrace)
	setDefault(&c.ChunkSize, DefaultChunkSize)
	setDefault(&c.SourceLang, DefaultSourceLang)
	setDefault(&c.TargetLang, DefaultTargetLang)
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	return c
}

func setDefault[T comparable](v *T, def T) {
	var zero T
	if *v == zero {
		*v = def
	}
}

// Recorder receives session observations.
type Recorder interface {
	ObserveConnect(outcome string)
	ObserveExchange(status string, d time.Duration)
	SetBusy(busy bool)
}

type nopRecorder struct{}

func (nopRecorder) ObserveConnect(string)                 {}
func (nopRecorder) ObserveExchange(string, time.Duration) {}
func (nopRecorder) SetBusy(bool)                          {}

type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

type languages struct{ source, target string }

// Manager owns at most one live Transport. Exchanges run one at a time
// through its Arbiter; the handle is replaced, never mutated, and a new
// one is published only after the old one was closed.
type Manager struct {
	cfg      Config
	dialer   Dialer
	arbiter  *Arbiter
	logger   *slog.Logger
	recorder Recorder

	mu           sync.Mutex
	conn         Transport
	state        State
	langs        languages
	attempts     int
	lastActivity time.Time
}

func New(cfg Config, dialer Dialer, opts ...Option) *Manager {
	m := &Manager{
		cfg:      cfg.withDefaults(),
		dialer:   dialer,
		arbiter:  NewArbiter(),
		logger:   slog.Default(),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.arbiter.onBusy = m.recorder.SetBusy

	return m
}

// Arbiter returns the manager's exchange token.
func (m *Manager) Arbiter() *Arbiter { return m.arbiter }

// Connect opens a session for the language pair, closing any existing one
// first. After MaxConnectAttempts consecutive failures it returns
// ErrRetriesExhausted without dialing; Close resets the count.
func (m *Manager) Connect(ctx context.Context, source, target string) error {
	m.mu.Lock()
	if m.attempts >= m.cfg.MaxConnectAttempts {
		attempts := m.attempts
		m.mu.Unlock()
		m.recorder.ObserveConnect("exhausted")
		return fmt.Errorf("%w after %d attempts", ErrRetriesExhausted, attempts)
	}
	old := m.conn
	m.conn = nil
	m.state = Connecting
	m.mu.Unlock()

	if old != nil {
		m.closeTransport(old)
	}

	ep := Endpoint{
		URL:                m.cfg.URL,
		SourceLang:         source,
		TargetLang:         target,
		Token:              m.cfg.Token,
		UserAgent:          m.cfg.UserAgent,
		InsecureSkipVerify: m.cfg.InsecureSkipVerify,
	}

	dialCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()
	t, err := m.dialer.Dial(dialCtx, ep)

	m.mu.Lock()
	if err != nil {
		m.attempts++
		m.state = Disconnected
		attempts := m.attempts
		m.mu.Unlock()

		m.recorder.ObserveConnect("failure")
		m.logger.Warn("translation service connect failed",
			slog.Int("attempt", attempts),
			slog.Int("max_attempts", m.cfg.MaxConnectAttempts),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("session: connect: %w", err)
	}

	replaced := m.conn
	m.conn = t
	m.state = Connected
	m.langs = languages{source, target}
	m.attempts = 0
	m.lastActivity = time.Now()
	m.mu.Unlock()

	if replaced != nil {
		m.closeTransport(replaced)
	}

	m.recorder.ObserveConnect("success")
	m.logger.Info("translation service connected",
		slog.String("source_lang", source),
		slog.String("target_lang", target),
	)
	return nil
}

// IsConnected reports whether a live handle exists. It does no I/O.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn != nil && m.conn.IsAlive()
}

// Ping checks the session round trip.
func (m *Manager) Ping(ctx context.Context) bool {
	m.mu.Lock()
	t := m.conn
	m.mu.Unlock()

	if t == nil || !t.IsAlive() {
		return false
	}
	if err := t.Ping(ctx); err != nil {
		m.logger.Debug("ping failed", slog.String("error", err.Error()))
		return false
	}

	m.touch()
	return true
}

// Close waits up to CloseGrace for an in-flight exchange, then closes the
// handle and resets the state and the attempt count. It is safe to call
// repeatedly.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.conn != nil {
		m.state = Closing
	}
	m.mu.Unlock()

	if m.arbiter.Busy() {
		graceCtx, cancel := context.WithTimeout(ctx, m.cfg.CloseGrace)
		err := m.arbiter.Wait(graceCtx)
		cancel()
		if err != nil {
			m.logger.Debug("closing with an exchange in flight")
		}
	}

	return m.reset()
}

func (m *Manager) reset() error {
	m.mu.Lock()
	t := m.conn
	m.conn = nil
	m.state = Disconnected
	m.attempts = 0
	m.mu.Unlock()

	if t == nil {
		return nil
	}
	m.logger.Info("translation service session closed")
	if err := t.Close(); err != nil {
		return fmt.Errorf("session: close: %w", err)
	}
	return nil
}

// EnsureConnected makes sure a live, responsive session for the pair
// exists, reconnecting up to ReconnectAttempts times with
// ReconnectBackoff between tries. It returns ErrServiceUnavailable when
// every try failed.
func (m *Manager) EnsureConnected(ctx context.Context, source, target string) error {
	_, err := m.ensure(ctx, source, target)
	return err
}

func (m *Manager) ensure(ctx context.Context, source, target string) (Transport, error) {
	want := languages{source, target}

	var lastErr error
	for attempt := range m.cfg.ReconnectAttempts {
		if attempt > 0 {
			if err := sleep(ctx, m.cfg.ReconnectBackoff); err != nil {
				return nil, err
			}
		}

		m.mu.Lock()
		t, langs := m.conn, m.langs
		m.mu.Unlock()

		if t != nil && t.IsAlive() && langs == want {
			if m.Ping(ctx) {
				return t, nil
			}
			m.logger.Info("session unresponsive, reconnecting")
		} else if t != nil && langs != want {
			m.logger.Info("language pair changed, reconnecting",
				slog.String("source_lang", source),
				slog.String("target_lang", target),
			)
		}

		if err := m.reset(); err != nil {
			m.logger.Debug("close before reconnect", slog.String("error", err.Error()))
		}
		if lastErr = m.Connect(ctx, source, target); lastErr == nil {
			m.mu.Lock()
			t = m.conn
			m.mu.Unlock()
			if t != nil {
				return t, nil
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}

	if lastErr == nil {
		lastErr = ErrNotConnected
	}
	return nil, fmt.Errorf("%w: %w", ErrServiceUnavailable, lastErr)
}

// Start makes the initial connection with the default language pair,
// trying StartupAttempts times StartupBackoff apart.
func (m *Manager) Start(ctx context.Context) error {
	var err error
	for attempt := range m.cfg.StartupAttempts {
		if attempt > 0 {
			if serr := sleep(ctx, m.cfg.StartupBackoff); serr != nil {
				return serr
			}
		}
		if err = m.Connect(ctx, m.cfg.SourceLang, m.cfg.TargetLang); err == nil {
			return nil
		}
	}

	// leave the counter clear so requests can still connect lazily
	m.mu.Lock()
	m.attempts = 0
	m.mu.Unlock()

	return fmt.Errorf("%w: %w", ErrServiceUnavailable, err)
}

// Translate sends one PCM buffer and waits for the reply. Timeout,
// connection loss and service failures are reported through the Result
// status; the error is set when no exchange could take place.
func (m *Manager) Translate(ctx context.Context, source, target string, pcm []byte) (result.Result, error) {
	return m.exchange(ctx, source, target, func(ctx context.Context, t Transport) error {
		return t.Send(ctx, pcm)
	})
}

// Stream sends pcm in ChunkSize frames followed by an empty end-of-stream
// frame, then waits for the reply.
func (m *Manager) Stream(ctx context.Context, source, target string, pcm []byte) (result.Result, error) {
	return m.exchange(ctx, source, target, func(ctx context.Context, t Transport) error {
		for chunk := range slices.Chunk(pcm, m.cfg.ChunkSize) {
			if err := t.Send(ctx, chunk); err != nil {
				return err
			}
			m.touch()
		}
		return t.Send(ctx, []byte{})
	})
}

func (m *Manager) exchange(ctx context.Context, source, target string, send func(context.Context, Transport) error) (result.Result, error) {
	start := time.Now()

	res, err := m.arbiter.Execute(ctx, func(ctx context.Context) (result.Result, error) {
		t, err := m.ensure(ctx, source, target)
		if err != nil {
			return result.Result{}, err
		}

		m.touch()
		if err := send(ctx, t); err != nil {
			m.drop(t)
			if ctx.Err() != nil {
				return result.Result{}, ctx.Err()
			}
			return result.Closed(err.Error()), nil
		}

		recvCtx, cancel := context.WithTimeout(ctx, m.cfg.ReceiveTimeout)
		defer cancel()

		msg, err := t.Receive(recvCtx)
		switch {
		case err == nil:
			m.touch()
			return result.Parse(msg), nil
		case ctx.Err() != nil:
			m.drop(t)
			return result.Result{}, ctx.Err()
		case errors.Is(err, context.DeadlineExceeded):
			// a late reply would answer the next request
			m.drop(t)
			return result.TimedOut(), nil
		default:
			m.drop(t)
			return result.Closed(err.Error()), nil
		}
	})

	status := "error"
	if err == nil {
		status = res.Status.String()
	}
	m.recorder.ObserveExchange(status, time.Since(start))

	level := slog.LevelInfo
	if err != nil || !res.OK() {
		level = slog.LevelWarn
	}
	m.logger.Log(ctx, level, "translation exchange finished",
		slog.String("status", status),
		slog.String("source_lang", source),
		slog.String("target_lang", target),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("message", res.Message),
	)

	return res, err
}

// drop discards t if it is still the current handle.
func (m *Manager) drop(t Transport) {
	m.mu.Lock()
	if m.conn == t {
		m.conn = nil
		m.state = Disconnected
	}
	m.mu.Unlock()

	m.closeTransport(t)
}

func (m *Manager) closeTransport(t Transport) {
	if err := t.Close(); err != nil {
		m.logger.Debug("closing transport", slog.String("error", err.Error()))
	}
}

func (m *Manager) touch() {
	m.mu.Lock()
	m.lastActivity = time.Now()
	m.mu.Unlock()
}

// Status is a snapshot for health reporting.
type Status struct {
	Connected    bool
	State        State
	Attempts     int
	Busy         bool
	LastActivity time.Time
	SourceLang   string
	TargetLang   string
}

func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		Connected:    m.conn != nil && m.conn.IsAlive(),
		State:        m.state,
		Attempts:     m.attempts,
		Busy:         m.arbiter.Busy(),
		LastActivity: m.lastActivity,
	}
	if m.conn != nil {
		st.SourceLang, st.TargetLang = m.langs.source, m.langs.target
	}
	if st.State == Connected && !st.Connected {
		st.State = Disconnected
	}
	return st
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
