// SPDX-License-Identifier: EPL-2.0

// Package metrics exposes the service's Prometheus collectors. It satisfies
// the pipeline and session Recorder interfaces.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "voice_api"

type Metrics struct {
	// Audio normalization
	NormalizeTotal   *prometheus.CounterVec
	SubstitutedTotal *prometheus.CounterVec

	// Translation session
	ConnectTotal     *prometheus.CounterVec
	ExchangeTotal    *prometheus.CounterVec
	ExchangeDuration prometheus.Histogram
	ExchangeBusy     prometheus.Gauge

	// HTTP API
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		NormalizeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_total",
			Help:      "Normalized uploads by winning decode strategy.",
		}, []string{"strategy", "substituted"}),
		SubstitutedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probe_tone_substitutions_total",
			Help:      "Uploads replaced by the probe tone, by reason.",
		}, []string{"reason"}),

		ConnectTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_connects_total",
			Help:      "Connect attempts to the translation service by outcome.",
		}, []string{"outcome"}),
		ExchangeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translate_total",
			Help:      "Translation exchanges by result status.",
		}, []string{"status"}),
		ExchangeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "translate_duration_seconds",
			Help:      "Time from acquiring the session to the reply, including waits.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 11), // 50ms to ~51s
		}),
		ExchangeBusy: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_busy",
			Help:      "1 while a translation exchange holds the session.",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

func (m *Metrics) ObserveNormalize(strategy string, substituted bool, reason string) {
	m.NormalizeTotal.WithLabelValues(strategy, strconv.FormatBool(substituted)).Inc()
	if substituted {
		m.SubstitutedTotal.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) ObserveConnect(outcome string) {
	m.ConnectTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveExchange(status string, d time.Duration) {
	m.ExchangeTotal.WithLabelValues(status).Inc()
	m.ExchangeDuration.Observe(d.Seconds())
}

func (m *Metrics) SetBusy(busy bool) {
	if busy {
		m.ExchangeBusy.Set(1)
		return
	}
	m.ExchangeBusy.Set(0)
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(route, method string, code int, d time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(d.Seconds())
}
