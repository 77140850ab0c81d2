// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/Liam-coding/Voice-API/audio"
	"github.com/Liam-coding/Voice-API/formats/aiff"
	"github.com/Liam-coding/Voice-API/formats/mp3"
	"github.com/Liam-coding/Voice-API/formats/raw"
	"github.com/Liam-coding/Voice-API/formats/vorbis"
	"github.com/Liam-coding/Voice-API/formats/wav"
	"github.com/Liam-coding/Voice-API/probe"
	"github.com/Liam-coding/Voice-API/quality"
	"github.com/Liam-coding/Voice-API/tone"
)

// defaultMaxDecodedSamples bounds container output at one minute of 16 kHz
// audio.
const defaultMaxDecodedSamples = 60 * TargetRate

// Output is the result of Normalize. PCM is always non-empty mono 16 kHz
// 16-bit little-endian audio.
type Output struct {
	PCM     []byte
	Verdict quality.Verdict
	// Strategy that decoded the input; empty when nothing could.
	Strategy string
	// Substituted is true when PCM is the probe tone rather than the input.
	Substituted bool
	Hint        probe.Hint
	Attempts    []Attempt
}

// Duration of the PCM payload.
func (o Output) Duration() time.Duration {
	return time.Duration(len(o.PCM)/2) * time.Second / TargetRate
}

// Recorder receives one observation per Normalize call.
type Recorder interface {
	ObserveNormalize(strategy string, substituted bool, reason string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveNormalize(string, bool, string) {}

// Pipeline turns arbitrary audio bytes into canonical PCM. It holds no
// per-call state and is safe for concurrent use.
type Pipeline struct {
	registry   *audio.Registry
	decoder    *Decoder
	maxSamples int
	logger     *slog.Logger
	recorder   Recorder
	dumpDir    string
	dumpSeq    atomic.Uint64
}

type Option func(*Pipeline)

func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// WithRegistry replaces the container decoders.
func WithRegistry(reg *audio.Registry) Option {
	return func(p *Pipeline) { p.registry = reg }
}

// WithMaxDecodedSamples bounds container decoding output.
func WithMaxDecodedSamples(n int) Option {
	return func(p *Pipeline) { p.maxSamples = n }
}

// WithDumpDir writes every normalized buffer to dir as a WAV file.
func WithDumpDir(dir string) Option {
	return func(p *Pipeline) { p.dumpDir = dir }
}

// DefaultRegistry registers the container decoders in the order blind
// decoding tries them.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(probe.FormatWAV, wav.Decoder{})
	reg.Register(probe.FormatMP3, mp3.Decoder{})
	reg.Register(probe.FormatOgg, vorbis.Decoder{})
	reg.Register(probe.FormatAIFF, aiff.Decoder{})
	return reg
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		maxSamples: defaultMaxDecodedSamples,
		logger:     slog.Default(),
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.registry == nil {
		p.registry = DefaultRegistry()
	}
	p.decoder = NewDecoder(p.registry, p.maxSamples)

	return p
}

// Formats lists the container formats the pipeline can decode.
func (p *Pipeline) Formats() []string { return p.registry.Formats() }

// Decoder exposes the strategy cascade.
func (p *Pipeline) Decoder() *Decoder { return p.decoder }

// Normalize never fails: input that cannot be decoded, or decodes to
// something too short or too quiet, is replaced by the probe tone and the
// Output is marked Substituted.
func (p *Pipeline) Normalize(data []byte) Output {
	hint := probe.Detect(data)

	if len(data) < minDirectBytes {
		v := quality.Verdict{
			Reason:              quality.ReasonTooShort,
			RecommendSubstitute: true,
			Stats:               quality.Measure(pcm16View(data)),
		}
		return p.finish(p.substitute(tone.DefaultDuration, v, hint, nil), len(data))
	}

	dec, err := p.decoder.Decode(data, hint)
	if err != nil {
		var attempts []Attempt
		var f *DecodeFailure
		if errors.As(err, &f) {
			attempts = f.Attempts
		}
		p.logger.Debug("all decode strategies failed",
			slog.String("hint", hint.String()),
			slog.String("error", err.Error()),
		)
		return p.finish(p.substitute(tone.DefaultDuration, failureVerdict(data, hint), hint, attempts), len(data))
	}

	if dec.Signal.Truncated {
		p.logger.Info("decoded audio cut at the sample limit",
			slog.String("hint", hint.String()),
			slog.Int("limit", p.maxSamples),
		)
	}

	verdict := quality.Assess(dec.Signal)
	if verdict.RecommendSubstitute {
		out := p.substitute(tone.AdaptiveDuration(dec.Signal.Duration()), verdict, hint, dec.Attempts)
		out.Strategy = dec.Strategy
		return p.finish(out, len(data))
	}

	sig := dec.Signal
	if sig.SampleRate != TargetRate {
		resampled, err := audio.Collect(audio.SignalSource(sig), TargetRate, 0)
		if err != nil {
			p.logger.Warn("resample failed", slog.String("error", err.Error()))
			return p.finish(p.substitute(tone.DefaultDuration, quality.Undecodable(verdict.Stats), hint, dec.Attempts), len(data))
		}
		sig = resampled
	}

	samples := Decimate(sig.Samples, min(len(sig.Samples), MaxOutputSamples))
	return p.finish(Output{
		PCM:      Quantize(samples),
		Verdict:  verdict,
		Strategy: dec.Strategy,
		Hint:     hint,
		Attempts: dec.Attempts,
	}, len(data))
}

func (p *Pipeline) substitute(d time.Duration, v quality.Verdict, hint probe.Hint, attempts []Attempt) Output {
	return Output{
		PCM:         tone.PCM(d),
		Verdict:     v,
		Substituted: true,
		Hint:        hint,
		Attempts:    attempts,
	}
}

func (p *Pipeline) finish(out Output, inputLen int) Output {
	strategy := out.Strategy
	if strategy == "" {
		strategy = "none"
	}
	p.recorder.ObserveNormalize(strategy, out.Substituted, out.Verdict.Reason.String())

	level := slog.LevelDebug
	if out.Substituted {
		level = slog.LevelInfo
	}
	p.logger.Log(context.Background(), level, "audio normalized",
		slog.Int("input_bytes", inputLen),
		slog.String("hint", out.Hint.String()),
		slog.String("strategy", strategy),
		slog.Bool("substituted", out.Substituted),
		slog.String("reason", out.Verdict.Reason.String()),
		slog.Float64("peak", out.Verdict.Stats.Peak),
		slog.Float64("rms", out.Verdict.Stats.RMS),
		slog.Int("output_bytes", len(out.PCM)),
	)

	if p.dumpDir != "" {
		p.dump(out)
	}

	return out
}

func (p *Pipeline) dump(out Output) {
	name := fmt.Sprintf("normalized-%s-%04d.wav", time.Now().Format("20060102-150405"), p.dumpSeq.Add(1))
	if err := wav.WriteFile(filepath.Join(p.dumpDir, name), TargetRate, Int16s(out.PCM)); err != nil {
		p.logger.Warn("audio dump failed", slog.String("error", err.Error()))
	}
}

// failureVerdict explains a total decode failure. Unless the input claimed
// a container, its plain 16-bit reading decides between too short and too
// quiet; anything else is reported as undecodable.
func failureVerdict(data []byte, hint probe.Hint) quality.Verdict {
	if hint.Kind == probe.Container {
		return quality.Undecodable(quality.Stats{})
	}

	v := quality.AssessStats(quality.Measure(pcm16View(data)))
	if v.RecommendSubstitute {
		return v
	}
	return quality.Undecodable(v.Stats)
}

func pcm16View(data []byte) []float32 {
	samples, err := raw.Decode(data, raw.PCM16)
	if err != nil {
		return nil
	}
	return samples
}
