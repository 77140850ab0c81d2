// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Liam-coding/Voice-API/audio"
	"github.com/Liam-coding/Voice-API/formats/raw"
	"github.com/Liam-coding/Voice-API/probe"
	"github.com/Liam-coding/Voice-API/quality"
)

// Strategy is one way of turning bytes into a signal.
type Strategy interface {
	Name() string
	Decode(data []byte, hint probe.Hint) (audio.Signal, error)
}

// Inline acceptance thresholds for raw interpretations. They are looser
// than the quality gate; their job is to reject readings that are clearly
// not audio.
const (
	minDirectBytes = 100
	minValidPeak   = 0.001
	minValidRMS    = 0.0001
)

func validate(samples []float32) error {
	st := quality.Measure(samples)
	switch {
	case st.Samples < quality.MinSamples:
		return fmt.Errorf("%w: %d", ErrTooFewSamples, st.Samples)
	case st.Peak <= minValidPeak || st.RMS <= minValidRMS:
		return fmt.Errorf("%w: peak %.5f rms %.6f", ErrNoSignal, st.Peak, st.RMS)
	case st.Max-st.Min <= 2*minValidPeak:
		return fmt.Errorf("%w at %.3f", ErrConstant, st.Max)
	}
	return nil
}

// rawStrategy reads the buffer as headerless samples at the target rate.
// Buffers that carry a container signature are never read raw: a header
// and compressed payload pass the inline checks as loud noise.
type rawStrategy struct {
	name     string
	encoding raw.Encoding
	// direct is the fast path tried before container decoding.
	direct bool
}

func (s rawStrategy) Name() string { return s.name }

func (s rawStrategy) Decode(data []byte, hint probe.Hint) (audio.Signal, error) {
	if s.direct && len(data) < minDirectBytes {
		return audio.Signal{}, fmt.Errorf("%w: %d bytes", ErrSkipped, len(data))
	}
	if hint.Kind == probe.Container {
		return audio.Signal{}, fmt.Errorf("%w: %s signature", ErrSkipped, hint.Format)
	}

	samples, err := raw.Decode(data, s.encoding)
	if err != nil {
		return audio.Signal{}, err
	}
	if err := validate(samples); err != nil {
		return audio.Signal{}, err
	}

	return audio.Signal{Samples: samples, SampleRate: TargetRate}, nil
}

// containerStrategy demuxes and decodes through the format registry.
type containerStrategy struct {
	registry *audio.Registry
	limit    int
}

func (containerStrategy) Name() string { return "container" }

func (s containerStrategy) Decode(data []byte, hint probe.Hint) (audio.Signal, error) {
	formats := s.registry.Formats()
	if hint.Kind == probe.Container {
		if _, ok := s.registry.Get(hint.Format); !ok {
			return audio.Signal{}, fmt.Errorf("%w for %s", ErrNoDecoder, hint.Format)
		}
		formats = []string{hint.Format}
	}

	var errs []error
	for _, format := range formats {
		sig, err := s.decodeAs(format, data)
		if err == nil {
			return sig, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", format, err))
	}

	if len(errs) == 0 {
		return audio.Signal{}, ErrNoDecoder
	}
	return audio.Signal{}, errors.Join(errs...)
}

func (s containerStrategy) decodeAs(format string, data []byte) (audio.Signal, error) {
	dec, _ := s.registry.Get(format)

	src, err := dec.Decode(bytes.NewReader(data))
	if err != nil {
		return audio.Signal{}, err
	}
	defer src.Close()

	sig, err := audio.Collect(src, TargetRate, s.limit)
	if err != nil {
		return audio.Signal{}, err
	}
	if sig.Len() == 0 {
		return audio.Signal{}, fmt.Errorf("%w: 0", ErrTooFewSamples)
	}

	return sig, nil
}
