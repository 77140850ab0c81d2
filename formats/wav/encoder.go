// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Encode writes interleaved integer samples as a PCM WAV file.
func Encode(w io.WriteSeeker, sampleRate, bitDepth, channels int, data []int) error {
	enc := wav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM)

	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("wav encode: %w", err)
	}

	return nil
}

// EncodePCM16 writes mono 16-bit samples.
func EncodePCM16(w io.WriteSeeker, sampleRate int, samples []int16) error {
	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	return Encode(w, sampleRate, 16, 1, data)
}

// Marshal returns the Encode output as a byte slice.
func Marshal(sampleRate, bitDepth, channels int, data []int) ([]byte, error) {
	var f memFile
	if err := Encode(&f, sampleRate, bitDepth, channels, data); err != nil {
		return nil, err
	}
	return f.buf, nil
}

// WriteFile stores mono 16-bit samples at path.
func WriteFile(path string, sampleRate int, samples []int16) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("wav: %w", cerr)
		}
	}()

	return EncodePCM16(f, sampleRate, samples)
}

// memFile is an in-memory io.WriteSeeker; the go-audio encoder seeks back
// to patch chunk sizes on Close.
type memFile struct {
	buf []byte
	off int64
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.off + int64(len(p))
	if end > int64(len(m.buf)) {
		m.buf = append(m.buf, make([]byte, end-int64(len(m.buf)))...)
	}
	copy(m.buf[m.off:end], p)
	m.off = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = m.off + offset
	case io.SeekEnd:
		next = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("invalid whence: %d", whence)
	}
	if next < 0 {
		return 0, fmt.Errorf("negative position")
	}
	m.off = next
	return next, nil
}
