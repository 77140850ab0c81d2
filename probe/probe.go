// SPDX-License-Identifier: EPL-2.0

// Package probe guesses the encoding of an audio buffer from its leading
// bytes and its length. It does no I/O and never fails.
package probe

import (
	"bytes"
	"fmt"
)

// Kind of hint returned by Detect.
type Kind int

const (
	Unknown Kind = iota
	Container
	RawPCM
)

func (k Kind) String() string {
	switch k {
	case Container:
		return "container"
	case RawPCM:
		return "raw"
	default:
		return "unknown"
	}
}

// Container format keys. They double as decoder registry keys.
const (
	FormatWAV  = "wav"
	FormatMP3  = "mp3"
	FormatOgg  = "ogg"
	FormatAIFF = "aiff"
	FormatFLAC = "flac"
	FormatWebM = "webm"
	FormatMP4  = "mp4"
)

// Hint is the result of Detect.
type Hint struct {
	Kind Kind
	// Format is set for Container hints.
	Format string
	// BitWidth is set for RawPCM hints.
	BitWidth int
	// Float32Aligned reports whether the length also fits 32-bit samples.
	Float32Aligned bool
}

func (h Hint) String() string {
	switch h.Kind {
	case Container:
		return "container:" + h.Format
	case RawPCM:
		return fmt.Sprintf("raw:%d", h.BitWidth)
	default:
		return "unknown"
	}
}

var (
	magicRIFF = []byte("RIFF")
	magicWAVE = []byte("WAVE")
	magicID3  = []byte("ID3")
	magicOgg  = []byte("OggS")
	magicFORM = []byte("FORM")
	magicAIFF = []byte("AIFF")
	magicAIFC = []byte("AIFC")
	magicFLAC = []byte("fLaC")
	magicEBML = []byte{0x1A, 0x45, 0xDF, 0xA3}
	magicFtyp = []byte("ftyp")
)

// Detect inspects data and returns its best guess.
func Detect(data []byte) Hint {
	if format := container(data); format != "" {
		return Hint{Kind: Container, Format: format}
	}

	if len(data) > 0 && len(data)%2 == 0 {
		return Hint{Kind: RawPCM, BitWidth: 16, Float32Aligned: len(data)%4 == 0}
	}

	return Hint{Kind: Unknown}
}

func container(b []byte) string {
	at := func(off int, magic []byte) bool {
		return len(b) >= off+len(magic) && bytes.Equal(b[off:off+len(magic)], magic)
	}

	switch {
	case at(0, magicRIFF) && at(8, magicWAVE):
		return FormatWAV
	case at(0, magicOgg):
		return FormatOgg
	case at(0, magicFORM) && (at(8, magicAIFF) || at(8, magicAIFC)):
		return FormatAIFF
	case at(0, magicFLAC):
		return FormatFLAC
	case at(0, magicEBML):
		return FormatWebM
	case at(4, magicFtyp):
		return FormatMP4
	case at(0, magicID3), mpegStream(b):
		return FormatMP3
	}

	return ""
}
