// SPDX-License-Identifier: EPL-2.0

package mp3_test

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/Liam-coding/Voice-API/audio"
	"github.com/Liam-coding/Voice-API/formats/mp3"
)

// ExampleDecoder_Decode decodes a file and collects it as 16 kHz mono.
func ExampleDecoder_Decode() {
	f, err := os.Open("input.mp3")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	src, err := mp3.Decoder{}.Decode(f)
	if err != nil {
		log.Fatal(err)
	}
	defer src.Close()

	sig, err := audio.Collect(src, 16000, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("%d samples, %v\n", sig.Len(), sig.Duration())
}

// ExampleDecoder_Decode_rejected shows the fast failure on non-MP3 bytes.
func ExampleDecoder_Decode_rejected() {
	_, err := mp3.Decoder{}.Decode(bytes.NewReader([]byte("This is not MP3 data")))
	fmt.Println("rejected:", err != nil)
	// Output: rejected: true
}
