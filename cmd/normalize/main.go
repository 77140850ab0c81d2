// SPDX-License-Identifier: EPL-2.0

// Command normalize runs an audio file through the normalization pipeline
// and writes the canonical PCM as a 16 kHz mono WAV file.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/Liam-coding/Voice-API/formats/wav"
	"github.com/Liam-coding/Voice-API/pipeline"
)

func main() {
	in := flag.String("in", "", "input audio file (any container or raw PCM)")
	out := flag.String("out", "", "output WAV file; omitted means report only")
	verbose := flag.Bool("v", false, "log every decode attempt")
	flag.Parse()

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: normalize -in <input> [-out <output.wav>] [-v]")
		os.Exit(2)
	}

	if err := run(*in, *out, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "normalize:", err)
		os.Exit(1)
	}
}

func run(inPath, outPath string, verbose bool) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	res := pipeline.New(pipeline.WithLogger(logger)).Normalize(data)

	strategy := res.Strategy
	if strategy == "" {
		strategy = "none"
	}
	fmt.Printf("input:       %s (%d bytes, %s)\n", inPath, len(data), res.Hint)
	fmt.Printf("strategy:    %s\n", strategy)
	fmt.Printf("verdict:     acceptable=%t degraded=%t reason=%s\n",
		res.Verdict.Acceptable, res.Verdict.Degraded, res.Verdict.Reason)
	fmt.Printf("level:       peak=%.4f rms=%.4f\n", res.Verdict.Stats.Peak, res.Verdict.Stats.RMS)
	fmt.Printf("substituted: %t\n", res.Substituted)
	fmt.Printf("output:      %d bytes (%v)\n", len(res.PCM), res.Duration())
	for _, a := range res.Attempts {
		fmt.Printf("  tried %-9s %v\n", a.Strategy, a.Err)
	}

	if outPath == "" {
		return nil
	}

	if err := wav.WriteFile(outPath, pipeline.TargetRate, pipeline.Int16s(res.PCM)); err != nil {
		return err
	}

	fmt.Println("wrote:", outPath)
	return nil
}
