// SPDX-License-Identifier: EPL-2.0

// Command voice-api serves the translation HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/Liam-coding/Voice-API/internal/config"
	"github.com/Liam-coding/Voice-API/internal/metrics"
	"github.com/Liam-coding/Voice-API/internal/server"
	"github.com/Liam-coding/Voice-API/pipeline"
	"github.com/Liam-coding/Voice-API/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to configuration file (defaults plus environment when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := initLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("service stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("configuration loaded",
		slog.String("listen", cfg.Server.Addr()),
		slog.String("service_url", cfg.Service.URL),
		slog.String("source_lang", cfg.Service.SourceLang),
		slog.String("target_lang", cfg.Service.TargetLang),
		slog.Duration("receive_timeout", cfg.Service.ReceiveTimeout),
		slog.String("dump_dir", cfg.Audio.DumpDir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	p := pipeline.New(
		pipeline.WithLogger(logger.With(slog.String("component", "pipeline"))),
		pipeline.WithRecorder(m),
		pipeline.WithDumpDir(cfg.Audio.DumpDir),
		pipeline.WithMaxDecodedSamples(cfg.Audio.MaxDecodedSamples),
	)

	sess := session.New(session.Config{
		URL:                cfg.Service.URL,
		Token:              cfg.Service.Token,
		UserAgent:          cfg.Service.UserAgent,
		InsecureSkipVerify: cfg.Service.InsecureSkipVerify,
		MaxConnectAttempts: cfg.Service.MaxRetries,
		ConnectTimeout:     cfg.Service.ConnectTimeout,
		ReceiveTimeout:     cfg.Service.ReceiveTimeout,
		ReconnectAttempts:  cfg.Service.ReconnectAttempts,
		ReconnectBackoff:   cfg.Service.ReconnectBackoff,
		StartupAttempts:    cfg.Service.StartupAttempts,
		StartupBackoff:     cfg.Service.StartupBackoff,
		CloseGrace:         cfg.Service.CloseGrace,
		SourceLang:         cfg.Service.SourceLang,
		TargetLang:         cfg.Service.TargetLang,
		ChunkSize:          cfg.Service.ChunkSize,
	}, session.WebsocketDialer{},
		session.WithLogger(logger.With(slog.String("component", "session"))),
		session.WithRecorder(m),
	)

	if err := sess.Start(ctx); err != nil {
		logger.Warn("translation service unreachable at startup, connecting on first request",
			slog.String("error", err.Error()),
		)
	}

	srv := server.New(server.Options{
		Server:     cfg.Server,
		SourceLang: cfg.Service.SourceLang,
		TargetLang: cfg.Service.TargetLang,
		Stream:     cfg.Service.Stream,
		Pipeline:   p,
		Session:    sess,
		Metrics:    m,
		Gatherer:   reg,
		Logger:     logger.With(slog.String("component", "http")),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		if cerr := sess.Close(shutdownCtx); cerr != nil {
			logger.Warn("closing translation session", slog.String("error", cerr.Error()))
		}
		return err
	})

	return g.Wait()
}

// initLogger builds the process logger from the logging section.
func initLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(out, opts))
	}
	return slog.New(slog.NewJSONHandler(out, opts))
}
