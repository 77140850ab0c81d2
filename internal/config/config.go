// SPDX-License-Identifier: EPL-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvServiceURL   = "VOICE_API_SERVICE_URL"
	EnvServiceToken = "VOICE_API_SERVICE_TOKEN"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Service ServiceConfig `yaml:"service"`
	Audio   AudioConfig   `yaml:"audio"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig is the inbound HTTP listener.
type ServerConfig struct {
	Address        string        `yaml:"address"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	CORSOrigin     string        `yaml:"cors_origin"`
}

// ServiceConfig is the outbound translation session.
type ServiceConfig struct {
	URL                string        `yaml:"url"`
	Token              string        `yaml:"token"`
	UserAgent          string        `yaml:"user_agent"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout"`
	ReceiveTimeout     time.Duration `yaml:"receive_timeout"`
	MaxRetries         int           `yaml:"max_retries"`
	ReconnectAttempts  int           `yaml:"reconnect_attempts"`
	ReconnectBackoff   time.Duration `yaml:"reconnect_backoff"`
	StartupAttempts    int           `yaml:"startup_attempts"`
	StartupBackoff     time.Duration `yaml:"startup_backoff"`
	CloseGrace         time.Duration `yaml:"close_grace"`
	SourceLang         string        `yaml:"source_lang"`
	TargetLang         string        `yaml:"target_lang"`
	// Stream sends uploads in ChunkSize frames unless the request says
	// otherwise.
	Stream    bool `yaml:"stream"`
	ChunkSize int  `yaml:"chunk_size"`
}

// AudioConfig tunes the normalization pipeline.
type AudioConfig struct {
	// DumpDir, when set, receives a WAV copy of every normalized upload.
	DumpDir           string `yaml:"dump_dir"`
	MaxDecodedSamples int    `yaml:"max_decoded_samples"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Default returns a configuration that validates once a service URL is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:        "0.0.0.0",
			Port:           8000,
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   60 * time.Second,
			MaxUploadBytes: 10 << 20,
			CORSOrigin:     "*",
		},
		Service: ServiceConfig{
			UserAgent:         "VoiceTranslationClient/1.0",
			ConnectTimeout:    10 * time.Second,
			ReceiveTimeout:    30 * time.Second,
			MaxRetries:        3,
			ReconnectAttempts: 3,
			ReconnectBackoff:  time.Second,
			StartupAttempts:   3,
			StartupBackoff:    2 * time.Second,
			CloseGrace:        100 * time.Millisecond,
			SourceLang:        "zh",
			TargetLang:        "en",
			ChunkSize:         3200,
		},
		Audio: AudioConfig{
			MaxDecodedSamples: 60 * 16000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// Load reads path over Default, applies environment overrides and
// validates the result. An empty path loads only defaults and environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := decode(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// decode rejects unknown keys so typos do not silently fall back to
// defaults.
func decode(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvServiceURL); v != "" {
		c.Service.URL = v
	}
	if v := os.Getenv(EnvServiceToken); v != "" {
		c.Service.Token = v
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Service.Validate(); err != nil {
		return fmt.Errorf("service config: %w", err)
	}
	if err := c.Audio.Validate(); err != nil {
		return fmt.Errorf("audio config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 {
		return fmt.Errorf("read_timeout and write_timeout must be positive")
	}
	if s.MaxUploadBytes < 1024 {
		return fmt.Errorf("max_upload_bytes must be at least 1024, got %d", s.MaxUploadBytes)
	}
	return nil
}

// Addr is the listen address.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Address, s.Port)
}

func (s *ServiceConfig) Validate() error {
	if s.URL == "" {
		return fmt.Errorf("url cannot be empty (set it in the file or %s)", EnvServiceURL)
	}
	if s.ConnectTimeout <= 0 || s.ReceiveTimeout <= 0 {
		return fmt.Errorf("connect_timeout and receive_timeout must be positive")
	}
	if s.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1, got %d", s.MaxRetries)
	}
	if s.ReconnectAttempts < 1 || s.StartupAttempts < 1 {
		return fmt.Errorf("reconnect_attempts and startup_attempts must be at least 1")
	}
	if s.ReconnectBackoff < 0 || s.StartupBackoff < 0 || s.CloseGrace < 0 {
		return fmt.Errorf("backoffs and close_grace cannot be negative")
	}
	if s.SourceLang == "" || s.TargetLang == "" {
		return fmt.Errorf("source_lang and target_lang cannot be empty")
	}
	if s.ChunkSize < 2 || s.ChunkSize%2 != 0 {
		return fmt.Errorf("chunk_size must be a positive even byte count, got %d", s.ChunkSize)
	}
	return nil
}

func (a *AudioConfig) Validate() error {
	if a.MaxDecodedSamples < 16000 {
		return fmt.Errorf("max_decoded_samples must be at least 16000, got %d", a.MaxDecodedSamples)
	}
	if a.DumpDir != "" {
		info, err := os.Stat(a.DumpDir)
		if err != nil {
			return fmt.Errorf("dump_dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("dump_dir %s is not a directory", a.DumpDir)
		}
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}

	switch l.Format {
	case "json", "text":
	default:
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	switch l.Output {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("output must be 'stdout' or 'stderr', got '%s'", l.Output)
	}

	return nil
}
