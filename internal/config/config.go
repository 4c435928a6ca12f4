// Package config loads run settings from an optional YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputDir       = "outputs"
	DefaultTimestampLayout = "2006-01-02 15:04:05"
	DefaultNATSSubject     = "deliveries.moving_average"
)

type Config struct {
	// WindowSize is used when no window size flag is given. Zero means unset.
	WindowSize      int    `yaml:"window_size"`
	OutputDir       string `yaml:"output_dir"`
	TimestampLayout string `yaml:"timestamp_layout"`
	NATS            NATS   `yaml:"nats"`
}

// NATS configures the optional NATS sink. An empty URL disables it.
type NATS struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

func Default() Config {
	return Config{
		OutputDir:       DefaultOutputDir,
		TimestampLayout: DefaultTimestampLayout,
		NATS:            NATS{Subject: DefaultNATSSubject},
	}
}

// Load reads path on top of Default. An empty path returns Default.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.WindowSize < 0 {
		return fmt.Errorf("window_size cannot be negative: %d", c.WindowSize)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.TimestampLayout == "" {
		return fmt.Errorf("timestamp_layout is required")
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	return nil
}
