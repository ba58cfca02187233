// Package config loads the fabledec YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dyuri/fabledec/internal/binary"
)

// EnvVar names the environment variable consulted when no path is given
const EnvVar = "FABLEDEC_CONFIG"

// Config holds the settings shared by every command
type Config struct {
	CodePage  int    `yaml:"codepage"`   // Code page of name fields; 65001 is UTF-8
	Format    string `yaml:"format"`     // Default output format
	CacheSize int    `yaml:"cache_size"` // Decoded file indexes kept per archive
	LogLevel  string `yaml:"log_level"`  // logrus level name
}

// OutputFormats lists the accepted values of Format
var OutputFormats = []string{"text", "json", "yaml", "cbor"}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		CodePage:  65001,
		Format:    "text",
		CacheSize: 16,
		LogLevel:  "info",
	}
}

// Load reads the configuration at path, or at $FABLEDEC_CONFIG when path is
// empty. With neither set the defaults are returned. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	if path == "" {
		return Default(), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting
func (c *Config) Validate() error {
	if _, err := binary.CodecForCodePage(c.CodePage); err != nil {
		return fmt.Errorf("codepage: %w", err)
	}

	valid := false
	for _, f := range OutputFormats {
		if c.Format == f {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("format: unknown output format %q", c.Format)
	}

	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size: must be at least 1, got %d", c.CacheSize)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

// Level returns the parsed log level. Call Validate first.
func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// TextCodec returns the codec for CodePage. Call Validate first.
func (c *Config) TextCodec() binary.TextCodec {
	codec, err := binary.CodecForCodePage(c.CodePage)
	if err != nil {
		return binary.UTF8
	}
	return codec
}
