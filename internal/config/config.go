// Package config loads the varstate configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/roach88/varstate/internal/keygen"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Config is the file configuration. Zero fields are filled by Default.
type Config struct {
	// Database is the SQLite path. ":memory:" gives a throwaway store.
	Database string `yaml:"database"`

	// Partition selects the key range variable keys are generated in.
	Partition int32 `yaml:"partition"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Export Export `yaml:"export"`
}

// Export configures the variable event log.
type Export struct {
	// Enabled turns the export listener on. A nil value means true.
	Enabled *bool `yaml:"enabled"`

	// NamePrefixes restricts exported variables by name. Empty exports all.
	NamePrefixes []string `yaml:"name_prefixes"`
}

// IsEnabled reports whether export is on.
func (e Export) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Database:  "varstate.db",
		Partition: 1,
		LogLevel:  "info",
	}
}

// Load reads path. A missing file is not an error when allowMissing is set;
// the defaults are returned instead.
func Load(path string, allowMissing bool) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if allowMissing && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML on top of the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return fmt.Errorf("%w: database is required", ErrInvalid)
	}
	if c.Partition < 1 || c.Partition > keygen.MaxPartitionID {
		return fmt.Errorf("%w: partition %d out of range [1, %d]", ErrInvalid, c.Partition, keygen.MaxPartitionID)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	for _, p := range c.Export.NamePrefixes {
		if p == "" {
			return fmt.Errorf("%w: export.name_prefixes must not contain empty prefixes", ErrInvalid)
		}
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (zapcore.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "info", "":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("%w: unknown log_level %q", ErrInvalid, c.LogLevel)
	}
}

// NewLogger builds a console logger writing to w at the configured level.
func (c Config) NewLogger(w io.Writer) (*zap.Logger, error) {
	level, err := c.Level()
	if err != nil {
		return nil, err
	}

	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core), nil
}
