// Package config loads compiler settings from defaults, an optional YAML
// file and WABBIT_ environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "WABBIT_"

// Defaults
const (
	DefaultEntryName    = "_init"
	DefaultImportModule = "env"
	DefaultMemoryPages  = 1
	DefaultLogLevel     = "info"

	// maxMemoryPages is the 4GiB limit of a 32-bit linear memory.
	maxMemoryPages = 65536
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config holds compiler settings.
type Config struct {
	EntryName    string `koanf:"entry_name"`
	ImportModule string `koanf:"import_module"`
	ExportAll    bool   `koanf:"export_all"`
	MemoryPages  uint32 `koanf:"memory_pages"`
	LogLevel     string `koanf:"log_level"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		EntryName:    DefaultEntryName,
		ImportModule: DefaultImportModule,
		ExportAll:    true,
		MemoryPages:  DefaultMemoryPages,
		LogLevel:     DefaultLogLevel,
	}
}

// Load builds a Config. Precedence (highest to lowest): env vars > config
// file > defaults. An empty path skips the file; a named file must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]any{
		"entry_name":    DefaultEntryName,
		"import_module": DefaultImportModule,
		"export_all":    true,
		"memory_pages":  DefaultMemoryPages,
		"log_level":     DefaultLogLevel,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment: WABBIT_MEMORY_PAGES -> memory_pages
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that every setting is usable.
func (c *Config) Validate() error {
	if c.EntryName == "" || strings.ContainsAny(c.EntryName, " \t\n") {
		return fmt.Errorf("%w: entry_name %q", ErrInvalid, c.EntryName)
	}
	if c.ImportModule == "" {
		return fmt.Errorf("%w: import_module is required", ErrInvalid)
	}
	if c.MemoryPages == 0 || c.MemoryPages > maxMemoryPages {
		return fmt.Errorf("%w: memory_pages must be between 1 and %d, got %d", ErrInvalid, maxMemoryPages, c.MemoryPages)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalid, err)
	}
	return nil
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// NewLogger returns a text logger writing to w at the configured level.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
