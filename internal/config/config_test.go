package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wabbit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
entry_name: main
import_module: host
export_all: false
memory_pages: 4
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.EntryName)
	assert.Equal(t, "host", cfg.ImportModule)
	assert.False(t, cfg.ExportAll)
	assert.Equal(t, uint32(4), cfg.MemoryPages)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel, "unset keys keep their default")
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, "entry_name: from_file\nmemory_pages: 2\n")
	t.Setenv("WABBIT_ENTRY_NAME", "from_env")
	t.Setenv("WABBIT_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.EntryName, "env overrides file")
	assert.Equal(t, uint32(2), cfg.MemoryPages, "file overrides default")
	assert.Equal(t, "debug", cfg.LogLevel, "env overrides default")
	assert.Equal(t, DefaultImportModule, cfg.ImportModule)
}

func TestLoadEnvConversions(t *testing.T) {
	t.Setenv("WABBIT_EXPORT_ALL", "false")
	t.Setenv("WABBIT_MEMORY_PAGES", "16")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.False(t, cfg.ExportAll)
	assert.Equal(t, uint32(16), cfg.MemoryPages)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "entry_name: [unterminated\n"))
		require.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(writeConfig(t, "memory_pages: 0\n"))
		assert.ErrorIs(t, err, ErrInvalid)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty entry", func(c *Config) { c.EntryName = "" }, "entry_name"},
		{"entry with space", func(c *Config) { c.EntryName = "my entry" }, "entry_name"},
		{"empty import module", func(c *Config) { c.ImportModule = "" }, "import_module"},
		{"zero pages", func(c *Config) { c.MemoryPages = 0 }, "memory_pages"},
		{"too many pages", func(c *Config) { c.MemoryPages = maxMemoryPages + 1 }, "memory_pages"},
		{"max pages", func(c *Config) { c.MemoryPages = maxMemoryPages }, ""},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log_level"},
		{"warn level", func(c *Config) { c.LogLevel = "warn" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "pages", 1)

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "msg=shown pages=1")

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)
}
