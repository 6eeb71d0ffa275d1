package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadMissingDefaultFileUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load("nope.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestLoadFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, "lolc.yaml", `
source_ext: lolcode
verify: true
output:
  dir: public
serve:
  addr: ":9000"
watch:
  debounce: 1s
log:
  level: debug
viewer:
  cols: 100
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ".lolcode", cfg.SourceExt)
	assert.True(t, cfg.Verify)
	assert.False(t, cfg.Open)
	assert.Equal(t, "public", cfg.Output.Dir)
	assert.Equal(t, ".html", cfg.Output.Ext)
	assert.Equal(t, ":9000", cfg.Serve.Addr)
	assert.Equal(t, "/metrics", cfg.Serve.MetricsPath)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 100, cfg.Viewer.Cols)
	assert.Equal(t, 640, cfg.Viewer.Width)
}

func TestLoadExpandsEnvFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Cleanup(func() { _ = os.Unsetenv("LOLC_TEST_SITE_DIR") })

	writeFile(t, ".env", "LOLC_TEST_SITE_DIR=from-dotenv\n")
	writeFile(t, "lolc.yaml", "output:\n  dir: ${LOLC_TEST_SITE_DIR}/out\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv/out", cfg.Output.Dir)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, "lolc.yaml", "output:\n  dir: public\nopen: false\n")

	t.Setenv("LOLC_OUTPUT_DIR", "dist")
	t.Setenv("LOLC_OPEN", "true")
	t.Setenv("LOLC_WATCH_DEBOUNCE", "50ms")
	t.Setenv("LOLC_LOG_FORMAT", "json")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dist", cfg.Output.Dir)
	assert.True(t, cfg.Open)
	assert.Equal(t, 50*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LOLC_VERIFY", "maybe")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOLC_VERIFY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Same extensions", func(c *Config) { c.Output.Ext = c.SourceExt }},
		{"Relative metrics path", func(c *Config) { c.Serve.MetricsPath = "metrics" }},
		{"Root metrics path", func(c *Config) { c.Serve.MetricsPath = "/" }},
		{"Metrics on health path", func(c *Config) { c.Serve.MetricsPath = HealthPath }},
		{"Metrics path with pattern syntax", func(c *Config) { c.Serve.MetricsPath = "/m/{x}" }},
		{"Negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }},
		{"Unknown level", func(c *Config) { c.Log.Level = "loud" }},
		{"Unknown format", func(c *Config) { c.Log.Format = "xml" }},
		{"Narrow viewer", func(c *Config) { c.Viewer.Cols = 3 }},
	}

	require.NoError(t, Default().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	} {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("trace")
	assert.Error(t, err)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lolc.yaml")

	require.NoError(t, Init(path, false))
	assert.Error(t, Init(path, false))
	require.NoError(t, Init(path, true))

	t.Chdir(dir)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}
