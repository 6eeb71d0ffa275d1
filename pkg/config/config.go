// Package config loads lolc.yaml together with .env files and LOLC_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load and Init look when no path is given.
const DefaultPath = "lolc.yaml"

// Config represents the lolc configuration
type Config struct {
	SourceExt string       `yaml:"source_ext"`
	Open      bool         `yaml:"open"`
	Verify    bool         `yaml:"verify"`
	Output    OutputConfig `yaml:"output"`
	Serve     ServeConfig  `yaml:"serve"`
	Watch     WatchConfig  `yaml:"watch"`
	Log       LogConfig    `yaml:"log"`
	Viewer    ViewerConfig `yaml:"viewer"`
}

// OutputConfig controls where compiled documents are written
type OutputConfig struct {
	Dir string `yaml:"dir,omitempty"` // empty writes next to the source
	Ext string `yaml:"ext"`
}

// ServeConfig configures the preview server
type ServeConfig struct {
	Addr        string `yaml:"addr"`
	MetricsPath string `yaml:"metrics_path"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// LogConfig configures slog output
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// ViewerConfig configures the desktop viewer
type ViewerConfig struct {
	Cols   int `yaml:"cols"`
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		SourceExt: ".lol",
		Output:    OutputConfig{Ext: ".html"},
		Serve:     ServeConfig{Addr: "127.0.0.1:8080", MetricsPath: "/metrics"},
		Watch:     WatchConfig{Debounce: 250 * time.Millisecond},
		Log:       LogConfig{Level: "info", Format: "text"},
		Viewer:    ViewerConfig{Cols: 80, Width: 640, Height: 480},
	}
}

// Load reads the configuration at path. A missing file is not an error when
// path is DefaultPath; the defaults are used instead. Environment variables
// from .env and .env.local are loaded first, ${VAR} references in the file
// are expanded, and LOLC_* variables override file values.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
		slog.Debug("no config file, using defaults", "path", path)
	case errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("configuration file not found: %s", path)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFiles loads .env and .env.local without overriding variables that
// are already set.
func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("could not load env file", "path", name, "error", err)
			continue
		}
		slog.Debug("loaded environment variables", "path", name)
	}
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) error {
		v, ok := os.LookupEnv(key)
		if !ok {
			return nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("LOLC_SOURCE_EXT", &cfg.SourceExt)
	str("LOLC_OUTPUT_DIR", &cfg.Output.Dir)
	str("LOLC_OUTPUT_EXT", &cfg.Output.Ext)
	str("LOLC_SERVE_ADDR", &cfg.Serve.Addr)
	str("LOLC_METRICS_PATH", &cfg.Serve.MetricsPath)
	str("LOLC_LOG_LEVEL", &cfg.Log.Level)
	str("LOLC_LOG_FORMAT", &cfg.Log.Format)
	if err := boolean("LOLC_OPEN", &cfg.Open); err != nil {
		return err
	}
	if err := boolean("LOLC_VERIFY", &cfg.Verify); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("LOLC_WATCH_DEBOUNCE"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LOLC_WATCH_DEBOUNCE: %w", err)
		}
		cfg.Watch.Debounce = d
	}
	return nil
}

// applyDefaults fills fields an explicit file left empty.
func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.SourceExt == "" {
		cfg.SourceExt = def.SourceExt
	}
	if !strings.HasPrefix(cfg.SourceExt, ".") {
		cfg.SourceExt = "." + cfg.SourceExt
	}
	if cfg.Output.Ext == "" {
		cfg.Output.Ext = def.Output.Ext
	}
	if !strings.HasPrefix(cfg.Output.Ext, ".") {
		cfg.Output.Ext = "." + cfg.Output.Ext
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = def.Serve.Addr
	}
	if cfg.Serve.MetricsPath == "" {
		cfg.Serve.MetricsPath = def.Serve.MetricsPath
	}
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = def.Watch.Debounce
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = def.Log.Format
	}
	if cfg.Viewer.Cols == 0 {
		cfg.Viewer.Cols = def.Viewer.Cols
	}
	if cfg.Viewer.Width == 0 {
		cfg.Viewer.Width = def.Viewer.Width
	}
	if cfg.Viewer.Height == 0 {
		cfg.Viewer.Height = def.Viewer.Height
	}
}

// HealthPath is served by the preview server and cannot be reused for metrics.
const HealthPath = "/healthz"

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.SourceExt == c.Output.Ext {
		return fmt.Errorf("source_ext and output.ext must differ (both %q)", c.SourceExt)
	}
	if !strings.HasPrefix(c.Serve.MetricsPath, "/") || c.Serve.MetricsPath == "/" {
		return fmt.Errorf("serve.metrics_path must be an absolute path other than /: %q", c.Serve.MetricsPath)
	}
	if c.Serve.MetricsPath == HealthPath || strings.ContainsAny(c.Serve.MetricsPath, " \t{}") {
		return fmt.Errorf("serve.metrics_path must not be %s or contain spaces or braces: %q", HealthPath, c.Serve.MetricsPath)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative: %s", c.Watch.Debounce)
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json: %q", c.Log.Format)
	}
	if c.Viewer.Cols < 10 || c.Viewer.Width <= 0 || c.Viewer.Height <= 0 {
		return fmt.Errorf("viewer settings out of range: cols=%d width=%d height=%d", c.Viewer.Cols, c.Viewer.Width, c.Viewer.Height)
	}
	return nil
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

const initHeader = `# lolc configuration
# Values may reference environment variables as ${VAR}; LOLC_* variables
# (for example LOLC_OUTPUT_DIR or LOLC_LOG_LEVEL) override this file.
`

// Init writes a default configuration file to path.
func Init(path string, force bool) error {
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(initHeader), data...), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
