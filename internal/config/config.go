// Package config loads sortgroup's TOML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	sgerrors "github.com/matzehuels/sortgroup/pkg/errors"
	"github.com/matzehuels/sortgroup/pkg/sorting"
)

// AppName names the config directory below the user config dir.
const AppName = "sortgroup"

// Output formats for the order table.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Output   OutputConfig   `toml:"output"`
	Watch    WatchConfig    `toml:"watch"`
	Cache    CacheConfig    `toml:"cache"`
	Serve    ServeConfig    `toml:"serve"`
	Logging  LoggingConfig  `toml:"logging"`
}

// DefaultsConfig applies to groups in scene files that leave a field out.
type DefaultsConfig struct {
	Mode  string `toml:"mode"`  // manual, hierarchy or isometric
	Layer string `toml:"layer"` // empty keeps sorting.DefaultLayer
}

type OutputConfig struct {
	Format   string `toml:"format"`   // "table" or "json"
	Detailed bool   `toml:"detailed"` // extra columns and diagram labels
}

type WatchConfig struct {
	Debounce time.Duration `toml:"debounce"`
}

// CacheConfig picks where rendered artifacts are kept. A RedisURL takes
// precedence over Dir.
type CacheConfig struct {
	Dir         string `toml:"dir"`          // empty uses $XDG_CACHE_HOME/sortgroup
	RedisURL    string `toml:"redis_url"`    // e.g. redis://localhost:6379/0
	RedisPrefix string `toml:"redis_prefix"` // empty uses cache.DefaultRedisPrefix
}

type ServeConfig struct {
	Addr         string        `toml:"addr"`
	Timeout      time.Duration `toml:"timeout"`        // per request
	MaxBodyBytes int64         `toml:"max_body_bytes"` // scene upload limit
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Mode: sorting.ModeManual.String(),
		},
		Output: OutputConfig{
			Format: FormatTable,
		},
		Watch: WatchConfig{
			Debounce: 100 * time.Millisecond,
		},
		Serve: ServeConfig{
			Addr:         "localhost:8350",
			Timeout:      30 * time.Second,
			MaxBodyBytes: 8 << 20,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path on top of the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, sgerrors.Wrap(sgerrors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, sgerrors.New(sgerrors.ErrCodeInvalidFormat, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Resolve loads the config named on the command line. Without one it tries
// the user config file and falls back to Default when that does not exist.
// The second result is the file that was read, or "".
func Resolve(explicit string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := Load(explicit)
		return cfg, explicit, err
	}
	path, err := UserPath()
	if err != nil {
		return Default(), "", nil
	}
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// UserPath returns the per-user config file location,
// $XDG_CONFIG_HOME/sortgroup/config.toml or the platform equivalent.
func UserPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName, "config.toml"), nil
}

// Validate checks field values that TOML decoding cannot.
func (c *Config) Validate() error {
	if _, err := sorting.ParseMode(c.Defaults.Mode); err != nil {
		return err
	}
	switch c.Output.Format {
	case FormatTable, FormatJSON:
	default:
		return sgerrors.New(sgerrors.ErrCodeInvalidFormat, "output format %q (want table or json)", c.Output.Format)
	}
	if c.Watch.Debounce < 0 {
		return sgerrors.New(sgerrors.ErrCodeInvalidInput, "watch debounce cannot be negative")
	}
	if c.Serve.Addr == "" {
		return sgerrors.New(sgerrors.ErrCodeInvalidInput, "serve address cannot be empty")
	}
	if c.Serve.Timeout < 0 || c.Serve.MaxBodyBytes <= 0 {
		return sgerrors.New(sgerrors.ErrCodeInvalidInput, "serve timeout must be >= 0 and max_body_bytes > 0")
	}
	if _, err := log.ParseLevel(c.Logging.Level); err != nil {
		return sgerrors.Wrap(sgerrors.ErrCodeInvalidInput, err, "logging level")
	}
	return nil
}

// Mode returns the parsed default group mode. Call after Validate.
func (c *Config) Mode() sorting.Mode {
	m, _ := sorting.ParseMode(c.Defaults.Mode)
	return m
}

// LogLevel returns the parsed logging level, info if it does not parse.
func (c *Config) LogLevel() log.Level {
	l, err := log.ParseLevel(c.Logging.Level)
	if err != nil {
		return log.InfoLevel
	}
	return l
}
