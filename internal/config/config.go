// Package config loads the eventmodel project configuration.
//
// Values are resolved in order: defaults, the project file, EVENTMODEL_* environment
// variables. Command-line flags are applied last by the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "EVENTMODEL_"

// FileNames are the project files looked up by Find, in priority order.
var FileNames = []string{"eventmodel.toml", "eventmodel.yaml", "eventmodel.yml", "eventmodel.json"}

// Loader backends.
const (
	LoaderLoam = "loam"
	LoaderFile = "file"
)

// Sinks accepted in ExportSinks.
var Sinks = []string{"file", "redis", "sqlite"}

// Config holds the settings shared by every command.
type Config struct {
	ModelDir string `toml:"model_dir" yaml:"model_dir" json:"model_dir" env:"MODEL_DIR"`
	Loader   string `toml:"loader" yaml:"loader" json:"loader" env:"LOADER"`
	Debug    bool   `toml:"debug" yaml:"debug" json:"debug" env:"DEBUG"`

	Export ExportConfig `toml:"export" yaml:"export" json:"export" envPrefix:"EXPORT_"`
	Redis  RedisConfig  `toml:"redis" yaml:"redis" json:"redis" envPrefix:"REDIS_"`
	SQLite SQLiteConfig `toml:"sqlite" yaml:"sqlite" json:"sqlite" envPrefix:"SQLITE_"`
	HTTP   HTTPConfig   `toml:"http" yaml:"http" json:"http" envPrefix:"HTTP_"`
}

// ExportConfig controls artifact output.
type ExportConfig struct {
	Dir    string   `toml:"dir" yaml:"dir" json:"dir" env:"DIR"`
	Format string   `toml:"format" yaml:"format" json:"format" env:"FORMAT"`
	Sinks  []string `toml:"sinks" yaml:"sinks" json:"sinks" env:"SINKS" envSeparator:","`
}

// RedisConfig configures the Redis sink.
type RedisConfig struct {
	Addr     string   `toml:"addr" yaml:"addr" json:"addr" env:"ADDR"`
	Password string   `toml:"password" yaml:"password" json:"password" env:"PASSWORD"`
	DB       int      `toml:"db" yaml:"db" json:"db" env:"DB"`
	TTL      Duration `toml:"ttl" yaml:"ttl" json:"ttl" env:"TTL"`
}

// SQLiteConfig configures the SQLite sink.
type SQLiteConfig struct {
	Path string `toml:"path" yaml:"path" json:"path" env:"PATH"`
}

// HTTPConfig configures the serve command.
type HTTPConfig struct {
	Port int `toml:"port" yaml:"port" json:"port" env:"PORT"`
}

// Duration is a time.Duration written as a Go duration string ("90s", "1h").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		d.Duration = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		ModelDir: ".",
		Loader:   LoaderLoam,
		Export: ExportConfig{
			Dir:    ".eventmodel/slices",
			Format: "json",
			Sinks:  []string{"file"},
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		SQLite: SQLiteConfig{
			Path: ".eventmodel/slices.db",
		},
		HTTP: HTTPConfig{
			Port: 8080,
		},
	}
}

// Find returns the first project file present in dir, or "" when there is none.
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads the project file at path (optional when empty), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays EVENTMODEL_* variables onto cfg.
func ApplyEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("decode TOML: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config format %q", ext)
	}
	return nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if c.ModelDir == "" {
		errs = append(errs, errors.New("model_dir is required"))
	}
	if c.Loader != LoaderLoam && c.Loader != LoaderFile {
		errs = append(errs, fmt.Errorf("loader must be %q or %q, got %q", LoaderLoam, LoaderFile, c.Loader))
	}
	switch strings.ToLower(c.Export.Format) {
	case "json", "yaml", "yml":
	default:
		errs = append(errs, fmt.Errorf("export.format must be json or yaml, got %q", c.Export.Format))
	}
	for _, sink := range c.Export.Sinks {
		if !slices.Contains(Sinks, sink) {
			errs = append(errs, fmt.Errorf("unknown export sink %q", sink))
		}
	}
	if c.Redis.TTL.Duration < 0 {
		errs = append(errs, errors.New("redis.ttl must not be negative"))
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port out of range: %d", c.HTTP.Port))
	}

	return errors.Join(errs...)
}
