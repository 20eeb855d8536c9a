package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable holding the config file path
const EnvConfigPath = "EXAMJSON_CONFIG"

// DefaultPaths are tried in order when no config file is named
var DefaultPaths = []string{"examjson.yaml", "examjson.yml", "examjson.toml"}

// Config holds the settings of a conversion
type Config struct {
	// Input is the question text file
	Input string `yaml:"input" toml:"input"`

	// Output is the JSON document to write
	Output string `yaml:"output" toml:"output"`

	// Workers is the number of goroutines parsing lines (default: 1)
	Workers int `yaml:"workers" toml:"workers"`

	// Indent is the JSON indentation (default: two spaces)
	Indent string `yaml:"indent" toml:"indent"`

	// SQLite is an optional database that also receives the questions
	SQLite string `yaml:"sqlite" toml:"sqlite"`

	// Report is an optional JSON run report path
	Report string `yaml:"report" toml:"report"`

	// MetricsTextfile is an optional Prometheus textfile path
	MetricsTextfile string `yaml:"metrics_textfile" toml:"metrics_textfile"`

	Log   LogConfig   `yaml:"log" toml:"log"`
	Watch WatchConfig `yaml:"watch" toml:"watch"`
}

// LogConfig controls diagnostic logging
type LogConfig struct {
	Verbosity int    `yaml:"verbosity" toml:"verbosity"`
	File      string `yaml:"file" toml:"file"`
}

// WatchConfig controls the watch command
type WatchConfig struct {
	// Debounce is nil when unset; zero disables debouncing
	Debounce *Duration `yaml:"debounce" toml:"debounce"`
}

// Duration is a time.Duration read from strings like "200ms"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler (used by TOML)
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML reads a duration string
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields
func ApplyDefaults(cfg *Config) {
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.Indent == "" {
		cfg.Indent = "  "
	}
	if cfg.Watch.Debounce == nil {
		cfg.Watch.Debounce = &Duration{Duration: 200 * time.Millisecond}
	}
}

// Load reads the configuration file at path. YAML and TOML are chosen by
// extension. An empty path looks at EXAMJSON_CONFIG and DefaultPaths and
// falls back to defaults when none exists.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		for _, p := range DefaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	var cfg Config
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	ApplyDefaults(&cfg)
	envErr := applyEnvOverrides(&cfg)

	if err := errors.Join(envErr, Validate(&cfg)); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported configuration format %q (expected .yaml, .yml or .toml)", filepath.Ext(path))
	}
	return nil
}

// applyEnvOverrides applies EXAMJSON_* environment variables
func applyEnvOverrides(cfg *Config) error {
	var errs []error

	if val := os.Getenv("EXAMJSON_INPUT"); val != "" {
		cfg.Input = val
	}
	if val := os.Getenv("EXAMJSON_OUTPUT"); val != "" {
		cfg.Output = val
	}
	if val := os.Getenv("EXAMJSON_WORKERS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			errs = append(errs, &ValidationError{Field: "EXAMJSON_WORKERS", Message: fmt.Sprintf("must be an integer, got %q", val)})
		} else {
			cfg.Workers = n
		}
	}
	if val := os.Getenv("EXAMJSON_SQLITE"); val != "" {
		cfg.SQLite = val
	}
	return errors.Join(errs...)
}
