// Package config loads server and calculator settings.
//
// Precedence (highest wins): defaults, config file, command-line flags.
// The file format follows the extension: .yaml/.yml, .toml, or .json
// (JSON with comments and trailing commas).
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/warp/tempwork/accounting"
)

// ErrUnsupportedFormat is returned for config files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config holds all tempwork configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server" json:"server"`
	Storage  StorageConfig  `yaml:"storage" toml:"storage" json:"storage"`
	Limits   LimitsConfig   `yaml:"limits" toml:"limits" json:"limits"`
	Autosave AutosaveConfig `yaml:"autosave" toml:"autosave" json:"autosave"`
	Calendar CalendarConfig `yaml:"calendar" toml:"calendar" json:"calendar"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port           int      `yaml:"port" toml:"port" json:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins" json:"allowed_origins"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `yaml:"db_path" toml:"db_path" json:"db_path"`
}

// LimitsConfig holds the day limits users may pick from.
type LimitsConfig struct {
	Default int   `yaml:"default" toml:"default" json:"default"`
	Allowed []int `yaml:"allowed" toml:"allowed" json:"allowed"`
}

// AutosaveConfig controls the periodic autosave session.
type AutosaveConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled" json:"enabled"`
	Interval string `yaml:"interval" toml:"interval" json:"interval"`
	Session  string `yaml:"session" toml:"session" json:"session"`
}

// IntervalDuration parses Interval. Validate has already rejected bad values.
func (a AutosaveConfig) IntervalDuration() time.Duration {
	d, _ := time.ParseDuration(a.Interval)
	return d
}

// CalendarConfig controls how timestamps become calendar dates.
type CalendarConfig struct {
	// Timezone is an IANA zone name. RFC 3339 timestamps are converted to
	// it before their date is taken; plain YYYY-MM-DD dates are unaffected.
	Timezone string `yaml:"timezone" toml:"timezone" json:"timezone"`
}

// Location loads Timezone. Validate has already rejected unknown zones.
func (c CalendarConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		Storage: StorageConfig{
			DBPath: "tempwork.db",
		},
		Limits: LimitsConfig{
			Default: accounting.DefaultLimit,
			Allowed: append([]int(nil), accounting.Presets...),
		},
		Autosave: AutosaveConfig{
			Enabled:  true,
			Interval: "5m",
			Session:  "autosave",
		},
		Calendar: CalendarConfig{
			Timezone: accounting.DefaultCalendarZone,
		},
	}
}

// Load reads the config file at path on top of the defaults. An empty path
// or a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := decode(path, data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".toml":
		_, err := toml.Decode(string(data), cfg)
		return err
	case ".json":
		std, err := hujson.Standardize(data)
		if err != nil {
			return err
		}
		dec := json.NewDecoder(bytes.NewReader(std))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Storage.DBPath == "" {
		return errors.New("storage.db_path must not be empty")
	}
	if len(c.Limits.Allowed) == 0 {
		return errors.New("limits.allowed must list at least one limit")
	}
	for _, l := range c.Limits.Allowed {
		if err := accounting.ValidateLimit(l, nil); err != nil {
			return fmt.Errorf("limits.allowed: %w", err)
		}
	}
	if err := accounting.ValidateLimit(c.Limits.Default, c.Limits.Allowed); err != nil {
		return fmt.Errorf("limits.default: %w", err)
	}
	if c.Calendar.Timezone == "" {
		return errors.New("calendar.timezone must not be empty")
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("invalid calendar.timezone: %w", err)
	}
	if c.Autosave.Enabled {
		d, err := time.ParseDuration(c.Autosave.Interval)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid autosave.interval %q", c.Autosave.Interval)
		}
		if strings.TrimSpace(c.Autosave.Session) == "" {
			return errors.New("autosave.session must not be empty")
		}
	}
	return nil
}
