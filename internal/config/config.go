// Package config loads the aveplay CLI settings from TOML files.
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"

	"github.com/erparts/go-aveplay"
)

const (
	DefaultTickInterval  = 10 * time.Millisecond
	DefaultSnapshotWidth = 320
)

type Config struct {
	LoopMode     string  `koanf:"loop_mode"`     // "none", "loop" or "bidirectional" (default: "loop")
	Direction    string  `koanf:"direction"`     // "forward" or "backward" (default: "forward")
	Speed        float64 `koanf:"speed"`         // playback speed multiplier (default: 1)
	TickInterval string  `koanf:"tick_interval"` // Go duration between update ticks (default: "10ms")
	LogLevel     string  `koanf:"log_level"`     // zerolog level name (default: "info")
	MetricsAddr  string  `koanf:"metrics_addr"`  // e.g. ":9090", empty disables the endpoint
	Preload      string  `koanf:"preload"`       // memory limit for preloading, e.g. "512MB"; empty streams from disk

	Snapshot SnapshotConfig `koanf:"snapshot"`
}

// SnapshotConfig holds the settings of the snapshot command.
type SnapshotConfig struct {
	Width int `koanf:"width"` // thumbnail width in pixels, 0 keeps the source size (default: 320)
}

// Load reads the config files found in the default locations.
func Load() (*Config, error) {
	return LoadFiles(getConfigPaths()...)
}

// LoadFiles reads the given TOML files in order (last wins). Missing
// files are skipped.
func LoadFiles(paths ...string) (*Config, error) {
	k := koanf.New(".")

	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	// snapshot.width = 0 is meaningful, only default it when it's absent
	if !k.Exists("snapshot.width") {
		cfg.Snapshot.Width = DefaultSnapshotWidth
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LoopMode == "" {
		c.LoopMode = aveplay.Loop.String()
	}
	if c.Direction == "" {
		c.Direction = aveplay.Forward.String()
	}
	if c.Speed <= 0 {
		c.Speed = 1
	}
	if c.TickInterval == "" {
		c.TickInterval = DefaultTickInterval.String()
	}
	if c.LogLevel == "" {
		c.LogLevel = zerolog.InfoLevel.String()
	}
	if c.Snapshot.Width < 0 {
		c.Snapshot.Width = 0
	}
}

// Validate checks that every value can be parsed.
func (c *Config) Validate() error {
	if _, err := c.GetLoopMode(); err != nil {
		return err
	}
	if _, err := c.GetDirection(); err != nil {
		return err
	}
	if _, err := c.GetTickInterval(); err != nil {
		return err
	}
	if _, err := c.GetLogLevel(); err != nil {
		return err
	}
	if _, err := c.GetPreloadLimit(); err != nil {
		return err
	}
	return nil
}

func (c *Config) GetLoopMode() (aveplay.LoopMode, error) {
	return aveplay.ParseLoopMode(c.LoopMode)
}

func (c *Config) GetDirection() (aveplay.Direction, error) {
	return aveplay.ParseDirection(c.Direction)
}

func (c *Config) GetTickInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil {
		return 0, fmt.Errorf("tick_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tick_interval must be positive, got %s", d)
	}
	return d, nil
}

func (c *Config) GetLogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// GetPreloadLimit returns the preload memory limit in bytes, 0 when
// preloading is off.
func (c *Config) GetPreloadLimit() (int64, error) {
	if c.Preload == "" {
		return 0, nil
	}
	limit, err := humanize.ParseBytes(c.Preload)
	if err != nil {
		return 0, fmt.Errorf("preload: %w", err)
	}
	if limit > math.MaxInt64 {
		return 0, fmt.Errorf("preload: %s is too large", c.Preload)
	}
	return int64(limit), nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/aveplay/config.toml
		filepath.Join(xdg.ConfigHome, "aveplay", "config.toml"),
		// 2. ./aveplay.toml (pwd, highest priority)
		"aveplay.toml",
	}
}
