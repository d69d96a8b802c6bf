// Package config loads server configuration from a TOML file with
// struct-tag defaults applied first.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/mcuadros/go-defaults"
)

// Mode selects how many hands a fingerprint covers.
type Mode string

const (
	// ModeSingle matches one-hand signs against 60-dimensional references.
	ModeSingle Mode = "single"
	// ModeDual matches two-hand signs against 120-dimensional references.
	ModeDual Mode = "dual"
)

// Config is the root configuration for the server and the loader.
type Config struct {
	Server   Server   `toml:"server"`
	Game     Game     `toml:"game"`
	Store    Store    `toml:"store"`
	Detector Detector `toml:"detector"`
}

// Server holds the listen configuration.
type Server struct {
	Addr string `toml:"addr" default:":7777"`
	// Workers bounds the pool that runs detection and store scans off the
	// per-connection read loops.
	Workers int `toml:"workers" default:"4"`
	Debug   bool `toml:"debug" default:"false"`
}

// Game holds matching behaviour.
type Game struct {
	Mode Mode `toml:"mode" default:"dual"`
	// Threshold is the acceptance similarity in [0,1]. A verdict is correct
	// only when the store-reported similarity strictly exceeds it.
	Threshold float64 `toml:"threshold" default:"0.98"`
}

// Store selects and configures the similarity store backend.
type Store struct {
	// Backend is "qdrant" or "sqlite".
	Backend    string `toml:"backend" default:"qdrant"`
	Collection string `toml:"collection" default:"lsm_signs"`

	// Qdrant backend.
	Host string `toml:"host" default:"localhost"`
	Port int    `toml:"port" default:"6334"`

	// SQLite backend.
	Path string `toml:"path" default:"lsm_signs.db"`
}

// Detector holds hand detection options forwarded to the MediaPipe service.
type Detector struct {
	MinConfidence   float64 `toml:"min_confidence" default:"0.7"`
	MinTrackingConf float64 `toml:"min_tracking_confidence" default:"0.5"`
	// Mock replaces the MediaPipe subprocess with the canned detector,
	// useful when running without Python installed.
	Mock bool `toml:"mock" default:"false"`
}

// Default returns a Config with all defaults applied and no file read.
func Default() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	return cfg
}

// Load reads the TOML file at path on top of the defaults. A missing file is
// not an error: the defaults are returned so the server can run unconfigured.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Game.Mode {
	case ModeSingle, ModeDual:
	default:
		return fmt.Errorf("invalid game mode %q (want %q or %q)", c.Game.Mode, ModeSingle, ModeDual)
	}

	if c.Game.Threshold < 0 || c.Game.Threshold > 1 {
		return fmt.Errorf("threshold %v out of range [0,1]", c.Game.Threshold)
	}

	switch c.Store.Backend {
	case "qdrant", "sqlite":
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}

	if c.Server.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Server.Workers)
	}

	return nil
}

// MaxHands returns how many hands the detector should report for the mode.
func (c *Config) MaxHands() int {
	if c.Game.Mode == ModeDual {
		return 2
	}
	return 1
}
