// Package config loads the explorer's TOML configuration file.
//
// The file lives at ~/.config/fixexplorer/config.toml by default. Every
// field has a working zero-config default; a missing file is not an error.
// CLI flags override file values, which override defaults.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lselvakumaran/fixinventory/pkg/errors"
)

// Config is the full explorer configuration.
type Config struct {
	Core   Core   `toml:"core"`
	Camera Camera `toml:"camera"`
	Layout Layout `toml:"layout"`
	Ingest Ingest `toml:"ingest"`
}

// Core configures the backend connection.
type Core struct {
	// Endpoint is the base URL of the graph backend.
	Endpoint string `toml:"endpoint"`

	// PSK is the pre-shared key sent with backend requests.
	PSK string `toml:"psk"`

	// Graph is the backend graph name to export.
	Graph string `toml:"graph"`
}

// Camera configures view-state behavior.
type Camera struct {
	MinZoom       float64 `toml:"min_zoom"`
	MaxZoom       float64 `toml:"max_zoom"`
	DefaultZoom   float64 `toml:"default_zoom"`
	MomentumDecay float64 `toml:"momentum_decay"`
}

// Layout configures the spatial layout.
type Layout struct {
	// Seed makes the fallback layout reproducible.
	Seed uint64 `toml:"seed"`

	// Spread is the base ring radius in world units.
	Spread float64 `toml:"spread"`

	// CacheDir is where computed positions are persisted. Empty disables
	// position caching.
	CacheDir string `toml:"cache_dir"`

	// Redis enables a shared redis position cache instead of CacheDir.
	Redis string `toml:"redis"`
}

// Ingest configures data sources.
type Ingest struct {
	// DumpPath is the default local dump file for `load`.
	DumpPath string `toml:"dump_path"`

	// QueryCatalog is an optional TOML file extending the built-in query
	// catalog.
	QueryCatalog string `toml:"query_catalog"`
}

// Default returns the zero-config defaults.
func Default() Config {
	return Config{
		Core: Core{
			Endpoint: "http://localhost:8900",
			Graph:    "resoto",
		},
		Camera: Camera{
			MinZoom:       20,
			MaxZoom:       90,
			DefaultZoom:   70,
			MomentumDecay: 0.01,
		},
		Layout: Layout{
			Seed:   42,
			Spread: 120,
		},
	}
}

// DefaultPath returns the standard config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "fixexplorer", "config.toml")
}

// Load reads the config file at path, layered over the defaults. A missing
// file yields the defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to read config file")
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "failed to parse config file")
	}
	return cfg, nil
}
