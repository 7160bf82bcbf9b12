// Package config loads the optional sketchpipe.toml configuration file.
//
// Every setting has a working default, so a missing file is not an
// error; a malformed file is.
package config

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wyeh/sketchpipe/pkg/errors"
)

// DefaultFileName is the config file looked up in the working directory
// when no explicit path is given.
const DefaultFileName = "sketchpipe.toml"

// Config holds all file-configurable settings.
type Config struct {
	Bind   BindConfig   `toml:"bind"`
	Render RenderConfig `toml:"render"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// BindConfig tunes binding resolution.
type BindConfig struct {
	// ProximityTolerance is the geometric endpoint resolution threshold
	// in scene units.
	ProximityTolerance float64 `toml:"proximity_tolerance"`
}

// RenderConfig tunes rendering defaults.
type RenderConfig struct {
	// DefaultFormats is used when a convert run names no formats.
	DefaultFormats []string `toml:"default_formats"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	// Dir is the file cache directory.
	Dir string `toml:"dir"`

	// RedisAddr switches to the Redis backend when non-empty.
	RedisAddr string `toml:"redis_addr"`

	// Disabled turns caching off entirely.
	Disabled bool `toml:"disabled"`
}

// ServerConfig tunes the HTTP server.
type ServerConfig struct {
	// Addr is the listen address of the serve command.
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Bind:   BindConfig{ProximityTolerance: 50},
		Render: RenderConfig{DefaultFormats: []string{"mermaid"}},
		Cache:  CacheConfig{Dir: defaultCacheDir()},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the config file at path, layered over the defaults.
// A missing file yields the defaults; a malformed one an INVALID_CONFIG
// error.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	return cfg, nil
}

func defaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		return ".sketchpipe-cache"
	}
	return base + string(os.PathSeparator) + "sketchpipe"
}
