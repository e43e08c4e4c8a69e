// Package config reads the optional .gitinspect.toml settings file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the default settings path, relative to the working directory.
const FileName = ".gitinspect.toml"

// Config holds command defaults. Command-line flags override it.
type Config struct {
	// GitDir is the object store root. Empty means discover .git upwards
	// from the working directory.
	GitDir string `toml:"git_dir"`
	// CacheSize is the number of decoded objects kept in memory; 0 disables
	// the cache.
	CacheSize int     `toml:"cache_size"`
	Logging   Logging `toml:"logging"`
	History   History `toml:"history"`
}

// Logging selects log output format and level.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History holds log command defaults.
type History struct {
	// Limit caps the number of commits printed; 0 is unlimited.
	Limit   int  `toml:"limit"`
	Oneline bool `toml:"oneline"`
}

// Default returns the settings used when no file exists.
func Default() *Config {
	return &Config{
		Logging: Logging{Format: "text", Level: "warn"},
	}
}

// Load reads path on top of Default. A missing file returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("read config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects negative sizes.
func (c *Config) Validate() error {
	if c.CacheSize < 0 {
		return fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize)
	}
	if c.History.Limit < 0 {
		return fmt.Errorf("history.limit must not be negative, got %d", c.History.Limit)
	}
	return nil
}
