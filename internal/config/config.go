// Package config decodes .vibrato.toml, the same way sift decodes
// .sift.toml: read once at startup, overridden field-by-field by any
// flag the user passed explicitly.
package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config mirrors cmd/vibrato's persistent flags.
type Config struct {
	Dict           string `toml:"dict"`
	LoadMode       string `toml:"load-mode"`
	IgnoreSpace    bool   `toml:"ignore-space"`
	MaxGroupingLen uint   `toml:"max-grouping-len"`
	Normalize      bool   `toml:"normalize"`
}

// Load reads and decodes path. A missing file is not an error; it
// yields a zero Config so flag defaults take over entirely.
func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
