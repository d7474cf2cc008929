package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"modelcatalog/internal/common/fsutil"
)

// SearchPaths are tried in order when no config file is named.
var SearchPaths = []string{"./catalogd.yaml", "~/.config/catalogd/config.yaml", "/etc/catalogd/config.yaml"}

// Discover returns the first existing SearchPaths entry, or "".
func Discover() string { return fsutil.FirstExisting(SearchPaths...) }

// Load reads a configuration file based on its extension. A leading ~ is expanded.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := fsutil.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := Decode(filepath.Ext(path), b, &cfg); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode unmarshals b into v according to a file extension. The render command
// reads deployment requests through the same switch.
func Decode(ext string, b []byte, v any) error {
	switch ext = strings.ToLower(ext); ext {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, v)
	case ".json":
		return json.Unmarshal(b, v)
	case ".toml":
		return toml.Unmarshal(b, v)
	default:
		return fmt.Errorf("unsupported config extension: %s", ext)
	}
}

// Gather builds the effective configuration without validating it: the file at
// path (or the first discovered one), then the environment, then defaults.
func Gather(path string) (Config, error) {
	var cfg Config
	if path == "" {
		path = Discover()
	}
	if path != "" {
		var err error
		if cfg, err = Load(path); err != nil {
			return Config{}, err
		}
	}
	if err := FromEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg.WithDefaults(), nil
}

// Resolve is Gather followed by Validate.
func Resolve(path string) (Config, error) {
	cfg, err := Gather(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
