package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// EnvConfig names the environment variable that can point at a config file.
const EnvConfig = "COVERGEN_CONFIG"

// Load builds the effective config. File values override defaults and flags
// override both; the result is validated.
func Load() (*Config, error) {
	cfg := Default()

	if path := resolveConfigPath(); path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	applyFlags(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveConfigPath picks --config, then $COVERGEN_CONFIG, then the first
// file found by findConfigFile. Empty means defaults only.
func resolveConfigPath() string {
	if path := ConfigPath(); path != "" {
		return path
	}
	if path := os.Getenv(EnvConfig); path != "" {
		return path
	}
	return findConfigFile()
}

func findConfigFile() string {
	path, _ := lo.Find([]string{"covergen.yaml", DefaultPath()}, func(p string) bool {
		_, err := os.Stat(p)
		return err == nil
	})
	return path
}

// ConfigDir returns the per-user config directory for covergen.
func ConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "covergen")
}

// loadFromFile decodes path over cfg. Keys that match no config field are
// rejected so typos do not silently fall back to defaults.
func loadFromFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
