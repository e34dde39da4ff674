package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Environment variables that override loaded settings.
const (
	EnvAddr       = "RELAY_ADDR"
	EnvLogLevel   = "RELAY_LOG_LEVEL"
	EnvArchiveDB  = "RELAY_ARCHIVE_DB"
	userConfigDir = ".chess-relay"
	configFile    = "relay.yaml"
)

// Load loads the relay configuration.
// Search order: customPath -> ~/.chess-relay/relay.yaml -> ./configs/relay.yaml -> embedded default
//
// Files are decoded over the defaults, so they only need the settings they
// change. Environment overrides are applied last and the result is validated.
func Load(customPath string) (Config, error) {
	cfg, source, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}

	applyEnv(&cfg, os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", source, err)
	}
	return cfg, nil
}

func loadFile(customPath string) (Config, string, error) {
	cfg := Default()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, customPath, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := decode(customPath, data, &cfg); err != nil {
			return cfg, customPath, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, customPath, nil
	}

	// Try user config directory, then the local configs directory
	for _, path := range []string{userConfigPath(configFile), filepath.Join("configs", configFile)} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		candidate := Default()
		if err := decode(path, data, &candidate); err != nil {
			return cfg, path, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		return candidate, path, nil
	}

	// Use embedded default YAML
	if err := decode(configFile, defaultRelayYAML, &cfg); err != nil {
		return Default(), "defaults", nil // Fallback to hardcoded if embed fails
	}
	return cfg, "defaults", nil
}

// decode picks the format from the file extension. Unknown keys are errors
// in both formats.
func decode(path string, data []byte, cfg *Config) error {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return err
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("unknown key %q", undecoded[0].String())
		}
		return nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overlays environment overrides. Empty values are ignored.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvAddr); ok && v != "" {
		cfg.Server.Address = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = strings.ToLower(v)
	}
	if v, ok := lookup(EnvArchiveDB); ok && v != "" {
		cfg.Archive.DBPath = v
		cfg.Archive.Enabled = true
	}
}

// Marshal renders cfg as YAML.
func Marshal(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, userConfigDir, filename)
}
