// Package config loads snipcomplete settings from embedded defaults and an
// optional YAML, TOML or JSON file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/NikitaCOEUR/snipcomplete/internal/cerrors"
)

//go:embed defaults.yml
var defaultsYAML []byte

// FileName is the config file looked up in the user config directory
const FileName = "config.yml"

// ProviderConfig configures one completion provider
type ProviderConfig struct {
	Endpoint  string `koanf:"endpoint"`
	MinLength int    `koanf:"min_length"`
}

// ServerConfig configures the hint service
type ServerConfig struct {
	Addr  string `koanf:"addr"`
	DB    string `koanf:"db"`   // SQLite path, empty for an in-memory catalog
	Seed  string `koanf:"seed"` // YAML fixture loaded at startup
	CORS  bool   `koanf:"cors"`
	Limit int    `koanf:"limit"`
}

// Config is the merged configuration
type Config struct {
	BaseURL  string         `koanf:"base_url"`
	Timeout  time.Duration  `koanf:"timeout"`
	LogLevel string         `koanf:"log_level"`
	Tag      ProviderConfig `koanf:"tag"`
	Snippet  ProviderConfig `koanf:"snippet"`
	Server   ServerConfig   `koanf:"server"`
}

// Parser picks the koanf parser for a file extension
func Parser(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
}

// Default returns the built-in configuration
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// defaults.yml is embedded; failing to parse it is a build defect
		panic(fmt.Sprintf("invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load merges the embedded defaults with the file at path, when given
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, cerrors.NewConfigurationError("defaults", "failed to load defaults", err)
	}

	if path != "" {
		parser, err := Parser(path)
		if err != nil {
			return nil, cerrors.NewConfigurationError(path, "cannot read config", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, cerrors.NewConfigurationError(path, "failed to read config", err)
		}
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, cerrors.NewConfigurationError(path, "failed to parse config", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, cerrors.NewConfigurationError(path, "failed to unmarshal config", err)
	}

	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Check reports the first semantically invalid value
func (c *Config) Check() error {
	for name, p := range map[string]ProviderConfig{"tag": c.Tag, "snippet": c.Snippet} {
		if strings.TrimSpace(p.Endpoint) == "" {
			return cerrors.NewValidationError(name+".endpoint", "endpoint must not be empty", nil)
		}
		if p.MinLength < 1 {
			return cerrors.NewValidationError(name+".min_length", "min_length must be at least 1", nil)
		}
	}
	if c.Timeout <= 0 {
		return cerrors.NewValidationError("timeout", "timeout must be positive", nil)
	}
	if c.Server.Limit < 1 {
		return cerrors.NewValidationError("server.limit", "limit must be at least 1", nil)
	}
	return nil
}

// DefaultPath returns $XDG_CONFIG_HOME/snipcomplete/config.yml
func DefaultPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "snipcomplete", FileName), nil
}

// Resolve returns path, or the default path when path is empty and a file
// exists there, or "" for defaults only
func Resolve(path string) string {
	if path != "" {
		return path
	}
	def, err := DefaultPath()
	if err != nil {
		return ""
	}
	if _, err := os.Stat(def); err != nil {
		return ""
	}
	return def
}
