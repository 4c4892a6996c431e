// Package config loads hivescan settings from defaults, an optional YAML
// file and HIVESCAN_ environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

// EnvPrefix prefixes every environment override. The first underscore after
// it separates the section from the key: HIVESCAN_SCAN_MAX_SEEDS sets
// scan.max_seeds.
const EnvPrefix = "HIVESCAN_"

type Config struct {
	Log  LogConfig  `koanf:"log" yaml:"log"`
	Scan ScanConfig `koanf:"scan" yaml:"scan"`
	AI   AIConfig   `koanf:"ai" yaml:"ai"`
}

type LogConfig struct {
	Enabled bool   `koanf:"enabled" yaml:"enabled"`
	Level   string `koanf:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Dir     string `koanf:"dir" yaml:"dir,omitempty"`
}

type ScanConfig struct {
	// MaxSeeds caps seed offsets per pattern; 0 means no cap.
	MaxSeeds     int `koanf:"max_seeds" yaml:"max_seeds" validate:"min=0"`
	Workers      int `koanf:"workers" yaml:"workers" validate:"min=0,max=64"`
	StringMinLen int `koanf:"string_min_len" yaml:"string_min_len" validate:"min=1,max=99"`
	StringMax    int `koanf:"string_max" yaml:"string_max" validate:"min=1,max=100000"`
}

type AIConfig struct {
	Provider string `koanf:"provider" yaml:"provider,omitempty" validate:"omitempty,oneof=openai anthropic openrouter"`
	APIKey   string `koanf:"api_key" yaml:"api_key,omitempty"`
	BaseURL  string `koanf:"base_url" yaml:"base_url,omitempty" validate:"omitempty,url"`
	Model    string `koanf:"model" yaml:"model,omitempty" validate:"required_with=Provider"`
	Language string `koanf:"language" yaml:"language,omitempty"`
	// MaxStrings caps the extracted strings sent with a request.
	MaxStrings     int `koanf:"max_strings" yaml:"max_strings" validate:"min=0,max=30"`
	TimeoutSeconds int `koanf:"timeout_seconds" yaml:"timeout_seconds" validate:"min=1,max=600"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Scan: ScanConfig{
			StringMinLen: types.DefaultStringMinLen,
			StringMax:    types.DefaultStringMax,
		},
		AI: AIConfig{
			MaxStrings:     30,
			TimeoutSeconds: 30,
		},
	}
}

// DefaultPath returns ~/.hivescan/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".hivescan", "config.yaml"), nil
}

// Load builds the configuration. The file at path is read when it exists;
// a missing file is an error only when required is set.
func Load(path string, required bool) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, types.Wrap(types.ErrKindConfig, "load defaults", err)
	}

	if path != "" {
		_, statErr := os.Stat(path)
		switch {
		case statErr == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, types.Wrap(types.ErrKindConfig, "load "+path, err)
			}
		case required || !errors.Is(statErr, os.ErrNotExist):
			return nil, types.Wrap(types.ErrKindConfig, "load "+path, statErr)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, types.Wrap(types.ErrKindConfig, "load environment", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, types.Wrap(types.ErrKindConfig, "unmarshal config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
}

// Validate checks field ranges and enumerations.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return types.Wrap(types.ErrKindConfig, "invalid config", err)
	}
	return nil
}

// Save writes c to path as YAML, creating the directory. The file is
// private because it may hold an API key.
func Save(path string, c *Config) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SlogLevel maps Log.Level to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
