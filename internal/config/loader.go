package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load loads config from the default path (~/.companion/config.json).
// A missing file yields the defaults.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	cfg, err := LoadFromFile(filepath.Join(home, ".companion", "config.json"))
	if errors.Is(err, fs.ErrNotExist) {
		cfg = DefaultConfig()
		applyEnvOverrides(cfg)
		expandPaths(cfg)
		return cfg, nil
	}
	return cfg, err
}

// LoadFromFile loads config from a specific file path. The format follows
// the extension: .toml, .yaml/.yml, otherwise JSON.
func LoadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return decode(func(cfg *Config) error {
			_, err := toml.NewDecoder(f).Decode(cfg)
			return err
		})
	case ".yaml", ".yml":
		return decode(func(cfg *Config) error {
			err := yaml.NewDecoder(f).Decode(cfg)
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		})
	default:
		return LoadFromReader(f)
	}
}

// LoadFromReader loads JSON config from an io.Reader, applying defaults and env overrides.
func LoadFromReader(r io.Reader) (*Config, error) {
	return decode(func(cfg *Config) error {
		return json.NewDecoder(r).Decode(cfg)
	})
}

func decode(into func(*Config) error) (*Config, error) {
	cfg := DefaultConfig()

	if err := into(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	expandPaths(cfg)

	return cfg, nil
}

// applyEnvOverrides applies COMPANION_-prefixed environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	strs := map[string]*string{
		"COMPANION_MESSAGES_SOURCE":    &cfg.Messages.Source,
		"COMPANION_LANGUAGE_PREFSPATH": &cfg.Language.PrefsPath,
		"COMPANION_LOGGING_LEVEL":      &cfg.Logging.Level,
		"COMPANION_LOGGING_FORMAT":     &cfg.Logging.Format,
		"COMPANION_LOGGING_OUTPUT":     &cfg.Logging.Output,
	}
	for env, ptr := range strs {
		if val := os.Getenv(env); val != "" {
			*ptr = val
		}
	}

	ints := map[string]*int{
		"COMPANION_SPEECH_INTERVALSECONDS":   &cfg.Speech.IntervalSeconds,
		"COMPANION_SPEECH_STARTDELAYSECONDS": &cfg.Speech.StartDelaySeconds,
	}
	for env, ptr := range ints {
		if val := os.Getenv(env); val != "" {
			n, err := strconv.Atoi(val)
			if err != nil {
				slog.Warn("config: ignoring invalid integer override", "env", env, "value", val)
				continue
			}
			*ptr = n
		}
	}

	if val := os.Getenv("COMPANION_SPEECH_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Speech.Enabled = b
		} else {
			slog.Warn("config: ignoring invalid boolean override", "env", "COMPANION_SPEECH_ENABLED", "value", val)
		}
	}
}

// expandPaths expands a leading ~ in file paths.
func expandPaths(cfg *Config) {
	for _, p := range []*string{&cfg.Language.PrefsPath, &cfg.Messages.Source, &cfg.Logging.Output} {
		*p = expandHome(*p)
	}
	for i := range cfg.Models {
		cfg.Models[i].Source = expandHome(cfg.Models[i].Source)
	}
}

func expandHome(p string) string {
	if len(p) >= 2 && p[0] == '~' && p[1] == '/' {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
