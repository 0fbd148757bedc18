package config

import "time"

// Config is the top-level configuration
type Config struct {
	Messages MessagesConfig `json:"messages" toml:"messages" yaml:"messages"`
	Models   []ModelConfig  `json:"models" toml:"models" yaml:"models"`
	Speech   SpeechConfig   `json:"speech" toml:"speech" yaml:"speech"`
	Language LanguageConfig `json:"language" toml:"language" yaml:"language"`
	Logging  LoggingConfig  `json:"logging" toml:"logging" yaml:"logging"`
}

// MessagesConfig says where the character's lines come from.
// Source (a YAML file path or URL) wins over Inline when both are set.
type MessagesConfig struct {
	Source string   `json:"source" toml:"source" yaml:"source"`
	Inline []string `json:"inline" toml:"inline" yaml:"inline"`
	Watch  bool     `json:"watch" toml:"watch" yaml:"watch"`
}

// ModelConfig is one switchable character. Its lines are merged with the
// common ones from Messages; Source wins over Inline as it does there.
type ModelConfig struct {
	Name   string   `json:"name" toml:"name" yaml:"name"`
	Source string   `json:"source" toml:"source" yaml:"source"`
	Inline []string `json:"inline" toml:"inline" yaml:"inline"`
}

type SpeechConfig struct {
	Enabled           bool    `json:"enabled" toml:"enabled" yaml:"enabled"`
	IntervalSeconds   int     `json:"intervalSeconds" toml:"intervalSeconds" yaml:"intervalSeconds"`
	StartDelaySeconds int     `json:"startDelaySeconds" toml:"startDelaySeconds" yaml:"startDelaySeconds"`
	DatetimePriority  float64 `json:"datetimePriority" toml:"datetimePriority" yaml:"datetimePriority"`
}

// Interval returns the tick interval as a duration.
func (s SpeechConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// StartDelay returns the delay before the first line.
func (s SpeechConfig) StartDelay() time.Duration {
	return time.Duration(s.StartDelaySeconds) * time.Second
}

type LanguageConfig struct {
	// PrefsPath is the file holding the persisted language override.
	PrefsPath string `json:"prefsPath" toml:"prefsPath" yaml:"prefsPath"`
}

type LoggingConfig struct {
	Level  string `json:"level" toml:"level" yaml:"level"`    // debug, info, warn, error
	Format string `json:"format" toml:"format" yaml:"format"` // text or json
	Output string `json:"output" toml:"output" yaml:"output"` // stdout, stderr or a file path
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Speech: SpeechConfig{
			Enabled:           true,
			IntervalSeconds:   10,
			StartDelaySeconds: 3,
			DatetimePriority:  2,
		},
		Language: LanguageConfig{
			PrefsPath: "~/.companion/prefs.json",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}
