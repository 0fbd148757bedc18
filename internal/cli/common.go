// Package cli holds the cobra commands behind the companion binary.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coopco/companion/internal/config"
	"github.com/coopco/companion/internal/messages"
	"github.com/coopco/companion/internal/roster"
)

// loadConfig reads path, or the default location when path is empty.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path == "" {
		cfg, err = config.Load()
	} else {
		cfg, err = config.LoadFromFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func addConfigFlags(cmd *cobra.Command, configPath, source *string) {
	cmd.Flags().StringVarP(configPath, "config", "c", "", "Config file (default ~/.companion/config.json)")
	cmd.Flags().StringVarP(source, "source", "s", "", "Message table file or URL, overriding the config")
}

// loadBank builds the bank from the configured source, falling back to the
// inline general lines when no source is set.
func loadBank(ctx context.Context, cfg *config.Config, preferred []string) (*messages.Bank, error) {
	if cfg.Messages.Source == "" && len(cfg.Messages.Inline) > 0 {
		return &messages.Bank{Schema: messages.FromLines(cfg.Messages.Inline)}, nil
	}
	return messages.LoadBank(ctx, cfg.Messages.Source, preferred)
}

// newRoster builds the character roster from cfg.Models around the common
// schema. Each character's table is resolved against the same preferred
// languages as the common one.
func newRoster(cfg *config.Config, common *messages.Schema, preferred []string) *roster.Roster {
	models := make([]roster.Model, len(cfg.Models))
	for i, m := range cfg.Models {
		models[i] = roster.Model{Name: m.Name, Source: m.Source, Inline: m.Inline}
	}
	return roster.New(common, models, func(ctx context.Context, m roster.Model) (*messages.Schema, error) {
		if m.Source == "" {
			return messages.FromLines(m.Inline), nil
		}
		bank, err := messages.LoadBank(ctx, m.Source, preferred)
		if err != nil {
			return nil, err
		}
		return bank.Schema, nil
	})
}

// localPath reports the filesystem path behind source, if it has one.
func localPath(source string) (string, bool) {
	switch {
	case source == "":
		return "", false
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		return "", false
	default:
		return strings.TrimPrefix(source, "file://"), true
	}
}
