package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/coopco/companion/internal/config"
	"github.com/coopco/companion/internal/language"
	"github.com/coopco/companion/internal/prefs"
)

func NewLangCommand() *cobra.Command {
	var configPath, source string
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Show or change the language override",
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ~/.companion/config.json)")

	storeFor := func() (*prefs.Store, *config.Config, error) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return nil, nil, err
		}
		return prefs.NewStore(cfg.Language.PrefsPath), cfg, nil
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the override and the platform languages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := storeFor()
			if err != nil {
				return err
			}
			override, ok, err := store.Get(language.StorageKey)
			if err != nil {
				return err
			}
			if !ok {
				override = "(none)"
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "override:  %s\n", override)
			fmt.Fprintf(out, "platform:  %s\n", strings.Join(language.Platform(), ", "))
			fmt.Fprintf(out, "preferred: %s\n", strings.Join(language.Preferred(store, language.Platform()), ", "))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <tag>",
		Short: `Persist a language override ("unset" clears it)`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := storeFor()
			if err != nil {
				return err
			}
			return setOverride(store, args[0])
		},
	}

	unset := &cobra.Command{
		Use:   "unset",
		Short: "Clear the language override",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := storeFor()
			if err != nil {
				return err
			}
			return setOverride(store, language.Unset)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the languages offered by the message table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := storeFor()
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Messages.Source = source
			}
			preferred := language.Preferred(store, language.Platform())
			bank, err := loadBank(cmd.Context(), cfg, preferred)
			if err != nil {
				return err
			}

			ui := language.UIStrings(firstOr(preferred, "en"))
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s:\n", ui.Language)
			for _, opt := range language.PickerOptions(bank.Keys) {
				mark := " "
				if opt == bank.Language {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %s\n", mark, opt)
			}
			return nil
		},
	}
	list.Flags().StringVarP(&source, "source", "s", "", "Message table file or URL, overriding the config")

	cmd.AddCommand(show, set, unset, list)
	return cmd
}

// setOverride stores tag as the language override; language.Unset removes it.
func setOverride(store *prefs.Store, tag string) error {
	if tag == language.Unset {
		return store.Remove(language.StorageKey)
	}
	return store.Set(language.StorageKey, tag)
}

func firstOr(tags []string, fallback string) string {
	if len(tags) > 0 && tags[0] != "" {
		return tags[0]
	}
	return fallback
}
