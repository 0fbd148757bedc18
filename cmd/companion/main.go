package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coopco/companion/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "companion",
		Short: "Companion - a desktop character that talks",
		Long: `Companion shows short lines from a localized message table, picking
time-of-day greetings over general chatter when their window is open.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		cli.NewRunCommand(),
		cli.NewCheckCommand(),
		cli.NewLangCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
