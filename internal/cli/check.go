package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/coopco/companion/internal/language"
	"github.com/coopco/companion/internal/messages"
	"github.com/coopco/companion/internal/prefs"
	"github.com/coopco/companion/internal/speaker"
	"github.com/coopco/companion/internal/timewindow"
)

type checkOptions struct {
	configPath string
	source     string
	lang       string
	at         string
	model      string
}

func NewCheckCommand() *cobra.Command {
	var opts checkOptions
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a message table and show what would be said",
		Long: `Parse the message table, resolve the preferred language and print the
loaded categories together with the candidates active at the given time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.source != "" {
				cfg.Messages.Source = opts.source
			}

			now := time.Now()
			if opts.at != "" {
				now, err = time.ParseInLocation("2006-01-02T15:04", opts.at, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --at %q (want YYYY-MM-DDTHH:MM): %w", opts.at, err)
				}
			}

			preferred := []string{opts.lang}
			if opts.lang == "" {
				preferred = language.Preferred(prefs.NewStore(cfg.Language.PrefsPath), language.Platform())
			}

			bank, err := loadBank(cmd.Context(), cfg, preferred)
			if err != nil {
				return err
			}
			if opts.model != "" {
				characters := newRoster(cfg, bank.Schema, preferred)
				i, ok := characters.Find(opts.model)
				if !ok {
					return fmt.Errorf("unknown model %q", opts.model)
				}
				merged, err := characters.Select(cmd.Context(), i)
				if err != nil {
					return err
				}
				bank = &messages.Bank{Language: bank.Language, Keys: bank.Keys, Schema: merged}
			}
			writeReport(cmd.OutOrStdout(), bank, preferred, now, cfg.Speech.DatetimePriority)
			return nil
		},
	}

	addConfigFlags(cmd, &opts.configPath, &opts.source)
	cmd.Flags().StringVarP(&opts.lang, "lang", "l", "", "Resolve this language instead of the preferred ones")
	cmd.Flags().StringVarP(&opts.model, "model", "m", "", "Merge in the lines of this configured character")
	cmd.Flags().StringVar(&opts.at, "at", "", "Evaluate datetime windows at this local time (YYYY-MM-DDTHH:MM)")

	return cmd
}

func writeReport(w io.Writer, bank *messages.Bank, preferred []string, now time.Time, priority float64) {
	resolved := bank.Language
	if resolved == "" {
		resolved = "(top level)"
	}
	fmt.Fprintf(w, "preferred: %s\n", strings.Join(preferred, ", "))
	fmt.Fprintf(w, "language:  %s\n", resolved)
	if opts := language.PickerOptions(bank.Keys); len(opts) > 0 {
		fmt.Fprintf(w, "available: %s\n", strings.Join(opts, ", "))
	}

	s := bank.Schema
	touches := 0
	for _, ls := range s.Touch {
		touches += len(ls)
	}
	fmt.Fprintf(w, "general:   %d\n", len(s.General))
	fmt.Fprintf(w, "datetime:  %d windows\n", len(s.Datetime))
	fmt.Fprintf(w, "touch:     %d lines in %d regions\n", touches, len(s.Touch))

	fmt.Fprintf(w, "\nat %s (%s):\n", now.Format("Mon 2006-01-02 15:04"), timewindow.FormatNow(now))
	for _, e := range s.Datetime {
		if e.Pattern.Match(now) {
			fmt.Fprintf(w, "  matches %q\n", e.Pattern.String())
		}
	}

	cands := speaker.New(speaker.Config{Schema: s, DatetimePriority: priority}).Candidates(now)
	if len(cands) == 0 {
		fmt.Fprintln(w, "  nothing to say")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range cands {
		fmt.Fprintf(tw, "  %g\t%s\t%s\n", c.Weight, c.Source, c.Text)
	}
	tw.Flush()
}
