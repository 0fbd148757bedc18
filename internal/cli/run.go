package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/coopco/companion/internal/bus"
	"github.com/coopco/companion/internal/config"
	"github.com/coopco/companion/internal/language"
	"github.com/coopco/companion/internal/logger"
	"github.com/coopco/companion/internal/messages"
	"github.com/coopco/companion/internal/prefs"
	"github.com/coopco/companion/internal/speaker"
)

type runOptions struct {
	configPath  string
	source      string
	muted       bool
	interactive bool
}

func NewRunCommand() *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the speaking loop",
		Long: `Load the message table for the preferred language and print a line every
interval until interrupted. With --interactive, stdin accepts "touch <region>",
"on", "off" and "switch".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.source != "" {
				cfg.Messages.Source = opts.source
			}
			if opts.muted {
				cfg.Speech.Enabled = false
			}
			if err := logger.Init(cfg.Logging); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var in io.Reader
			if opts.interactive {
				in = cmd.InOrStdin()
			}
			return runCompanion(ctx, cfg, in, cmd.OutOrStdout())
		},
	}

	addConfigFlags(cmd, &opts.configPath, &opts.source)
	cmd.Flags().BoolVar(&opts.muted, "muted", false, "Start with speaking disabled")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Read touch and toggle commands from stdin")

	return cmd
}

// runCompanion wires the bank, bus and speaker together and blocks until
// ctx is cancelled. Shown lines are written to out; when in is non-nil it
// is read for UI commands.
func runCompanion(ctx context.Context, cfg *config.Config, in io.Reader, out io.Writer) error {
	store := prefs.NewStore(cfg.Language.PrefsPath)
	preferred := language.Preferred(store, language.Platform())

	bank, err := loadBank(ctx, cfg, preferred)
	if err != nil {
		return err
	}

	characters := newRoster(cfg, bank.Schema, preferred)
	schema, err := characters.Schema(ctx)
	if err != nil {
		return err
	}

	b := bus.NewMessageBus(64)
	var outMu sync.Mutex
	b.Subscribe(bus.Show, func(u bus.Utterance) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(out, "[%s] %s\n", u.At.Format("15:04"), u.Text)
	})

	sp := speaker.New(speaker.Config{
		Bus:              b,
		Schema:           schema,
		Switcher:         characters,
		Interval:         cfg.Speech.Interval(),
		StartDelay:       cfg.Speech.StartDelay(),
		DatetimePriority: cfg.Speech.DatetimePriority,
		Muted:            !cfg.Speech.Enabled,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.DispatchUtterances(gctx)
		return nil
	})
	g.Go(func() error {
		err := sp.Serve(gctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), errors.Is(err, bus.ErrClosed):
			return nil
		}
		return err
	})
	if path, ok := localPath(cfg.Messages.Source); ok && cfg.Messages.Watch {
		g.Go(func() error {
			return messages.Watch(gctx, path, func(doc *messages.Document) {
				next, err := messages.NewBank(doc, preferred)
				if err != nil {
					slog.Warn("run: reloaded table rejected", "path", path, "error", err)
					return
				}
				merged, err := characters.SetCommon(gctx, next.Schema)
				if err != nil {
					slog.Warn("run: reloaded table rejected", "path", path, "error", err)
					return
				}
				sp.Replace(merged)
			})
		})
	}
	if in != nil {
		go readCommands(gctx, in, b)
	}

	_, model := characters.Current()
	slog.Info("run: starting", "language", bank.Language, "preferred", preferred, "model", model, "enabled", cfg.Speech.Enabled)
	sp.Start(gctx)

	err = g.Wait()
	sp.Stop()
	return err
}

// readCommands turns stdin lines into UI input events until in is
// exhausted or ctx is done.
func readCommands(ctx context.Context, in io.Reader, b *bus.MessageBus) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if ctx.Err() != nil {
			return
		}
		ev, ok := parseCommand(sc.Text())
		if !ok {
			slog.Warn("run: unknown command", "line", sc.Text())
			continue
		}
		if err := b.PublishInput(ctx, ev); err != nil {
			return
		}
	}
}

func parseCommand(line string) (bus.InputEvent, bool) {
	f := strings.Fields(line)
	switch {
	case len(f) == 2 && f[0] == "touch":
		return bus.InputEvent{Kind: bus.InputTouch, Region: f[1]}, true
	case len(f) == 1 && f[0] == "on":
		return bus.InputEvent{Kind: bus.InputToggle, Enabled: true}, true
	case len(f) == 1 && f[0] == "off":
		return bus.InputEvent{Kind: bus.InputToggle, Enabled: false}, true
	case len(f) == 1 && f[0] == "switch":
		return bus.InputEvent{Kind: bus.InputSwitch}, true
	}
	return bus.InputEvent{}, false
}
