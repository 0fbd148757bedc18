// Package logger configures the process-wide slog default.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"

	"github.com/coopco/companion/internal/config"
)

var level = new(slog.LevelVar)

// Init installs a slog default built from cfg. Text output goes through
// tint and is coloured only when writing to a terminal.
func Init(cfg config.LoggingConfig) error {
	w, err := openOutput(cfg.Output)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(NewHandler(w, cfg)))
	return nil
}

// NewHandler builds the handler Init would install, writing to w.
func NewHandler(w io.Writer, cfg config.LoggingConfig) slog.Handler {
	level.Set(ParseLevel(cfg.Level))

	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	}
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.DateTime,
		NoColor:    !isTerminal(w),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" && a.Value.Kind() == slog.KindAny {
				if err, ok := a.Value.Any().(error); ok {
					return tint.Err(err)
				}
			}
			return a
		},
	})
}

// ParseLevel maps a config level name to a slog level. Unknown names are info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetLevel changes the level of handlers created by Init.
func SetLevel(l slog.Level) {
	level.Set(l)
}

func openOutput(output string) (io.Writer, error) {
	switch strings.ToLower(output) {
	case "stderr", "":
		return os.Stderr, nil
	case "stdout":
		return os.Stdout, nil
	default:
		return os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
