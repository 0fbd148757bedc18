package language

import (
	"log/slog"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// OverrideReader is the read side of the persisted preference store.
type OverrideReader interface {
	Get(key string) (string, bool, error)
}

// Preferred returns the ordered language tags to resolve against: the
// persisted override alone when one is set, otherwise the platform tags.
func Preferred(store OverrideReader, platform []string) []string {
	if store != nil {
		v, ok, err := store.Get(StorageKey)
		if err != nil {
			slog.Warn("language: failed to read override, using platform languages", "error", err)
		} else if ok && v != "" {
			return []string{v}
		}
	}
	out := make([]string, len(platform))
	copy(out, platform)
	return out
}

// Platform reads the locale environment (LANGUAGE, LC_ALL, LC_MESSAGES,
// LANG) in priority order and returns canonical BCP 47 tags.
func Platform() []string {
	return platformFrom(os.Getenv)
}

func platformFrom(getenv func(string) string) []string {
	var raw []string
	if v := getenv("LANGUAGE"); v != "" {
		raw = append(raw, strings.Split(v, ":")...)
	}
	for _, name := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := getenv(name); v != "" {
			raw = append(raw, v)
		}
	}

	seen := make(map[string]bool)
	var tags []string
	for _, r := range raw {
		tag, ok := canonical(r)
		if !ok || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// canonical turns a POSIX locale such as "ja_JP.UTF-8" into "ja-JP".
func canonical(locale string) (string, bool) {
	if i := strings.IndexAny(locale, ".@"); i >= 0 {
		locale = locale[:i]
	}
	if locale == "" || locale == "C" || locale == "POSIX" {
		return "", false
	}
	tag, err := language.Parse(locale)
	if err != nil {
		slog.Debug("language: ignoring unparsable locale", "locale", locale, "error", err)
		return "", false
	}
	return tag.String(), true
}
