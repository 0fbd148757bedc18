// Package language decides which language variant of a message bank to use.
package language

import "strings"

const (
	// Default is the table key used when no preferred language matches.
	Default = "default"
	// Version is the top-level table key that never names a language.
	Version = "version"
	// StorageKey is the preference key holding the user's language override.
	StorageKey = "companion-language"
	// Unset is the picker value that clears the override.
	Unset = "unset"
)

// Resolve picks the table key for the first preferred tag that matches.
//
// For each tag: an exact key wins; a bare tag ("ja") takes the first key
// that extends it ("ja-JP", "ja_JP"); a tag with a region ("ja-JP") falls
// back to its primary subtag ("ja"). If nothing matches, "default" is
// returned when present, otherwise "" (treat the table as language-less).
func Resolve(preferred, available []string) string {
	has := make(map[string]bool, len(available))
	for _, k := range available {
		has[k] = true
	}

	for _, tag := range preferred {
		if tag == "" {
			continue
		}
		if has[tag] {
			return tag
		}

		sep := strings.IndexAny(tag, "-_")
		if sep < 0 {
			for _, k := range available {
				if len(k) > len(tag)+1 && (strings.HasPrefix(k, tag+"-") || strings.HasPrefix(k, tag+"_")) {
					return k
				}
			}
			continue
		}
		if primary := tag[:sep]; primary != "" && has[primary] {
			return primary
		}
	}

	if has[Default] {
		return Default
	}
	return ""
}
