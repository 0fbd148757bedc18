// Package messages loads the lines a character speaks: a YAML table keyed
// by language, narrowed to one language with fallback through "default"
// and the top level.
package messages

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/coopco/companion/internal/language"
	"github.com/coopco/companion/internal/timewindow"
)

// DatetimeEntry is a compiled window and the lines it unlocks.
type DatetimeEntry struct {
	Pattern  *timewindow.Pattern
	Messages []string
}

// Schema is the resolved, immutable message set for one language.
type Schema struct {
	General  []string
	Datetime []DatetimeEntry
	Touch    map[string][]string
}

// Empty returns a schema with no lines.
func Empty() *Schema {
	return &Schema{General: []string{}, Datetime: []DatetimeEntry{}, Touch: map[string][]string{}}
}

// FromLines builds a schema from an inline list of general lines.
func FromLines(ls []string) *Schema {
	s := Empty()
	for _, l := range ls {
		s.General = append(s.General, strings.TrimSpace(l))
	}
	return s
}

// Merge combines the lines shared by every character with those of one
// character. General and datetime lines are concatenated, common first.
// Touch regions are merged by name and a region the character defines
// replaces the common one. Either argument may be nil.
func Merge(common, perModel *Schema) *Schema {
	out := Empty()
	for _, s := range []*Schema{common, perModel} {
		if s == nil {
			continue
		}
		out.General = append(out.General, s.General...)
		out.Datetime = append(out.Datetime, s.Datetime...)
		for region, ls := range s.Touch {
			out.Touch[region] = ls
		}
	}
	return out
}

// Active returns the datetime lines whose window contains now, flattened
// in document order.
func (s *Schema) Active(now time.Time) []string {
	formatted := timewindow.FormatNow(now)
	var out []string
	for _, e := range s.Datetime {
		if e.Pattern.MatchString(formatted) {
			out = append(out, e.Messages...)
		}
	}
	return out
}

// Load narrows doc to the language key, filling missing categories from
// "default" and then the top level. An empty key reads the top level only.
// The first invalid datetime window aborts the load.
func Load(doc *Document, key string) (*Schema, error) {
	var acc Section
	fillFrom(doc, key, &acc)

	s := Empty()
	s.General = append(s.General, acc.general...)
	for _, e := range acc.touch {
		s.Touch[e.Key] = append([]string{}, e.Lines...)
	}
	for _, e := range acc.datetime {
		p, err := timewindow.Compile(e.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to load datetime messages: %w", err)
		}
		s.Datetime = append(s.Datetime, DatetimeEntry{Pattern: p, Messages: append([]string{}, e.Lines...)})
	}

	slog.Debug("messages: loaded", "language", key,
		"general", len(s.General), "datetime", len(s.Datetime), "touch", sortedKeys(s.Touch))
	return s, nil
}

// fillFrom walks key -> "default" -> top level, at most two hops.
func fillFrom(doc *Document, key string, acc *Section) {
	if sec, ok := doc.Section(key); ok {
		acc.fill(sec)
	}
	switch key {
	case "":
		return
	case language.Default:
		fillFrom(doc, "", acc)
	default:
		fillFrom(doc, language.Default, acc)
	}
}

// Bank is a loaded schema together with what it was resolved from.
type Bank struct {
	// Language is the resolved table key; "" means the table is language-less.
	Language string
	// Keys are the raw top-level keys, used to build the language picker.
	Keys   []string
	Schema *Schema
}

// NewBank resolves the preferred languages against doc and loads the schema.
func NewBank(doc *Document, preferred []string) (*Bank, error) {
	key := language.Resolve(preferred, doc.Languages())
	schema, err := Load(doc, key)
	if err != nil {
		return nil, err
	}
	return &Bank{Language: key, Keys: append([]string{}, doc.Keys...), Schema: schema}, nil
}

// LoadBank fetches, parses and resolves the table at source. An empty
// source yields an empty bank.
func LoadBank(ctx context.Context, source string, preferred []string) (*Bank, error) {
	if source == "" {
		return &Bank{Schema: Empty()}, nil
	}
	data, err := Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	bank, err := NewBank(doc, preferred)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	slog.Info("messages: bank ready", "source", source, "language", bank.Language, "preferred", preferred)
	return bank, nil
}
