// Package roster keeps the list of switchable characters and the merged
// message schema of the one currently shown.
package roster

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/coopco/companion/internal/messages"
)

// Model is one switchable character.
type Model struct {
	Name   string
	Source string
	Inline []string
}

// Loader builds the per-character schema for m, already narrowed to the
// preferred language.
type Loader func(ctx context.Context, m Model) (*messages.Schema, error)

// Roster cycles through models in order. Each character's own schema is
// loaded once and cached; the merge with the common schema is redone on
// every switch or common reload.
type Roster struct {
	models []Model
	load   Loader

	mu      sync.Mutex
	common  *messages.Schema
	current int
	cache   map[int]*messages.Schema
}

func New(common *messages.Schema, models []Model, load Loader) *Roster {
	return &Roster{
		models: append([]Model(nil), models...),
		load:   load,
		common: common,
		cache:  make(map[int]*messages.Schema),
	}
}

// Len returns the number of configured characters.
func (r *Roster) Len() int { return len(r.models) }

// Current returns the index and name of the current character. With no
// characters configured it returns -1 and "".
func (r *Roster) Current() (int, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.models) == 0 {
		return -1, ""
	}
	return r.current, r.models[r.current].Name
}

// Find returns the index of the character named name.
func (r *Roster) Find(name string) (int, bool) {
	for i, m := range r.models {
		if m.Name == name {
			return i, true
		}
	}
	return -1, false
}

// Schema returns the common schema merged with the current character's.
func (r *Roster) Schema(ctx context.Context) (*messages.Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mergedLocked(ctx, r.current)
}

// Select makes model i current and returns its merged schema. On a load
// error the current character is kept.
func (r *Roster) Select(ctx context.Context, i int) (*messages.Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.models) {
		return nil, fmt.Errorf("model index %d out of range (have %d)", i, len(r.models))
	}
	s, err := r.mergedLocked(ctx, i)
	if err != nil {
		return nil, err
	}
	r.current = i
	return s, nil
}

// Next advances to the following character, wrapping around, and returns
// its merged schema. It reports false without changing anything when
// there is nothing to switch to.
func (r *Roster) Next(ctx context.Context) (*messages.Schema, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.models) <= 1 {
		return nil, false, nil
	}
	next := (r.current + 1) % len(r.models)
	s, err := r.mergedLocked(ctx, next)
	if err != nil {
		return nil, false, err
	}
	r.current = next
	slog.Info("roster: switched", "model", r.models[next].Name)
	return s, true, nil
}

// SetCommon replaces the common schema, e.g. after a reload, and returns
// the new merged schema for the current character.
func (r *Roster) SetCommon(ctx context.Context, common *messages.Schema) (*messages.Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.common = common
	return r.mergedLocked(ctx, r.current)
}

// mergedLocked merges the common schema with model i. Caller must hold r.mu.
func (r *Roster) mergedLocked(ctx context.Context, i int) (*messages.Schema, error) {
	if len(r.models) == 0 {
		return messages.Merge(r.common, nil), nil
	}
	own, ok := r.cache[i]
	if !ok {
		var err error
		own, err = r.load(ctx, r.models[i])
		if err != nil {
			return nil, fmt.Errorf("failed to load messages for model %q: %w", r.models[i].Name, err)
		}
		r.cache[i] = own
	}
	return messages.Merge(r.common, own), nil
}
