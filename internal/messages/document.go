package messages

import (
	"fmt"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coopco/companion/internal/language"
)

// Category is one of the three kinds of lines a section can hold.
type Category uint8

const (
	General Category = 1 << iota
	Datetime
	Touch
)

func (c Category) String() string {
	switch c {
	case General:
		return "general"
	case Datetime:
		return "datetime"
	case Touch:
		return "touch"
	}
	return fmt.Sprintf("Category(%d)", uint8(c))
}

func categoryOf(key string) (Category, bool) {
	switch key {
	case "general":
		return General, true
	case "datetime":
		return Datetime, true
	case "touch":
		return Touch, true
	}
	return 0, false
}

// rawEntry is a key with its lines, in document order. For datetime the
// key is the window, for touch it is the hit region.
type rawEntry struct {
	Key   string
	Lines []string
}

// Section is the category content found under one language key (or at the
// top level). A category can be present but empty, which still stops the
// fallback chain from filling it.
type Section struct {
	present  Category
	general  []string
	datetime []rawEntry
	touch    []rawEntry
}

// Has reports whether the section defines category c.
func (s Section) Has(c Category) bool { return s.present&c != 0 }

// fill copies the categories of src that s does not have yet.
func (s *Section) fill(src Section) {
	if !s.Has(General) && src.Has(General) {
		s.general = src.general
		s.present |= General
	}
	if !s.Has(Datetime) && src.Has(Datetime) {
		s.datetime = src.datetime
		s.present |= Datetime
	}
	if !s.Has(Touch) && src.Has(Touch) {
		s.touch = src.touch
		s.present |= Touch
	}
}

// Document is a parsed message table: top-level language keys, an optional
// version, and categories that may also sit directly at the top level.
type Document struct {
	Version string
	// Keys lists every top-level key in document order.
	Keys []string

	root  Section
	langs map[string]Section
}

// Languages returns the keys that can be resolved as languages, in
// document order.
func (d *Document) Languages() []string {
	out := make([]string, 0, len(d.Keys))
	for _, k := range d.Keys {
		if _, ok := d.langs[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// Section returns the section for a language key; "" selects the top level.
func (d *Document) Section(key string) (Section, bool) {
	if key == "" {
		return d.root, true
	}
	s, ok := d.langs[key]
	return s, ok
}

// Parse reads a YAML message table. Anchors, aliases and "<<" merge keys
// are honored and key order is kept.
func Parse(data []byte) (*Document, error) {
	doc := &Document{langs: make(map[string]Section)}

	var n yaml.Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse message document: %w", err)
	}
	if n.Kind == 0 || len(n.Content) == 0 {
		return doc, nil
	}
	top := resolve(n.Content[0])
	if top.Kind == yaml.ScalarNode && top.Tag == "!!null" {
		return doc, nil
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("message document must be a mapping, got %s", kindName(top))
	}

	pairs, err := mappingPairs(top)
	if err != nil {
		return nil, err
	}
	for _, p := range pairs {
		doc.Keys = append(doc.Keys, p.key)

		if p.key == language.Version {
			doc.Version = p.value.Value
			continue
		}
		if c, ok := categoryOf(p.key); ok {
			if err := doc.root.set(c, p.value); err != nil {
				return nil, err
			}
			continue
		}

		sec, err := parseSection(p.key, p.value)
		if err != nil {
			return nil, err
		}
		doc.langs[p.key] = sec
	}
	return doc, nil
}

func parseSection(lang string, n *yaml.Node) (Section, error) {
	var sec Section
	if n.Kind != yaml.MappingNode {
		// A language key with no categories contributes nothing.
		return sec, nil
	}
	pairs, err := mappingPairs(n)
	if err != nil {
		return sec, err
	}
	for _, p := range pairs {
		c, ok := categoryOf(p.key)
		if !ok {
			continue
		}
		if err := sec.set(c, p.value); err != nil {
			return sec, fmt.Errorf("language %q: %w", lang, err)
		}
	}
	return sec, nil
}

func (s *Section) set(c Category, n *yaml.Node) error {
	var err error
	switch c {
	case General:
		s.general, err = lines(n)
	case Datetime:
		s.datetime, err = entries(n)
	case Touch:
		s.touch, err = entries(n)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", c, err)
	}
	s.present |= c
	return nil
}

// lines normalizes a string or a list of strings into trimmed lines.
func lines(n *yaml.Node) ([]string, error) {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return []string{}, nil
		}
		return []string{strings.TrimSpace(n.Value)}, nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(n.Content))
		for _, item := range n.Content {
			item = resolve(item)
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d:%d: expected a string, got %s", item.Line, item.Column, kindName(item))
			}
			if item.Tag == "!!null" {
				continue
			}
			out = append(out, strings.TrimSpace(item.Value))
		}
		return out, nil
	}
	return nil, fmt.Errorf("line %d:%d: expected a string or a list, got %s", n.Line, n.Column, kindName(n))
}

// entries reads a mapping of key -> string or list.
func entries(n *yaml.Node) ([]rawEntry, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return []rawEntry{}, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d:%d: expected a mapping, got %s", n.Line, n.Column, kindName(n))
	}
	pairs, err := mappingPairs(n)
	if err != nil {
		return nil, err
	}
	out := make([]rawEntry, 0, len(pairs))
	for _, p := range pairs {
		ls, err := lines(p.value)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p.key, err)
		}
		out = append(out, rawEntry{Key: p.key, Lines: ls})
	}
	return out, nil
}

type pair struct {
	key   string
	value *yaml.Node
}

// mappingPairs flattens a mapping node, following aliases and expanding
// merge keys. Explicit keys win over merged ones.
func mappingPairs(n *yaml.Node) ([]pair, error) {
	explicit := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		if k := resolve(n.Content[i]); !isMerge(k) {
			explicit[k.Value] = true
		}
	}

	var out []pair
	seen := make(map[string]bool)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := resolve(n.Content[i]), resolve(n.Content[i+1])
		if !isMerge(k) {
			if !seen[k.Value] {
				seen[k.Value] = true
				out = append(out, pair{key: k.Value, value: v})
			}
			continue
		}

		sources := []*yaml.Node{v}
		if v.Kind == yaml.SequenceNode {
			sources = v.Content
		}
		for _, src := range sources {
			src = resolve(src)
			if src.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("line %d:%d: merge value must be a mapping", src.Line, src.Column)
			}
			merged, err := mappingPairs(src)
			if err != nil {
				return nil, err
			}
			for _, p := range merged {
				if explicit[p.key] || seen[p.key] {
					continue
				}
				seen[p.key] = true
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func isMerge(k *yaml.Node) bool {
	return k.Kind == yaml.ScalarNode && (k.Tag == "!!merge" || (k.Value == "<<" && k.Style == 0))
}

func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar " + strings.TrimPrefix(n.Tag, "!!")
	case yaml.AliasNode:
		return "alias"
	}
	return "unknown"
}

// sortedKeys is used for stable log output.
func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
