// Package tables holds the static lookup data used by the matchers: the
// artist alias table and the genre adjacency (affinity) table.
//
// Tables are immutable once loaded and are injected into the name matcher and
// the genre resolver. A structurally invalid table is a programmer error and
// fails at load time with ErrMalformedTable.
package tables

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/okian/gigmatch/internal/domain/identity"
)

//go:embed default_tables.yaml
var defaultTables []byte

var validate = validator.New(validator.WithRequiredStructEnabled())

// AliasEntry lists the known alternative names of one canonical artist name.
type AliasEntry struct {
	Name    string   `yaml:"name" validate:"required"`
	Aliases []string `yaml:"aliases" validate:"min=1,dive,required"`
}

// AffinityEntry lists genres related to Genre with an affinity strength.
type AffinityEntry struct {
	Genre    string   `yaml:"genre" validate:"required"`
	Related  []string `yaml:"related" validate:"min=1,dive,required"`
	Strength float64  `yaml:"strength" validate:"gt=0,lte=1"`
}

type document struct {
	Aliases  []AliasEntry    `yaml:"aliases" validate:"dive"`
	Affinity []AffinityEntry `yaml:"affinity" validate:"dive"`
}

// Tables bundles the alias and affinity tables.
type Tables struct {
	Aliases  *AliasTable
	Affinity *AffinityTable
}

// Default returns the tables embedded in the binary.
func Default() (*Tables, error) {
	return Load(bytes.NewReader(defaultTables))
}

// LoadFile reads tables from a YAML file.
func LoadFile(path string) (*Tables, error) {
	f, err := os.Open(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("open tables %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load decodes and validates a YAML tables document.
func Load(r io.Reader) (*Tables, error) {
	var doc document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}
	if err := validate.Struct(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTable, err)
	}
	aliases, err := NewAliasTable(doc.Aliases)
	if err != nil {
		return nil, err
	}
	affinity, err := NewAffinityTable(doc.Affinity)
	if err != nil {
		return nil, err
	}
	return &Tables{Aliases: aliases, Affinity: affinity}, nil
}

// AliasTable maps a normalized canonical name to its normalized aliases.
type AliasTable struct {
	entries map[string]map[string]struct{}
}

// NewAliasTable builds an alias table. Names and aliases are normalized; an
// entry that normalizes to nothing or a repeated canonical name is rejected.
func NewAliasTable(entries []AliasEntry) (*AliasTable, error) {
	t := &AliasTable{entries: make(map[string]map[string]struct{}, len(entries))}
	for _, e := range entries {
		name := identity.Normalize(e.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: alias entry %q normalizes to empty", ErrMalformedTable, e.Name)
		}
		if _, dup := t.entries[name]; dup {
			return nil, fmt.Errorf("%w: duplicate alias entry %q", ErrMalformedTable, name)
		}
		set := make(map[string]struct{}, len(e.Aliases))
		for _, a := range e.Aliases {
			na := identity.Normalize(a)
			if na == "" {
				return nil, fmt.Errorf("%w: alias %q of %q normalizes to empty", ErrMalformedTable, a, e.Name)
			}
			set[na] = struct{}{}
		}
		t.entries[name] = set
	}
	return t, nil
}

// Lists reports whether the alias set of canonical name contains alias. Both
// arguments must already be normalized.
func (t *AliasTable) Lists(name, alias string) bool {
	if t == nil {
		return false
	}
	set, ok := t.entries[name]
	if !ok {
		return false
	}
	_, ok = set[alias]
	return ok
}

// Len returns the number of canonical entries.
func (t *AliasTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// AffinityTable is the ordered genre adjacency table. Genres and related
// genres are stored lowercased.
type AffinityTable struct {
	entries []AffinityEntry
	index   map[string]int
}

// NewAffinityTable builds an affinity table, keeping entry order.
func NewAffinityTable(entries []AffinityEntry) (*AffinityTable, error) {
	t := &AffinityTable{
		entries: make([]AffinityEntry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		genre := foldGenre(e.Genre)
		if genre == "" {
			return nil, fmt.Errorf("%w: blank affinity genre", ErrMalformedTable)
		}
		if _, dup := t.index[genre]; dup {
			return nil, fmt.Errorf("%w: duplicate affinity genre %q", ErrMalformedTable, genre)
		}
		if e.Strength <= 0 || e.Strength > 1 {
			return nil, fmt.Errorf("%w: affinity strength %v for %q outside (0,1]", ErrMalformedTable, e.Strength, genre)
		}
		related := make([]string, 0, len(e.Related))
		for _, r := range e.Related {
			fr := foldGenre(r)
			if fr == "" {
				return nil, fmt.Errorf("%w: blank related genre for %q", ErrMalformedTable, genre)
			}
			related = append(related, fr)
		}
		t.index[genre] = len(t.entries)
		t.entries = append(t.entries, AffinityEntry{Genre: genre, Related: related, Strength: e.Strength})
	}
	return t, nil
}

// Lookup returns the entry for a genre, matched case-insensitively.
func (t *AffinityTable) Lookup(genre string) (AffinityEntry, bool) {
	if t == nil {
		return AffinityEntry{}, false
	}
	i, ok := t.index[foldGenre(genre)]
	if !ok {
		return AffinityEntry{}, false
	}
	return t.entries[i], true
}

// Entries returns a copy of the entries in table order.
func (t *AffinityTable) Entries() []AffinityEntry {
	if t == nil {
		return nil
	}
	out := make([]AffinityEntry, len(t.entries))
	for i, e := range t.entries {
		e.Related = append([]string(nil), e.Related...)
		out[i] = e
	}
	return out
}

func foldGenre(g string) string {
	return strings.ToLower(strings.TrimSpace(g))
}
