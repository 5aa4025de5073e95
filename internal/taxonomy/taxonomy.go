// Package taxonomy holds the fixed subgenre -> main genre mapping and its
// inverse. A Taxonomy is immutable once built and safe for concurrent reads.
package taxonomy

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateSubgenre = errors.New("duplicate subgenre")
	ErrEmptyName         = errors.New("empty genre or subgenre name")
	ErrUnknownLabel      = errors.New("seed label is not a known subgenre")
)

// Entry is one forward mapping row.
type Entry struct {
	Subgenre  string
	MainGenre string
}

// Taxonomy maps every subgenre to exactly one main genre.
type Taxonomy struct {
	entries  []Entry
	forward  map[string]string
	byMain   map[string][]string
	mainList []string
}

// New builds a Taxonomy from forward entries. Declaration order is kept for
// both the subgenre lists and the main genre list.
func New(entries []Entry) (*Taxonomy, error) {
	t := &Taxonomy{
		entries: make([]Entry, 0, len(entries)),
		forward: make(map[string]string, len(entries)),
		byMain:  make(map[string][]string),
	}

	for _, e := range entries {
		sub := strings.TrimSpace(e.Subgenre)
		main := strings.TrimSpace(e.MainGenre)
		if sub == "" || main == "" {
			return nil, fmt.Errorf("taxonomy entry %q -> %q: %w", e.Subgenre, e.MainGenre, ErrEmptyName)
		}
		if prev, dup := t.forward[sub]; dup {
			return nil, fmt.Errorf("subgenre %q under %q and %q: %w", sub, prev, main, ErrDuplicateSubgenre)
		}
		t.forward[sub] = main
		t.entries = append(t.entries, Entry{Subgenre: sub, MainGenre: main})
	}

	// Inverse: one visit per forward entry.
	for _, e := range t.entries {
		if _, seen := t.byMain[e.MainGenre]; !seen {
			t.mainList = append(t.mainList, e.MainGenre)
		}
		t.byMain[e.MainGenre] = append(t.byMain[e.MainGenre], e.Subgenre)
	}

	return t, nil
}

// MainGenre returns the main genre a subgenre belongs to.
func (t *Taxonomy) MainGenre(subgenre string) (string, bool) {
	main, ok := t.forward[subgenre]
	return main, ok
}

// Subgenres returns the subgenres of a main genre in declaration order.
// Unknown genres yield an empty slice. The result is a copy.
func (t *Taxonomy) Subgenres(mainGenre string) []string {
	subs := t.byMain[mainGenre]
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

// Contains reports whether subgenre is part of the taxonomy.
func (t *Taxonomy) Contains(subgenre string) bool {
	_, ok := t.forward[subgenre]
	return ok
}

// HasMainGenre reports whether at least one subgenre is registered under mainGenre.
func (t *Taxonomy) HasMainGenre(mainGenre string) bool {
	return len(t.byMain[mainGenre]) > 0
}

// MainGenres lists main genres in first-seen order.
func (t *Taxonomy) MainGenres() []string {
	out := make([]string, len(t.mainList))
	copy(out, t.mainList)
	return out
}

// Entries returns the forward mapping in declaration order.
func (t *Taxonomy) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Inverse returns a fresh main genre -> subgenres map.
func (t *Taxonomy) Inverse() map[string][]string {
	out := make(map[string][]string, len(t.byMain))
	for main, subs := range t.byMain {
		cp := make([]string, len(subs))
		copy(cp, subs)
		out[main] = cp
	}
	return out
}

// Len is the number of subgenres.
func (t *Taxonomy) Len() int {
	return len(t.entries)
}
