package ontology

import (
	"fmt"
	"strings"

	"github.com/cognicore/travelcorpus/pkg/travelcorpus/internalerr"
)

// Entry is one semantic bucket of the ontology.
type Entry struct {
	Tag   string
	Terms []string
}

// Ontology maps tags to keyword/phrase lists. It is read-only once built;
// every accessor hands out copies.
type Ontology struct {
	entries []Entry
	index   map[string]int
}

// New builds an ontology from entries. Tags must be unique. Terms are
// lower-cased and deduplicated within a tag, keeping first occurrence order.
func New(entries []Entry) (*Ontology, error) {
	o := &Ontology{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		tag := strings.TrimSpace(e.Tag)
		if tag == "" {
			return nil, fmt.Errorf("%w: empty ontology tag", internalerr.ErrInvalidInput)
		}
		if _, dup := o.index[tag]; dup {
			return nil, fmt.Errorf("%w: duplicate ontology tag %q", internalerr.ErrInvalidInput, tag)
		}
		seen := make(map[string]struct{}, len(e.Terms))
		terms := make([]string, 0, len(e.Terms))
		for _, term := range e.Terms {
			norm := strings.ToLower(strings.TrimSpace(term))
			if norm == "" {
				continue
			}
			if _, ok := seen[norm]; ok {
				continue
			}
			seen[norm] = struct{}{}
			terms = append(terms, norm)
		}
		o.index[tag] = len(o.entries)
		o.entries = append(o.entries, Entry{Tag: tag, Terms: terms})
	}
	return o, nil
}

// MustNew is New for static tables known to be valid.
func MustNew(entries []Entry) *Ontology {
	o, err := New(entries)
	if err != nil {
		panic(err)
	}
	return o
}

// Tags returns tag names in declaration order.
func (o *Ontology) Tags() []string {
	tags := make([]string, len(o.entries))
	for i, e := range o.entries {
		tags[i] = e.Tag
	}
	return tags
}

// Terms returns the terms of a tag.
func (o *Ontology) Terms(tag string) ([]string, bool) {
	idx, ok := o.index[tag]
	if !ok {
		return nil, false
	}
	return append([]string(nil), o.entries[idx].Terms...), true
}

// Entries returns a copy of all entries.
func (o *Ontology) Entries() []Entry {
	out := make([]Entry, len(o.entries))
	for i, e := range o.entries {
		out[i] = Entry{Tag: e.Tag, Terms: append([]string(nil), e.Terms...)}
	}
	return out
}

// AllTerms returns every term of every tag, flattened in declaration order.
func (o *Ontology) AllTerms() []string {
	var out []string
	for _, e := range o.entries {
		out = append(out, e.Terms...)
	}
	return out
}

// Len returns the number of tags.
func (o *Ontology) Len() int { return len(o.entries) }
