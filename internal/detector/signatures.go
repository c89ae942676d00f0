// Package detector classifies response bodies against SQL error signatures.
package detector

import (
	"bytes"
	"errors"
	"fmt"
)

// ErrNoSignatures is returned when a signature set would be empty.
var ErrNoSignatures = errors.New("detector: no signatures configured")

// Signature is a case-sensitive substring whose presence in a response body
// is taken as evidence of SQL error leakage.
type Signature struct {
	Pattern  string `yaml:"pattern" json:"pattern"`
	Category string `yaml:"category" json:"category"`
}

// DefaultSignatures returns the built-in set used when no file is configured.
func DefaultSignatures() []Signature {
	return []Signature{
		{Pattern: "SQL syntax", Category: "generic"},
		{Pattern: "SQL Error", Category: "generic"},
		{Pattern: "MySQL Error", Category: "mysql"},
		{Pattern: "syntax error", Category: "generic"},
	}
}

// Set is an immutable, ordered collection of signatures.
type Set struct {
	sigs     []Signature
	patterns [][]byte
}

// NewSet validates sigs and returns a Set. Every signature needs a
// non-empty pattern; an empty category becomes "generic".
func NewSet(sigs []Signature) (*Set, error) {
	if len(sigs) == 0 {
		return nil, ErrNoSignatures
	}
	s := &Set{
		sigs:     make([]Signature, len(sigs)),
		patterns: make([][]byte, len(sigs)),
	}
	for i, sig := range sigs {
		if sig.Pattern == "" {
			return nil, fmt.Errorf("detector: signature %d has an empty pattern", i)
		}
		if sig.Category == "" {
			sig.Category = "generic"
		}
		s.sigs[i] = sig
		s.patterns[i] = []byte(sig.Pattern)
	}
	return s, nil
}

// MustDefault returns the built-in Set.
func MustDefault() *Set {
	s, err := NewSet(DefaultSignatures())
	if err != nil {
		panic(err)
	}
	return s
}

// Match returns the first signature found in body.
func (s *Set) Match(body []byte) (Signature, bool) {
	for i, p := range s.patterns {
		if bytes.Contains(body, p) {
			return s.sigs[i], true
		}
	}
	return Signature{}, false
}

// Signatures returns a copy of the set's contents.
func (s *Set) Signatures() []Signature {
	out := make([]Signature, len(s.sigs))
	copy(out, s.sigs)
	return out
}

// Len returns the number of signatures.
func (s *Set) Len() int { return len(s.sigs) }
