// Package mapping decides whether an input is a mapping document: a file
// carrying exactly the columns needed to reproduce identifiers and nothing
// else.
package mapping

import (
	"maps"
	"slices"

	"github.com/roach88/commonid/internal/config"
	"github.com/roach88/commonid/internal/document"
)

// Set is a set of column aliases.
type Set map[string]struct{}

// NewSet builds a set from aliases.
func NewSet(aliases ...string) Set {
	s := make(Set, len(aliases))
	for _, a := range aliases {
		s[a] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set) Has(alias string) bool {
	_, ok := s[alias]
	return ok
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []string {
	return slices.Sorted(maps.Keys(s))
}

// Equal reports set equality.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for k := range s {
		if !other.Has(k) {
			return false
		}
	}
	return true
}

// RequiredColumns is every algorithm alias plus every alias that appears in
// both the source map and the mapping destination map.
func RequiredColumns(cols config.AlgorithmColumns, source, mappingDestination config.ColumnMap) Set {
	req := NewSet(cols.All()...)
	for _, alias := range source.Aliases() {
		if mappingDestination.Has(alias) {
			req[alias] = struct{}{}
		}
	}
	return req
}

// IsMappingOnly reports whether the first row's columns are exactly the
// required set. An empty document is never a mapping document.
func IsMappingOnly(doc document.Document, required Set) bool {
	if len(doc.Rows) == 0 {
		return false
	}
	return NewSet(doc.Rows[0].Keys()...).Equal(required)
}
