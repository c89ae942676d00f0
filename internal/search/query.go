// Package search builds paginated search-engine queries from dorks and
// fetches their result pages.
package search

import (
	"strconv"
	"strings"
)

// DefaultBase is the search endpoint the dork is appended to.
const DefaultBase = "https://www.google.com/search?q="

// PageSize is the number of results the engine returns per page; the
// pagination offset is page*PageSize.
const PageSize = 10

// Query is one concrete search request for a (dork, page) pair.
type Query struct {
	Dork   string
	Page   int
	Offset int
	URL    string
}

// QueryBuilder turns dorks into query URLs. It performs no validation or
// encoding of the dork.
type QueryBuilder struct {
	// Base is the endpoint prefix, e.g. DefaultBase.
	Base string

	// SpaceToPlus replaces every space in the dork with '+' before
	// substitution. Only the hunt mode sets it.
	SpaceToPlus bool
}

// Build returns the query for dork at the 0-based page index.
func (b QueryBuilder) Build(dork string, page int) Query {
	base := b.Base
	if base == "" {
		base = DefaultBase
	}
	d := dork
	if b.SpaceToPlus {
		d = strings.ReplaceAll(d, " ", "+")
	}
	offset := page * PageSize
	return Query{
		Dork:   dork,
		Page:   page,
		Offset: offset,
		URL:    base + d + "&start=" + strconv.Itoa(offset),
	}
}

// Pages returns the queries for pages 0..n-1 of dork.
func (b QueryBuilder) Pages(dork string, n int) []Query {
	if n <= 0 {
		return nil
	}
	out := make([]Query, 0, n)
	for page := 0; page < n; page++ {
		out = append(out, b.Build(dork, page))
	}
	return out
}

// All returns the queries for every dork, dork-major, in input order.
func (b QueryBuilder) All(dorks []string, n int) []Query {
	var out []Query
	for _, d := range dorks {
		out = append(out, b.Pages(d, n)...)
	}
	return out
}
