// Package extract pulls candidate target URLs out of search result pages.
package extract

import (
	"fmt"
	"strings"
)

// RedirectPrefix is the search engine's internal redirect wrapper. Only
// hrefs starting with it carry a candidate.
const RedirectPrefix = "/url?q="

// DefaultSelfDomain marks links that point back at the search engine.
const DefaultSelfDomain = "google.com"

// Emitter receives each candidate as soon as it is found. A returned error
// stops extraction of the current page and is returned to the caller.
type Emitter func(link string) error

// Source parses one result page body into candidate links.
type Source interface {
	// Name identifies the page format.
	Name() string

	// Extract calls emit once per candidate, in document order.
	Extract(body []byte, emit Emitter) error
}

// New returns the Source registered under name. An empty selfDomain uses
// DefaultSelfDomain.
func New(name, selfDomain string) (Source, error) {
	if selfDomain == "" {
		selfDomain = DefaultSelfDomain
	}
	switch strings.ToLower(name) {
	case "", "regex":
		return NewRegexSource(selfDomain), nil
	case "html":
		return NewHTMLSource(selfDomain), nil
	default:
		return nil, fmt.Errorf("unsupported link source: %q", name)
	}
}

// Destination unwraps a redirect href. It reports false for hrefs that are
// not redirect-wrapped or whose decoded target contains selfDomain.
func Destination(href, selfDomain string) (string, bool) {
	if !strings.HasPrefix(href, RedirectPrefix) {
		return "", false
	}
	raw := href[len(RedirectPrefix):]
	if i := strings.IndexByte(raw, '&'); i >= 0 {
		raw = raw[:i]
	}
	link := PercentDecode(raw)
	if selfDomain != "" && strings.Contains(link, selfDomain) {
		return "", false
	}
	return link, true
}

// Dedup wraps emit so that each distinct link is passed on only once.
func Dedup(emit Emitter) Emitter {
	seen := make(map[string]struct{})
	return func(link string) error {
		if _, ok := seen[link]; ok {
			return nil
		}
		seen[link] = struct{}{}
		return emit(link)
	}
}
