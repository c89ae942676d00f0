// Package scope holds the set of hosts the operator is authorized to probe.
package scope

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// ErrEmpty is returned when a probe phase starts with no authorized targets.
var ErrEmpty = errors.New("scope: no authorized targets configured (use --scope or --scope-file)")

// Scope matches URLs against exact hosts, "*.domain" wildcards and IP
// networks. The zero value allows nothing.
type Scope struct {
	hosts    map[string]struct{}
	suffixes []string
	nets     []*net.IPNet
	entries  []string
}

// Parse builds a Scope from entries such as "shop.example", "*.example.test",
// "127.0.0.1" or "10.0.0.0/8". Blank entries and '#' comments are ignored.
func Parse(entries []string) (*Scope, error) {
	s := &Scope{hosts: make(map[string]struct{})}
	for _, raw := range entries {
		e := strings.ToLower(strings.TrimSpace(raw))
		if e == "" || strings.HasPrefix(e, "#") {
			continue
		}
		switch {
		case strings.Contains(e, "/"):
			_, n, err := net.ParseCIDR(e)
			if err != nil {
				return nil, fmt.Errorf("scope: invalid network %q: %w", raw, err)
			}
			s.nets = append(s.nets, n)
		case strings.HasPrefix(e, "*."):
			suffix := e[1:]
			if len(suffix) < 2 {
				return nil, fmt.Errorf("scope: invalid wildcard %q", raw)
			}
			s.suffixes = append(s.suffixes, suffix)
		default:
			if strings.ContainsAny(e, "*:") && net.ParseIP(e) == nil {
				return nil, fmt.Errorf("scope: invalid host %q", raw)
			}
			s.hosts[e] = struct{}{}
		}
		s.entries = append(s.entries, e)
	}
	return s, nil
}

// ReadEntries reads one scope entry per line.
func ReadEntries(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scope: read entries: %w", err)
	}
	return out, nil
}

// Empty reports whether no target is authorized.
func (s *Scope) Empty() bool {
	return s == nil || len(s.entries) == 0
}

// Entries returns the normalized entries.
func (s *Scope) Entries() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Allows reports whether rawURL is an http(s) URL whose host is in scope.
func (s *Scope) Allows(rawURL string) bool {
	if s.Empty() {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return s.AllowsHost(u.Hostname())
}

// AllowsHost reports whether host is in scope.
func (s *Scope) AllowsHost(host string) bool {
	if s.Empty() || host == "" {
		return false
	}
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	if _, ok := s.hosts[host]; ok {
		return true
	}
	for _, suf := range s.suffixes {
		if strings.HasSuffix(host, suf) {
			return true
		}
	}
	if ip := net.ParseIP(host); ip != nil {
		for _, n := range s.nets {
			if n.Contains(ip) {
				return true
			}
		}
	}
	return false
}
