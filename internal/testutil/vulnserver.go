// Package testutil provides local HTTP fixtures for exercising a full run:
// a fake search engine that serves result pages and a fake site whose
// endpoints leak SQL errors when a quote is appended.
//
// Everything here binds to loopback via httptest.
package testutil

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
)

var tmplMap = template.Must(template.New("").Parse(`
{{define "mysql-syntax-error"}}<html><body><h1>Error</h1><p>You have an error in your SQL syntax; check the manual that corresponds to your MySQL server version</p></body></html>{{end}}
{{define "mysql-error"}}<html><body><h1>Warning</h1><p>MySQL Error: 1064</p></body></html>{{end}}
{{define "pg-syntax-error"}}<html><body><h1>Error</h1><p>ERROR: syntax error at or near "'"</p></body></html>{{end}}
{{define "normal"}}<html><body><h1>Products</h1><p>Product: Widget (ID: 1)</p></body></html>{{end}}
{{define "safe"}}<html><body><h1>Product</h1><p>Product details for item 42</p></body></html>{{end}}
`))

// VulnPaths lists the endpoints of NewVulnServer that leak an SQL error
// when the query ends with a quote.
var VulnPaths = []string{"/vuln/error-mysql", "/vuln/mysql-error", "/vuln/error-postgres"}

// SafePath never leaks an error.
const SafePath = "/vuln/safe"

// NewVulnServer creates a mock site. The returned *httptest.Server should be
// closed after use.
func NewVulnServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/vuln/error-mysql", errorHandler("mysql-syntax-error"))
	mux.HandleFunc("/vuln/mysql-error", errorHandler("mysql-error"))
	mux.HandleFunc("/vuln/error-postgres", errorHandler("pg-syntax-error"))
	mux.HandleFunc(SafePath, func(w http.ResponseWriter, r *http.Request) {
		render(w, http.StatusOK, "safe")
	})
	return httptest.NewServer(mux)
}

func errorHandler(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hasTrailingQuote(r.URL.RawQuery) {
			render(w, http.StatusInternalServerError, name)
			return
		}
		render(w, http.StatusOK, "normal")
	}
}

func hasTrailingQuote(rawQuery string) bool {
	return strings.HasSuffix(rawQuery, "'") || strings.HasSuffix(rawQuery, "%27")
}

func render(w http.ResponseWriter, status int, name string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = tmplMap.ExecuteTemplate(w, name, nil)
}

// ResultPage renders a search result page in the engine's redirect-wrapped
// format. Each link is percent-encoded behind /url?q= and followed by the
// engine's tracking parameters; a self-referential link and a pagination
// link are always present.
func ResultPage(links ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>\n")
	b.WriteString(`<a href="/search?q=next&start=10">Next</a>` + "\n")
	for _, l := range links {
		fmt.Fprintf(&b, "<a href=\"/url?q=%s&sa=U&ved=0ah\">result</a>\n", url.QueryEscape(l))
	}
	b.WriteString(`<a href="/url?q=https://www.google.com/preferences&sa=U">Settings</a>` + "\n")
	b.WriteString("</body></html>\n")
	return b.String()
}

// SearchServer is a fake search engine.
type SearchServer struct {
	*httptest.Server

	mu       sync.Mutex
	pages    map[string]string
	requests []string
}

// PageKey identifies a result page by the raw dork text and start offset.
func PageKey(rawDork string, start int) string {
	return fmt.Sprintf("%s|%d", rawDork, start)
}

// NewSearchServer serves pages keyed by PageKey. Unknown pages get an empty
// result page.
func NewSearchServer(pages map[string]string) *SearchServer {
	s := &SearchServer{pages: pages}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *SearchServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/search" {
		http.NotFound(w, r)
		return
	}
	raw := r.URL.RawQuery
	s.mu.Lock()
	s.requests = append(s.requests, raw)
	s.mu.Unlock()

	dork, start := splitQuery(raw)
	page, ok := s.pages[dork+"|"+start]
	if !ok {
		page = ResultPage()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, page)
}

// splitQuery returns the raw q value and start value without decoding, so
// tests can tell '+' from ' '.
func splitQuery(raw string) (q, start string) {
	for _, part := range strings.Split(raw, "&") {
		switch {
		case strings.HasPrefix(part, "q="):
			q = part[len("q="):]
		case strings.HasPrefix(part, "start="):
			start = part[len("start="):]
		}
	}
	return q, start
}

// Base returns the query prefix to use as the search endpoint.
func (s *SearchServer) Base() string {
	return s.URL + "/search?q="
}

// Requests returns the raw query strings received so far.
func (s *SearchServer) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requests))
	copy(out, s.requests)
	return out
}
