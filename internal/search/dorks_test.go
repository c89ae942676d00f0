package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paulomunizdev/sqlhunter/internal/sink"
	"github.com/paulomunizdev/sqlhunter/internal/transport"
)

func TestReadDorks(t *testing.T) {
	in := "inurl:a.php?id=\r\n\ninurl:b.php?cat= shop\n\ninurl:c.php?p="
	got, err := ReadDorks(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadDorks: %v", err)
	}
	want := []string{"inurl:a.php?id=", "inurl:b.php?cat= shop", "inurl:c.php?p="}
	if len(got) != len(want) {
		t.Fatalf("got %d dorks %q, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dorks[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestReadDorks_Empty(t *testing.T) {
	got, err := ReadDorks(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadDorks: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %q, want none", got)
	}
}

func newClient(t *testing.T) *transport.DefaultClient {
	t.Helper()
	c, err := transport.NewClient(transport.ClientOptions{Timeout: 5 * time.Second, FollowRedirects: true})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestFetcher_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "q=%s start=%s", r.URL.Query().Get("q"), r.URL.Query().Get("start"))
	}))
	defer srv.Close()

	f := NewFetcher(newClient(t))
	q := QueryBuilder{Base: srv.URL + "/search?q="}.Build("dork", 1)
	body, err := f.Fetch(context.Background(), q)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(body) != "q=dork start=10" {
		t.Errorf("body = %q", body)
	}
}

func TestFetcher_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL + "/search?q="
	srv.Close()

	f := NewFetcher(newClient(t))
	_, err := f.Fetch(context.Background(), QueryBuilder{Base: base}.Build("x", 0))
	var re *transport.NetworkRequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected NetworkRequestError, got %T: %v", err, err)
	}
}

func TestLoadDorks_Missing(t *testing.T) {
	_, err := LoadDorks(t.TempDir() + "/dorks.txt")
	var rae *sink.ResourceAccessError
	if !errors.As(err, &rae) {
		t.Fatalf("err = %v, want ResourceAccessError", err)
	}
}
