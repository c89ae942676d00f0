package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Helper: create a default test client
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, mod func(*ClientOptions)) *DefaultClient {
	t.Helper()
	opts := ClientOptions{
		Timeout:         5 * time.Second,
		FollowRedirects: true,
	}
	if mod != nil {
		mod(&opts)
	}
	c, err := NewClient(opts)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestBasicGET(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		fmt.Fprint(w, "hello world")
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	resp, err := c.Get(context.Background(), srv.URL+"/test")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if resp.BodyString() != "hello world" {
		t.Errorf("Body = %q, want %q", resp.BodyString(), "hello world")
	}
}

func TestGET_FollowsRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/start" {
			http.Redirect(w, r, "/final", http.StatusFound)
			return
		}
		fmt.Fprint(w, "landed")
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	resp, err := c.Get(context.Background(), srv.URL+"/start")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.BodyString() != "landed" {
		t.Errorf("Body = %q, want %q", resp.BodyString(), "landed")
	}
	if resp.URL != srv.URL+"/final" {
		t.Errorf("URL = %q, want %q", resp.URL, srv.URL+"/final")
	}
}

func TestGET_NoFollowRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/elsewhere", http.StatusFound)
	}))
	defer srv.Close()

	c := newTestClient(t, func(o *ClientOptions) { o.FollowRedirects = false })
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusFound {
		t.Errorf("StatusCode = %d, want 302", resp.StatusCode)
	}
}

func TestGET_ServerErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "You have an error in your SQL syntax")
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
	if resp.BodyString() != "You have an error in your SQL syntax" {
		t.Errorf("Body = %q", resp.BodyString())
	}
}

func TestGET_NoRetriesByDefault(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestGET_RetriesWhenConfigured(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	c := newTestClient(t, func(o *ClientOptions) { o.MaxRetries = 3 })
	c.httpClient.RetryWaitMin = time.Millisecond
	c.httpClient.RetryWaitMax = 5 * time.Millisecond

	resp, err := c.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.BodyString() != "ok" {
		t.Errorf("Body = %q, want ok", resp.BodyString())
	}
	if got := hits.Load(); got != 3 {
		t.Errorf("server hits = %d, want 3", got)
	}
}

func TestGET_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	c := newTestClient(t, func(o *ClientOptions) { o.Timeout = 50 * time.Millisecond })
	_, err := c.Get(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !IsRequestError(err) {
		t.Errorf("expected NetworkRequestError, got %T: %v", err, err)
	}
}

func TestGET_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	c := newTestClient(t, nil)
	_, err := c.Get(context.Background(), addr)
	var re *NetworkRequestError
	if !errors.As(err, &re) {
		t.Fatalf("expected NetworkRequestError, got %T: %v", err, err)
	}
	if re.URL != addr {
		t.Errorf("URL = %q, want %q", re.URL, addr)
	}
}

func TestGET_InvalidURLIsInitError(t *testing.T) {
	c := newTestClient(t, nil)
	_, err := c.Get(context.Background(), "http://bad host/\x7f")
	if !IsInitError(err) {
		t.Fatalf("expected NetworkInitError, got %T: %v", err, err)
	}
}

func TestNewClient_InvalidProxy(t *testing.T) {
	tests := []string{"://nope", "no-scheme"}
	for _, p := range tests {
		t.Run(p, func(t *testing.T) {
			_, err := NewClient(ClientOptions{ProxyURL: p})
			if !IsInitError(err) {
				t.Errorf("NewClient(proxy=%q) = %v, want NetworkInitError", p, err)
			}
		})
	}
}

func TestGET_UserAgent(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.UserAgent())
	}))
	defer srv.Close()

	c := newTestClient(t, func(o *ClientOptions) { o.UserAgent = "sqlhunter-test" })
	if _, err := c.Get(context.Background(), srv.URL); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ua := got.Load().(string); ua != "sqlhunter-test" {
		t.Errorf("User-Agent = %q, want sqlhunter-test", ua)
	}
}

func TestStats(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "x")
	}))
	defer srv.Close()

	c := newTestClient(t, nil)
	for i := 0; i < 3; i++ {
		if _, err := c.Get(context.Background(), srv.URL); err != nil {
			t.Fatalf("Get: %v", err)
		}
	}
	stats := c.Stats()
	if stats.TotalRequests != 3 {
		t.Errorf("TotalRequests = %d, want 3", stats.TotalRequests)
	}
	if stats.FailedRequest != 0 {
		t.Errorf("FailedRequest = %d, want 0", stats.FailedRequest)
	}
}

func TestRandomUserAgentReturnsFromList(t *testing.T) {
	ua := RandomUserAgent()
	for _, agent := range userAgents {
		if ua == agent {
			return
		}
	}
	t.Errorf("RandomUserAgent() returned %q which is not in the userAgents list", ua)
}
