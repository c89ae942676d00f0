package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// Client is the interface for the HTTP transport layer. Search fetches and
// probes both go through it.
type Client interface {
	// Get issues a GET for rawURL and returns the fully buffered response.
	Get(ctx context.Context, rawURL string) (*Response, error)

	// Stats returns transport statistics.
	Stats() *TransportStats
}

// TransportStats holds aggregate statistics for the transport client.
type TransportStats struct {
	TotalRequests int64
	FailedRequest int64
	TotalDuration time.Duration
	AvgDuration   time.Duration
}

// ClientOptions holds configuration for creating a new DefaultClient.
type ClientOptions struct {
	// Timeout bounds each request end to end. Zero disables it.
	Timeout time.Duration

	// ProxyURL is the proxy URL (HTTP or SOCKS5).
	ProxyURL string

	// FollowRedirects controls whether redirects are followed.
	FollowRedirects bool

	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool

	// RandomUserAgent enables random User-Agent header selection.
	RandomUserAgent bool

	// UserAgent is sent when RandomUserAgent is off. Empty uses DefaultUserAgent.
	UserAgent string

	// MaxRetries is the number of retries after a transient failure (0 = none).
	MaxRetries int

	// MaxRPS is the maximum requests per second (0 = unlimited).
	MaxRPS float64
}

// DefaultClient is the default implementation of the Client interface,
// backed by go-retryablehttp over net/http.
type DefaultClient struct {
	httpClient    *retryablehttp.Client
	opts          ClientOptions
	limiter       *rate.Limiter
	mu            sync.RWMutex
	totalRequests int64
	failed        int64
	totalDuration time.Duration
}

var _ Client = (*DefaultClient)(nil)

// NewClient creates a new DefaultClient with the given options. A client
// that cannot be constructed is reported as a NetworkInitError.
func NewClient(opts ClientOptions) (*DefaultClient, error) {
	if opts.MaxRetries < 0 {
		return nil, &NetworkInitError{Err: fmt.Errorf("negative retry count %d", opts.MaxRetries)}
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: opts.InsecureSkipVerify,
		},
		ForceAttemptHTTP2: true,
	}

	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, &NetworkInitError{URL: opts.ProxyURL, Err: fmt.Errorf("invalid proxy URL: %w", err)}
		}
		if proxyURL.Scheme == "" || proxyURL.Host == "" {
			return nil, &NetworkInitError{URL: opts.ProxyURL, Err: fmt.Errorf("invalid proxy URL: missing scheme or host")}
		}
		tr.Proxy = http.ProxyURL(proxyURL)
	}

	hc := &http.Client{
		Transport: tr,
		Timeout:   opts.Timeout,
	}
	if !opts.FollowRedirects {
		hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = hc
	rc.Logger = nil
	rc.RetryMax = opts.MaxRetries
	rc.Backoff = retryablehttp.LinearJitterBackoff
	// Hand back the last response or error untouched so error pages keep
	// their bodies and transport errors keep their cause.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	dc := &DefaultClient{
		httpClient: rc,
		opts:       opts,
	}
	if opts.MaxRPS > 0 {
		dc.limiter = rate.NewLimiter(rate.Limit(opts.MaxRPS), 1)
	}
	return dc, nil
}

// Get sends a GET for rawURL and buffers the whole body in memory.
func (c *DefaultClient) Get(ctx context.Context, rawURL string) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkRequestError{URL: rawURL, Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkInitError{URL: rawURL, Err: err}
	}

	ua := c.opts.UserAgent
	if c.opts.RandomUserAgent {
		ua = RandomUserAgent()
	}
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	start := time.Now()
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		if httpResp != nil {
			httpResp.Body.Close()
		}
		c.record(time.Since(start), false)
		return nil, &NetworkRequestError{URL: rawURL, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	duration := time.Since(start)
	if err != nil {
		c.record(duration, false)
		return nil, &NetworkRequestError{URL: rawURL, Err: fmt.Errorf("reading response body: %w", err)}
	}
	c.record(duration, true)

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
		Duration:   duration,
		URL:        httpResp.Request.URL.String(),
	}, nil
}

func (c *DefaultClient) record(d time.Duration, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalDuration += d
	if !ok {
		c.failed++
	}
}

// Stats returns aggregate transport statistics.
func (c *DefaultClient) Stats() *TransportStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := &TransportStats{
		TotalRequests: c.totalRequests,
		FailedRequest: c.failed,
		TotalDuration: c.totalDuration,
	}
	if c.totalRequests > 0 {
		stats.AvgDuration = c.totalDuration / time.Duration(c.totalRequests)
	}
	return stats
}

// Close releases idle connections held by the client.
func (c *DefaultClient) Close() {
	c.httpClient.HTTPClient.CloseIdleConnections()
}
