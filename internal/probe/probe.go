// Package probe tests one candidate URL for SQL error leakage by appending a
// single quote and inspecting the response body.
package probe

import (
	"context"
	"log/slog"

	"github.com/paulomunizdev/sqlhunter/internal/detector"
	"github.com/paulomunizdev/sqlhunter/internal/scope"
	"github.com/paulomunizdev/sqlhunter/internal/transport"
)

// Suffix is appended to the candidate to build the probe URL.
const Suffix = "'"

// Verdict is the outcome of a probe.
type Verdict int

const (
	NotVulnerable Verdict = iota
	Vulnerable
)

// String returns the verdict name.
func (v Verdict) String() string {
	if v == Vulnerable {
		return "vulnerable"
	}
	return "not-vulnerable"
}

// Result is the transient outcome for one candidate.
type Result struct {
	URL        string
	Verdict    Verdict
	Signature  detector.Signature
	StatusCode int

	// OutOfScope is set when the candidate was not requested at all.
	OutOfScope bool

	// Err is the transport failure that forced a NotVulnerable verdict.
	Err error
}

// Prober classifies candidates. It is safe for concurrent use when the
// underlying client is.
type Prober struct {
	client transport.Client
	sigs   *detector.Set
	scope  *scope.Scope
	logger *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithSignatures replaces the built-in signature set.
func WithSignatures(s *detector.Set) Option {
	return func(p *Prober) {
		if s != nil {
			p.sigs = s
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Prober) {
		if l != nil {
			p.logger = l
		}
	}
}

// New returns a Prober that only requests URLs allowed by sc.
func New(client transport.Client, sc *scope.Scope, opts ...Option) *Prober {
	p := &Prober{
		client: client,
		sigs:   detector.MustDefault(),
		scope:  sc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Scope returns the authorized scope.
func (p *Prober) Scope() *scope.Scope { return p.scope }

// Probe requests link+"'" and classifies the body. Every failure yields
// NotVulnerable; Probe never returns an error so one bad candidate cannot
// stop a scan.
func (p *Prober) Probe(ctx context.Context, link string) Result {
	res := Result{URL: link, Verdict: NotVulnerable}

	if !p.scope.Allows(link) {
		res.OutOfScope = true
		p.logger.Warn("candidate outside authorized scope, not probed", "url", link)
		return res
	}

	resp, err := p.client.Get(ctx, link+Suffix)
	if err != nil {
		res.Err = err
		p.logger.Debug("probe request failed", "url", link, "error", err)
		return res
	}
	res.StatusCode = resp.StatusCode

	if sig, ok := p.sigs.Match(resp.Body); ok {
		res.Verdict = Vulnerable
		res.Signature = sig
	}
	return res
}
