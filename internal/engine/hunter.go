package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/paulomunizdev/sqlhunter/internal/extract"
	"github.com/paulomunizdev/sqlhunter/internal/probe"
	"github.com/paulomunizdev/sqlhunter/internal/scope"
	"github.com/paulomunizdev/sqlhunter/internal/search"
	"github.com/paulomunizdev/sqlhunter/internal/sink"
	"github.com/paulomunizdev/sqlhunter/internal/transport"
)

// LineWriter accepts one line at a time. *sink.Writer satisfies it.
type LineWriter interface {
	WriteLine(s string) error
}

// Hunter orchestrates the harvest and probe phases over one shared client.
type Hunter struct {
	client  transport.Client
	fetcher *search.Fetcher
	source  extract.Source
	prober  *probe.Prober
	config  Config
	logger  *slog.Logger

	outMu sync.Mutex
	out   io.Writer
}

// Option configures a Hunter.
type Option func(*Hunter)

// WithSource sets the result-page parser.
func WithSource(src extract.Source) Option {
	return func(h *Hunter) {
		if src != nil {
			h.source = src
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hunter) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithOutput sets where operator-facing progress lines go.
func WithOutput(w io.Writer) Option {
	return func(h *Hunter) {
		if w != nil {
			h.out = w
		}
	}
}

// New creates a Hunter. The client is shared by the fetcher; the prober is
// expected to use the same client.
func New(client transport.Client, prober *probe.Prober, cfg Config, opts ...Option) *Hunter {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	h := &Hunter{
		client:  client,
		fetcher: search.NewFetcher(client),
		source:  extract.NewRegexSource(extract.DefaultSelfDomain),
		prober:  prober,
		config:  cfg,
		logger:  slog.Default(),
		out:     io.Discard,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Hunter) printf(format string, args ...any) {
	h.outMu.Lock()
	defer h.outMu.Unlock()
	fmt.Fprintf(h.out, format, args...)
}

// Run executes mode against paths. Every resource is opened before the
// first request; a harvest failure aborts the run.
func (h *Hunter) Run(ctx context.Context, mode Mode, paths Paths) (*RunResult, error) {
	result := &RunResult{
		Mode:      mode,
		Paths:     paths,
		Pages:     h.config.Pages,
		StartTime: time.Now(),
	}
	defer func() {
		result.EndTime = time.Now()
		result.Requests = h.client.Stats().TotalRequests
	}()

	var err error
	switch mode {
	case ModeHarvest:
		err = h.runHarvest(ctx, paths, result)
	case ModeProbe:
		err = h.runProbe(ctx, paths, result)
	case ModeHunt:
		err = h.runHunt(ctx, paths, result)
	default:
		err = fmt.Errorf("unknown mode %d", mode)
	}
	return result, err
}

func (h *Hunter) runHarvest(ctx context.Context, paths Paths, result *RunResult) error {
	if h.config.Pages <= 0 {
		return ErrInvalidPages
	}
	dorks, err := search.LoadDorks(paths.Dorks)
	if err != nil {
		return err
	}
	links, err := sink.Create(paths.Links, sink.Truncate, sink.LinkFileMode)
	if err != nil {
		return err
	}
	defer links.Close()

	h.printf("Starting the Dork Scanner...\n")
	if err := h.Harvest(ctx, dorks, false, links, result); err != nil {
		return err
	}
	if err := links.Close(); err != nil {
		return err
	}
	h.printf("Dork Scanner process completed.\n")
	h.printf("The links have been saved to the '%s' file.\n", paths.Links)
	return nil
}

func (h *Hunter) runProbe(ctx context.Context, paths Paths, result *RunResult) error {
	if h.prober.Scope().Empty() {
		return scope.ErrEmpty
	}
	candidates, err := sink.ReadFile(paths.Links)
	if err != nil {
		return err
	}
	vulns, err := sink.Create(paths.Vulns, sink.Truncate, 0o644)
	if err != nil {
		return err
	}
	defer vulns.Close()

	h.printf("Starting the Vuln Scanner...\n")
	if err := h.ProbeAll(ctx, candidates, vulns, result); err != nil {
		return err
	}
	if err := vulns.Close(); err != nil {
		return err
	}
	h.printf("Vuln Scanner process completed.\n")
	h.printf("The vulnerable links have been saved to the '%s' file.\n", paths.Vulns)
	return nil
}

func (h *Hunter) runHunt(ctx context.Context, paths Paths, result *RunResult) error {
	if h.config.Pages <= 0 {
		return ErrInvalidPages
	}
	if h.prober.Scope().Empty() {
		return scope.ErrEmpty
	}
	dorks, err := search.LoadDorks(paths.Dorks)
	if err != nil {
		return err
	}
	links, err := sink.Create(paths.Links, sink.Truncate, sink.LinkFileMode)
	if err != nil {
		return err
	}
	defer links.Close()
	vulns, err := sink.Create(paths.Vulns, sink.Append, 0o644)
	if err != nil {
		return err
	}
	defer vulns.Close()

	if err := h.Harvest(ctx, dorks, true, links, result); err != nil {
		return err
	}
	if err := links.Close(); err != nil {
		return err
	}
	h.printf("Dork Scanner process completed. Links saved to the '%s' file.\n", paths.Links)

	h.printf("Starting the Vuln Scanner after the Dork Scanner...\n")
	candidates, err := sink.ReadFile(paths.Links)
	if err != nil {
		return err
	}
	if err := h.ProbeAll(ctx, candidates, vulns, result); err != nil {
		return err
	}
	if err := vulns.Close(); err != nil {
		return err
	}
	h.printf("Vuln Scanner process completed. Vulnerable URLs have been added to the '%s' file.\n", paths.Vulns)
	return nil
}

// Harvest fetches pages 0..Pages-1 for every dork and streams each
// candidate to links. The first fetch failure stops the harvest.
func (h *Hunter) Harvest(ctx context.Context, dorks []string, spaceToPlus bool, links LineWriter, result *RunResult) error {
	builder := search.QueryBuilder{Base: h.config.SearchBase, SpaceToPlus: spaceToPlus}

	emit := extract.Emitter(func(link string) error {
		if err := links.WriteLine(link); err != nil {
			return err
		}
		result.Links++
		h.printf("URL: %s\n", link)
		h.logger.Debug("candidate emitted", "url", link)
		return nil
	})
	if h.config.Dedup {
		emit = extract.Dedup(emit)
	}

	result.Dorks += len(dorks)
	for _, dork := range dorks {
		for _, q := range builder.Pages(dork, h.config.Pages) {
			if err := ctx.Err(); err != nil {
				return err
			}
			body, err := h.fetcher.Fetch(ctx, q)
			if err != nil {
				h.logger.Error("Failed to execute HTTP request.", "dork", dork, "page", q.Page+1, "error", err)
				return fmt.Errorf("harvest dork %q page %d: %w", dork, q.Page+1, err)
			}
			result.Queries++
			h.printf("Links on page %d for the dork \"%s\":\n", q.Page+1, dork)
			if err := h.source.Extract(body, emit); err != nil {
				return fmt.Errorf("extract dork %q page %d: %w", dork, q.Page+1, err)
			}
		}
	}
	return nil
}

// ProbeAll probes every candidate and writes Vulnerable ones to vulns.
// Per-candidate failures never stop the scan; only a cancelled context or
// a failing vulns writer does.
func (h *Hunter) ProbeAll(ctx context.Context, candidates []string, vulns LineWriter, result *RunResult) error {
	result.Candidates += len(candidates)
	if len(candidates) == 0 {
		return nil
	}

	pool := newWorkerPool(h.config.Workers)
	pool.start(ctx, h.prober, h.logger, func(link string) {
		h.printf("Processing URL: %s\n", link)
	})
	go pool.submit(candidates)
	go pool.wait()

	var writeErr error
	for res := range pool.results {
		switch {
		case res.OutOfScope:
			result.OutOfScope++
			continue
		case res.Err != nil:
			result.Failed++
			h.logger.Warn("Error executing request", "url", res.URL, "error", res.Err)
		}
		result.Probed++
		if res.Verdict != probe.Vulnerable || writeErr != nil {
			continue
		}
		if err := vulns.WriteLine(res.URL); err != nil {
			writeErr = err
			continue
		}
		result.Vulnerable = append(result.Vulnerable, res)
	}

	if writeErr != nil {
		return writeErr
	}
	return ctx.Err()
}
