package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/paulomunizdev/sqlhunter/internal/detector"
	"github.com/paulomunizdev/sqlhunter/internal/engine"
	"github.com/paulomunizdev/sqlhunter/internal/extract"
	"github.com/paulomunizdev/sqlhunter/internal/probe"
	"github.com/paulomunizdev/sqlhunter/internal/report"
	"github.com/paulomunizdev/sqlhunter/internal/scope"
	"github.com/paulomunizdev/sqlhunter/internal/session"
	"github.com/paulomunizdev/sqlhunter/internal/sink"
	"github.com/paulomunizdev/sqlhunter/internal/transport"
)

var modeCommands = map[engine.Mode]struct{ use, short, long string }{
	engine.ModeHarvest: {
		use:   "harvest",
		short: "Harvest candidate URLs for every dork into the link sink",
		long: `Harvest queries the search engine for every dork, page by page, and
writes each decoded result URL to the link sink (truncated first).`,
	},
	engine.ModeProbe: {
		use:   "probe",
		short: "Probe the URLs in the link sink for SQL error leakage",
		long: `Probe requests every URL in the link sink with a trailing quote and
writes those whose responses contain a SQL error signature to the vulnerable
URL sink (truncated first). Only in-scope hosts are requested.`,
	},
	engine.ModeHunt: {
		use:   "hunt",
		short: "Harvest, then probe the harvested URLs",
		long: `Hunt runs a harvest with spaces in each dork sent as '+', then probes
every harvested URL and appends the vulnerable ones to the vulnerable URL sink.`,
	},
}

func newModeCmd(mode engine.Mode) *cobra.Command {
	meta := modeCommands[mode]
	return &cobra.Command{
		Use:   meta.use,
		Short: meta.short,
		Long:  meta.long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMode(cmd, mode, bufio.NewReader(cmd.InOrStdin()))
		},
	}
}

// options holds the flag values of one invocation.
type options struct {
	paths       engine.Paths
	pages       int
	searchBase  string
	selfDomain  string
	source      string
	dedup       bool
	proxy       string
	timeout     time.Duration
	randomAgent bool
	retries     int
	rps         float64
	workers     int
	signatures  string
	scope       []string
	scopeFile   string
	session     string
	format      string
	verbose     bool
}

func readOptions(cmd *cobra.Command) *options {
	f := cmd.Flags()
	o := &options{}
	o.paths.Dorks, _ = f.GetString("dorks")
	o.paths.Links, _ = f.GetString("links")
	o.paths.Vulns, _ = f.GetString("vulns")
	o.pages, _ = f.GetInt("pages")
	o.searchBase, _ = f.GetString("search-base")
	o.selfDomain, _ = f.GetString("self-domain")
	o.source, _ = f.GetString("source")
	o.dedup, _ = f.GetBool("dedup")
	o.proxy, _ = f.GetString("proxy")
	o.timeout, _ = f.GetDuration("timeout")
	o.randomAgent, _ = f.GetBool("random-agent")
	o.retries, _ = f.GetInt("retries")
	o.rps, _ = f.GetFloat64("rps")
	o.workers, _ = f.GetInt("workers")
	o.signatures, _ = f.GetString("signatures")
	o.scope, _ = f.GetStringArray("scope")
	o.scopeFile, _ = f.GetString("scope-file")
	o.session, _ = f.GetString("session")
	o.format, _ = f.GetString("format")
	o.verbose, _ = f.GetBool("verbose")
	return o
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

// runMode wires one shared client, the signature set, the scope and the
// link source into a Hunter and runs mode. A missing page count is read
// from in.
func runMode(cmd *cobra.Command, mode engine.Mode, in *bufio.Reader) error {
	opts := readOptions(cmd)
	out := cmd.OutOrStdout()

	reporter, err := report.New(opts.format)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if mode != engine.ModeProbe && !cmd.Flags().Changed("pages") {
		n, err := promptPages(out, in)
		if err != nil {
			return err
		}
		opts.pages = n
	}

	client, err := transport.NewClient(transport.ClientOptions{
		Timeout:         opts.timeout,
		ProxyURL:        opts.proxy,
		FollowRedirects: true,
		RandomUserAgent: opts.randomAgent,
		MaxRetries:      opts.retries,
		MaxRPS:          opts.rps,
	})
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}
	defer client.Close()

	sigs, origin, err := detector.Load(opts.signatures)
	if err != nil {
		return err
	}
	logger.Debug("signatures loaded", "source", origin, "count", sigs.Len())

	sc, err := loadScope(opts.scope, opts.scopeFile)
	if err != nil {
		return err
	}
	if mode != engine.ModeHarvest {
		logger.Debug("authorized scope", "entries", sc.Entries())
	}

	src, err := extract.New(opts.source, opts.selfDomain)
	if err != nil {
		return err
	}

	prober := probe.New(client, sc, probe.WithSignatures(sigs), probe.WithLogger(logger))
	cfg := engine.DefaultConfig()
	cfg.Pages = opts.pages
	cfg.SearchBase = opts.searchBase
	cfg.Dedup = opts.dedup
	cfg.Workers = opts.workers
	hunter := engine.New(client, prober, cfg,
		engine.WithSource(src),
		engine.WithLogger(logger),
		engine.WithOutput(out),
	)

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer cancel()

	result, runErr := hunter.Run(ctx, mode, opts.paths)

	if opts.session != "" {
		if err := saveRun(ctx, opts.session, result, runErr); err != nil {
			logger.Warn("Failed to save session", "path", opts.session, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	if err := reporter.Generate(ctx, result, out); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	return nil
}

// loadScope merges --scope entries with the entries of --scope-file.
func loadScope(entries []string, file string) (*scope.Scope, error) {
	all := append([]string(nil), entries...)
	if file != "" {
		f, err := sink.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		more, err := scope.ReadEntries(f)
		if err != nil {
			return nil, err
		}
		all = append(all, more...)
	}
	return scope.Parse(all)
}

func saveRun(ctx context.Context, path string, result *engine.RunResult, runErr error) error {
	if result == nil {
		return nil
	}
	store, err := session.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	// An interrupted run still gets recorded.
	return store.Save(context.WithoutCancel(ctx), toRecord(result, runErr))
}

func toRecord(result *engine.RunResult, runErr error) *session.RunRecord {
	rec := &session.RunRecord{
		Mode:       result.Mode.String(),
		Pages:      result.Pages,
		Dorks:      result.Dorks,
		Queries:    result.Queries,
		Links:      result.Links,
		Candidates: result.Candidates,
		Probed:     result.Probed,
		OutOfScope: result.OutOfScope,
		Failed:     result.Failed,
		StartedAt:  result.StartTime,
		FinishedAt: result.EndTime,
	}
	for _, v := range result.Vulnerable {
		rec.Findings = append(rec.Findings, session.Finding{
			URL:        v.URL,
			Pattern:    v.Signature.Pattern,
			Category:   v.Signature.Category,
			StatusCode: v.StatusCode,
		})
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	return rec
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [run-id]",
		Short: "List recorded runs, or show one run",
		Long: `History reads the run history from the --session database. With a run ID
it prints that run's findings.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistory,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	path := flagString(cmd, "session")
	if path == "" {
		return errors.New("history requires --session")
	}
	if _, err := os.Stat(path); err != nil {
		return &sink.ResourceAccessError{Path: path, Op: "reading", Err: err}
	}
	store, err := session.NewSQLiteStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if len(args) == 1 {
		rec, err := store.LoadByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Run %s (%s) %s\n", rec.ID, rec.Mode, rec.StartedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "  links: %d  probed: %d  out of scope: %d  failed: %d\n",
			rec.Links, rec.Probed, rec.OutOfScope, rec.Failed)
		if rec.Error != "" {
			fmt.Fprintf(out, "  error: %s\n", rec.Error)
		}
		for _, f := range rec.Findings {
			fmt.Fprintf(out, "  [+] %s  [%s: %q]\n", f.URL, f.Category, f.Pattern)
		}
		return nil
	}

	runs, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(out, "%s  %-7s  %s  findings: %d\n",
			r.ID, r.Mode, r.StartedAt.Format("2006-01-02 15:04:05"), r.Findings)
	}
	return nil
}
