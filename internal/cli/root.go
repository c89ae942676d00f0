// Package cli wires the sqlhunter command tree.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/paulomunizdev/sqlhunter/internal/engine"
	"github.com/paulomunizdev/sqlhunter/internal/extract"
	"github.com/paulomunizdev/sqlhunter/internal/search"
)

// Version information (set by build flags)
var (
	version = "0.0.1"
	commit  = "none"
	date    = "unknown"
)

// NewRootCmd builds the sqlhunter command tree. Without a subcommand the
// root runs the interactive menu.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlhunter",
		Short: "Dork-driven SQL error leakage hunter",
		Long: `sqlhunter - Dork-driven SQL error leakage hunter

Harvests candidate URLs from search engine result pages for a list of dorks,
then requests each candidate with a trailing quote and reports the ones whose
responses leak a SQL error message.

Run without a subcommand for the interactive menu.

WARNING: Use this tool only against systems you have explicit permission to test.
The probe phase only requests hosts listed with --scope or --scope-file.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runMenu,
	}

	defaults := engine.DefaultPaths()

	// Resource flags
	cmd.PersistentFlags().String("dorks", defaults.Dorks, "Dork source file, one dork per line")
	cmd.PersistentFlags().String("links", defaults.Links, "Link sink file")
	cmd.PersistentFlags().String("vulns", defaults.Vulns, "Vulnerable URL sink file")

	// Harvest flags
	cmd.PersistentFlags().Int("pages", 0, "Result pages per dork (prompted when unset)")
	cmd.PersistentFlags().String("search-base", search.DefaultBase, "Search endpoint prefix; the dork is appended verbatim")
	cmd.PersistentFlags().String("self-domain", extract.DefaultSelfDomain, "Drop candidates whose decoded URL contains this domain")
	cmd.PersistentFlags().String("source", "regex", "Link source (regex, html)")
	cmd.PersistentFlags().Bool("dedup", false, "Emit each distinct candidate once per run")

	// Connection flags
	cmd.PersistentFlags().String("proxy", "", "Proxy URL (http://host:port or socks5://host:port)")
	cmd.PersistentFlags().Duration("timeout", 30*time.Second, "Request timeout (0 disables)")
	cmd.PersistentFlags().Bool("random-agent", false, "Use random User-Agent")
	cmd.PersistentFlags().Int("retries", 0, "Retries after a transient failure")
	cmd.PersistentFlags().Float64("rps", 0, "Maximum requests per second (0 = unlimited)")
	cmd.PersistentFlags().Int("workers", 1, "Concurrent probes")

	// Probe flags
	cmd.PersistentFlags().String("signatures", "", "Signature YAML file (default: XDG config, then built-ins)")
	cmd.PersistentFlags().StringArray("scope", nil, "Authorized probe target (repeatable: host, *.domain, IP or CIDR)")
	cmd.PersistentFlags().String("scope-file", "", "File of authorized probe targets, one per line")

	// Output flags
	cmd.PersistentFlags().String("session", "", "SQLite file that records run history")
	cmd.PersistentFlags().StringP("format", "f", "text", "Summary format (text, json)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newModeCmd(engine.ModeHarvest))
	cmd.AddCommand(newModeCmd(engine.ModeProbe))
	cmd.AddCommand(newModeCmd(engine.ModeHunt))
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sqlhunter %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}
