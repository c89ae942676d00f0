package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/paulomunizdev/sqlhunter/internal/engine"
)

const (
	doubleLine = "\u2550" // ═
	singleLine = "\u2500" // ─
	lineWidth  = 50
)

// TextReporter outputs plain terminal text.
type TextReporter struct{}

// Format returns "text".
func (r *TextReporter) Format() string {
	return "text"
}

// Generate writes a formatted run summary to w.
func (r *TextReporter) Generate(ctx context.Context, result *engine.RunResult, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := &strings.Builder{}
	doubleBar := strings.Repeat(doubleLine, lineWidth)
	singleBar := strings.Repeat(singleLine, lineWidth)

	fmt.Fprintln(b, doubleBar)
	fmt.Fprintln(b, "SQL Hunter - Run Summary")
	fmt.Fprintln(b, doubleBar)

	fmt.Fprintf(b, "Mode:     %s\n", result.Mode)
	duration := result.EndTime.Sub(result.StartTime)
	fmt.Fprintf(b, "Duration: %.1fs\n", duration.Seconds())
	fmt.Fprintf(b, "Requests: %d\n", result.Requests)

	if result.Mode != engine.ModeProbe {
		fmt.Fprintln(b, singleBar)
		fmt.Fprintf(b, "Dorks:    %d\n", result.Dorks)
		fmt.Fprintf(b, "Pages:    %d per dork\n", result.Pages)
		fmt.Fprintf(b, "Queries:  %d\n", result.Queries)
		fmt.Fprintf(b, "Links:    %d -> %s\n", result.Links, result.Paths.Links)
	}

	if result.Mode != engine.ModeHarvest {
		fmt.Fprintln(b, singleBar)
		fmt.Fprintf(b, "Candidates:   %d\n", result.Candidates)
		fmt.Fprintf(b, "Probed:       %d\n", result.Probed)
		if result.OutOfScope > 0 {
			fmt.Fprintf(b, "Out of scope: %d (not requested)\n", result.OutOfScope)
		}
		if result.Failed > 0 {
			fmt.Fprintf(b, "Failed:       %d\n", result.Failed)
		}
		fmt.Fprintln(b, singleBar)
		if len(result.Vulnerable) == 0 {
			fmt.Fprintln(b, "No SQL error leakage detected.")
		} else {
			fmt.Fprintf(b, "[+] %d vulnerable URL(s) -> %s\n", len(result.Vulnerable), result.Paths.Vulns)
			for _, v := range result.Vulnerable {
				fmt.Fprintf(b, "  %s  [%s: %q]\n", v.URL, v.Signature.Category, v.Signature.Pattern)
			}
		}
	}
	fmt.Fprintln(b, doubleBar)

	_, err := io.WriteString(w, b.String())
	return err
}
