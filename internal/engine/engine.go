// Package engine sequences the harvest and probe phases of a run.
package engine

import (
	"errors"
	"time"

	"github.com/paulomunizdev/sqlhunter/internal/probe"
)

// ErrInvalidPages is returned when a harvest is requested with a page count
// below one.
var ErrInvalidPages = errors.New("invalid page count: must be a positive integer")

// Mode is one of the three entry modes offered by the menu.
type Mode int

const (
	// ModeHarvest runs dork searches and writes candidates to a truncated link sink.
	ModeHarvest Mode = iota + 1
	// ModeProbe reads the link sink and writes findings to a truncated vulnerability sink.
	ModeProbe
	// ModeHunt harvests, then probes the fresh link sink, appending findings.
	ModeHunt
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeHarvest:
		return "harvest"
	case ModeProbe:
		return "probe"
	case ModeHunt:
		return "hunt"
	default:
		return "unknown"
	}
}

// ModeFromChoice maps a menu number to a Mode.
func ModeFromChoice(choice int) (Mode, bool) {
	m := Mode(choice)
	switch m {
	case ModeHarvest, ModeProbe, ModeHunt:
		return m, true
	}
	return 0, false
}

// Paths names the text resources used by a run.
type Paths struct {
	Dorks string
	Links string
	Vulns string
}

// DefaultPaths returns the file names used by the original tool.
func DefaultPaths() Paths {
	return Paths{Dorks: "dorks.txt", Links: "links.txt", Vulns: "vuln.txt"}
}

// Config holds configuration for a run.
type Config struct {
	Pages      int    // Result pages per dork (offset = page*10)
	SearchBase string // Search endpoint prefix; empty uses search.DefaultBase
	Dedup      bool   // Emit each distinct candidate once per run
	Workers    int    // Concurrent probes (default 1 = strictly sequential)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{Workers: 1}
}

// RunResult summarizes one run.
type RunResult struct {
	Mode       Mode
	Paths      Paths
	Pages      int
	Dorks      int
	Queries    int
	Links      int
	Candidates int
	Probed     int
	OutOfScope int
	Failed     int
	Vulnerable []probe.Result
	StartTime  time.Time
	EndTime    time.Time
	Requests   int64
}
