// Package session keeps a history of runs so that earlier harvests and
// probe results can be reviewed later.
package session

import (
	"context"
	"time"
)

// Finding is one vulnerable candidate recorded for a run.
type Finding struct {
	URL        string `json:"url"`
	Pattern    string `json:"pattern"`
	Category   string `json:"category"`
	StatusCode int    `json:"status_code"`
}

// RunRecord captures the outcome of one run.
type RunRecord struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Pages      int       `json:"pages"`
	Dorks      int       `json:"dorks"`
	Queries    int       `json:"queries"`
	Links      int       `json:"links"`
	Candidates int       `json:"candidates"`
	Probed     int       `json:"probed"`
	OutOfScope int       `json:"out_of_scope"`
	Failed     int       `json:"failed"`
	Findings   []Finding `json:"findings"`
	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunSummary is a lightweight run overview.
type RunSummary struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Findings   int       `json:"findings"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Store persists and retrieves run records.
type Store interface {
	Save(ctx context.Context, rec *RunRecord) error
	LoadByID(ctx context.Context, id string) (*RunRecord, error)
	List(ctx context.Context) ([]*RunSummary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
