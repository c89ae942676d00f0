package report

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/paulomunizdev/sqlhunter/internal/engine"
)

// JSONReporter outputs the run summary as JSON.
type JSONReporter struct {
	// Compact disables indentation.
	Compact bool
}

// Format returns "json".
func (r *JSONReporter) Format() string {
	return "json"
}

type jsonOutput struct {
	SchemaVersion string       `json:"schema_version"`
	Tool          string       `json:"tool"`
	Mode          string       `json:"mode"`
	Run           jsonRun      `json:"run"`
	Harvest       *jsonHarvest `json:"harvest,omitempty"`
	Probe         *jsonProbe   `json:"probe,omitempty"`
}

type jsonRun struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds float64   `json:"duration_seconds"`
	TotalRequests   int64     `json:"total_requests"`
}

type jsonHarvest struct {
	Dorks     int    `json:"dorks"`
	Pages     int    `json:"pages"`
	Queries   int    `json:"queries"`
	Links     int    `json:"links"`
	LinksFile string `json:"links_file"`
}

type jsonProbe struct {
	Candidates int           `json:"candidates"`
	Probed     int           `json:"probed"`
	OutOfScope int           `json:"out_of_scope"`
	Failed     int           `json:"failed"`
	VulnsFile  string        `json:"vulns_file"`
	Vulnerable []jsonFinding `json:"vulnerable"`
}

type jsonFinding struct {
	URL        string `json:"url"`
	Pattern    string `json:"pattern"`
	Category   string `json:"category"`
	StatusCode int    `json:"status_code"`
}

// Generate writes the JSON run summary to w.
func (r *JSONReporter) Generate(ctx context.Context, result *engine.RunResult, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	output := jsonOutput{
		SchemaVersion: "1.0",
		Tool:          "sqlhunter",
		Mode:          result.Mode.String(),
		Run: jsonRun{
			StartTime:       result.StartTime,
			EndTime:         result.EndTime,
			DurationSeconds: result.EndTime.Sub(result.StartTime).Seconds(),
			TotalRequests:   result.Requests,
		},
	}

	if result.Mode != engine.ModeProbe {
		output.Harvest = &jsonHarvest{
			Dorks:     result.Dorks,
			Pages:     result.Pages,
			Queries:   result.Queries,
			Links:     result.Links,
			LinksFile: result.Paths.Links,
		}
	}
	if result.Mode != engine.ModeHarvest {
		p := &jsonProbe{
			Candidates: result.Candidates,
			Probed:     result.Probed,
			OutOfScope: result.OutOfScope,
			Failed:     result.Failed,
			VulnsFile:  result.Paths.Vulns,
			Vulnerable: make([]jsonFinding, 0, len(result.Vulnerable)),
		}
		for _, v := range result.Vulnerable {
			p.Vulnerable = append(p.Vulnerable, jsonFinding{
				URL:        v.URL,
				Pattern:    v.Signature.Pattern,
				Category:   v.Signature.Category,
				StatusCode: v.StatusCode,
			})
		}
		output.Probe = p
	}

	enc := json.NewEncoder(w)
	if !r.Compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(output)
}
