package search

import (
	"fmt"
	"io"

	"github.com/paulomunizdev/sqlhunter/internal/sink"
)

// ReadDorks reads one dork per line, in order. Dorks are kept verbatim
// apart from a trailing carriage return; empty lines are skipped.
func ReadDorks(r io.Reader) ([]string, error) {
	dorks, err := sink.ReadLines(r)
	if err != nil {
		return nil, fmt.Errorf("reading dorks: %w", err)
	}
	return dorks, nil
}

// LoadDorks reads the dork source at path. A missing or unreadable file is
// a sink.ResourceAccessError.
func LoadDorks(path string) ([]string, error) {
	f, err := sink.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadDorks(f)
}
