package search

import (
	"context"

	"github.com/paulomunizdev/sqlhunter/internal/transport"
)

// Fetcher issues one blocking GET per query and returns the raw body.
// Errors are the transport's NetworkInitError or NetworkRequestError.
type Fetcher struct {
	client transport.Client
}

// NewFetcher returns a Fetcher that shares client with the rest of the run.
func NewFetcher(client transport.Client) *Fetcher {
	return &Fetcher{client: client}
}

// Fetch returns the body of the result page for q.
func (f *Fetcher) Fetch(ctx context.Context, q Query) ([]byte, error) {
	resp, err := f.client.Get(ctx, q.URL)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
