package download

import (
	"context"
	"strings"

	"github.com/finkraft/expense-exporter/internal/application/pipeline"
)

// Dispatcher routes each URL to the browser fetcher when it matches one of
// the configured substring patterns, and to the HTTP fetcher otherwise.
type Dispatcher struct {
	httpFetcher     pipeline.Fetcher
	browserFetcher  pipeline.Fetcher
	browserPatterns []string
}

// Ensure Dispatcher implements pipeline.Fetcher
var _ pipeline.Fetcher = (*Dispatcher)(nil)

// NewDispatcher creates a new Dispatcher. browserFetcher may be nil when no
// patterns are configured.
func NewDispatcher(httpFetcher, browserFetcher pipeline.Fetcher, browserPatterns []string) *Dispatcher {
	return &Dispatcher{
		httpFetcher:     httpFetcher,
		browserFetcher:  browserFetcher,
		browserPatterns: browserPatterns,
	}
}

// Fetch downloads rawURL via the fetcher its host requires
func (d *Dispatcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	if d.browserFetcher != nil {
		for _, pattern := range d.browserPatterns {
			if pattern != "" && strings.Contains(rawURL, pattern) {
				return d.browserFetcher.Fetch(ctx, rawURL, destDir)
			}
		}
	}
	return d.httpFetcher.Fetch(ctx, rawURL, destDir)
}
