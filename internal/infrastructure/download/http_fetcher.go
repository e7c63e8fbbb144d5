// Package download provides the fetchers that bring invoice PDFs onto local
// disk: a plain HTTP client with retry, a headless-browser fetcher for
// portals that gate downloads behind a click, and a dispatcher that routes
// URLs between them.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/finkraft/expense-exporter/internal/application/pipeline"
	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"go.uber.org/zap"
)

// Ensure HTTPFetcher implements pipeline.Fetcher
var _ pipeline.Fetcher = (*HTTPFetcher)(nil)

// HTTPFetcher downloads a URL with a plain GET. Transient failures are
// retried with exponential backoff; 4xx responses fail immediately because
// a retry cannot change the answer.
type HTTPFetcher struct {
	client      *http.Client
	maxAttempts int
	logger      *zap.Logger
}

// NewHTTPFetcher creates a new HTTPFetcher. maxAttempts below 1 is clamped
// to 1.
func NewHTTPFetcher(timeout time.Duration, maxAttempts int, logger *zap.Logger) *HTTPFetcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		client:      &http.Client{Timeout: timeout},
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Fetch downloads rawURL into destDir and returns the local path
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	dest := filepath.Join(destDir, FileNameFromURL(rawURL))

	var lastErr error
	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(1<<(attempt-2)) * time.Second
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
			f.logger.Debug("Retrying download",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt))
		}

		err := f.fetchOnce(ctx, rawURL, dest)
		if err == nil {
			return dest, nil
		}
		lastErr = err

		var permanent *permanentError
		if errors.As(err, &permanent) {
			break
		}
	}

	return "", fmt.Errorf("%w: %s: %w", invoice.ErrDownloadFailed, rawURL, lastErr)
}

func (f *HTTPFetcher) fetchOnce(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &permanentError{err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("server returned %s", resp.Status)
	case resp.StatusCode >= 400:
		return &permanentError{err: fmt.Errorf("server returned %s", resp.Status)}
	}

	out, err := os.Create(dest)
	if err != nil {
		return &permanentError{err: err}
	}

	written, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(dest)
		return err
	}
	if closeErr != nil {
		os.Remove(dest)
		return closeErr
	}
	if written == 0 {
		os.Remove(dest)
		return &permanentError{err: invoice.ErrEmptyArtifact}
	}

	return nil
}

// permanentError marks a failure no retry can fix
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// FileNameFromURL derives a local file name from the URL path. Only
// segments carrying an extension qualify; endpoint-style paths like
// /download get the generic name the orchestrator disambiguates per row.
func FileNameFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err == nil {
		if name := path.Base(parsed.Path); name != "" && name != "." && name != "/" && strings.Contains(name, ".") {
			if decoded, err := url.PathUnescape(name); err == nil {
				name = decoded
			}
			return name
		}
	}
	return pipeline.GenericArtifactName
}
