package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcherDownloadsFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF-1.4 test content"))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(5*time.Second, 3, nil)
	dir := t.TempDir()

	path, err := fetcher.Fetch(context.Background(), srv.URL+"/invoices/INV-42.pdf", dir)
	require.NoError(t, err)

	assert.Equal(t, "INV-42.pdf", filepath.Base(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test content", string(content))
}

func TestHTTPFetcherRetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("content"))
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(5*time.Second, 3, nil)

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/a.pdf", t.TempDir())
	require.NoError(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestHTTPFetcherDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(5*time.Second, 3, nil)

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/missing.pdf", t.TempDir())
	assert.ErrorIs(t, err, invoice.ErrDownloadFailed)
	assert.EqualValues(t, 1, calls.Load(), "4xx must not be retried")
}

func TestHTTPFetcherRejectsEmptyBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(5*time.Second, 3, nil)
	dir := t.TempDir()

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/empty.pdf", dir)
	assert.ErrorIs(t, err, invoice.ErrDownloadFailed)
	assert.ErrorIs(t, err, invoice.ErrEmptyArtifact)
	assert.EqualValues(t, 1, calls.Load(), "zero-byte response must not be retried")

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no partial file left behind")
}

func TestHTTPFetcherGivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fetcher := NewHTTPFetcher(5*time.Second, 2, nil)

	_, err := fetcher.Fetch(context.Background(), srv.URL+"/a.pdf", t.TempDir())
	assert.ErrorIs(t, err, invoice.ErrDownloadFailed)
	assert.EqualValues(t, 2, calls.Load())
}

func TestFileNameFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://portal.example.com/invoices/INV-42.pdf", "INV-42.pdf"},
		{"https://portal.example.com/invoices/INV%2042.pdf", "INV 42.pdf"},
		{"https://portal.example.com/invoices/download", "invoice.pdf"},
		{"https://portal.example.com/", "invoice.pdf"},
		{"https://portal.example.com", "invoice.pdf"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FileNameFromURL(tt.url), tt.url)
	}
}

func TestDispatcherRoutesByPattern(t *testing.T) {
	httpF := &recordingFetcher{}
	browserF := &recordingFetcher{}
	d := NewDispatcher(httpF, browserF, []string{"portal.gated.example"})

	dir := t.TempDir()
	_, err := d.Fetch(context.Background(), "https://portal.gated.example/doc/1", dir)
	require.NoError(t, err)
	_, err = d.Fetch(context.Background(), "https://files.finkraft.ai/a.pdf", dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"https://portal.gated.example/doc/1"}, browserF.urls)
	assert.Equal(t, []string{"https://files.finkraft.ai/a.pdf"}, httpF.urls)
}

func TestDispatcherWithoutBrowserFetcher(t *testing.T) {
	httpF := &recordingFetcher{}
	d := NewDispatcher(httpF, nil, []string{"portal.gated.example"})

	_, err := d.Fetch(context.Background(), "https://portal.gated.example/doc/1", t.TempDir())
	require.NoError(t, err)
	assert.Len(t, httpF.urls, 1)
}

type recordingFetcher struct {
	urls []string
}

func (f *recordingFetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	f.urls = append(f.urls, rawURL)
	return destDir + "/fake.pdf", nil
}
