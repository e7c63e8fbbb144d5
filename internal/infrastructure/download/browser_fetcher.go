package download

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/browser"
	"github.com/chromedp/chromedp"
	"github.com/finkraft/expense-exporter/internal/application/pipeline"
	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"go.uber.org/zap"
)

const defaultBrowserTimeout = 60 * time.Second

// BrowserFetcherConfig contains configuration for the headless-browser fetcher
type BrowserFetcherConfig struct {
	// Timeout for one navigate-and-download cycle
	Timeout time.Duration
	// Selector is the CSS selector of the element that triggers the download
	Selector string
	// NoSandbox runs Chrome without sandbox (required for Docker/root)
	NoSandbox bool
	// Logger for debug output
	Logger *zap.Logger
}

// BrowserFetcher drives a headless Chrome through the DevTools protocol for
// portals that only hand out the PDF after a click on the page.
type BrowserFetcher struct {
	config      *BrowserFetcherConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

// Ensure BrowserFetcher implements pipeline.Fetcher
var _ pipeline.Fetcher = (*BrowserFetcher)(nil)

// NewBrowserFetcher creates a new BrowserFetcher
func NewBrowserFetcher(config *BrowserFetcherConfig) *BrowserFetcher {
	if config == nil {
		config = &BrowserFetcherConfig{}
	}
	if config.Timeout == 0 {
		config.Timeout = defaultBrowserTimeout
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true), // Important for Docker
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
	)
	if config.NoSandbox {
		opts = append(opts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &BrowserFetcher{
		config:      config,
		logger:      logger,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// Close releases the browser allocator
func (f *BrowserFetcher) Close() {
	if f.allocCancel != nil {
		f.allocCancel()
	}
}

// Fetch navigates to rawURL, clicks the download trigger, and waits for the
// file to land in destDir. The download directory must be empty of partial
// files before the click; Chrome writes .crdownload suffixes while a
// transfer is in flight.
func (f *BrowserFetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	taskCtx, taskCancel := chromedp.NewContext(f.allocCtx)
	defer taskCancel()

	taskCtx, timeoutCancel := context.WithTimeout(taskCtx, f.config.Timeout)
	defer timeoutCancel()

	// The task context is independent of the caller's; honor its cancellation
	go func() {
		select {
		case <-ctx.Done():
			taskCancel()
		case <-taskCtx.Done():
		}
	}()

	selector := f.config.Selector
	if selector == "" {
		selector = "a.download-invoice"
	}

	err := chromedp.Run(taskCtx,
		browser.SetDownloadBehavior(browser.SetDownloadBehaviorBehaviorAllow).
			WithDownloadPath(destDir).
			WithEventsEnabled(true),
		chromedp.Navigate(rawURL),
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", invoice.ErrDownloadFailed, rawURL, err)
	}

	path, err := f.waitForDownload(taskCtx, destDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", invoice.ErrDownloadFailed, rawURL, err)
	}

	f.logger.Debug("Browser download complete",
		zap.String("url", rawURL),
		zap.String("path", path))
	return path, nil
}

// waitForDownload polls destDir until a fully written file appears
func (f *BrowserFetcher) waitForDownload(ctx context.Context, destDir string) (string, error) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("timed out waiting for download: %w", ctx.Err())
		case <-ticker.C:
			entries, err := os.ReadDir(destDir)
			if err != nil {
				return "", err
			}
			for _, entry := range entries {
				if entry.IsDir() || filepath.Ext(entry.Name()) == ".crdownload" {
					continue
				}
				info, err := entry.Info()
				if err != nil || info.Size() == 0 {
					continue
				}
				return filepath.Join(destDir, entry.Name()), nil
			}
		}
	}
}
