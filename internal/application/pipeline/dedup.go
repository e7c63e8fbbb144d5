package pipeline

import (
	"context"
	"errors"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"go.uber.org/zap"
)

// DedupGate answers whether a fingerprint was ingested before. The cache is
// consulted first; a cache miss falls through to the document store, which
// is authoritative. Cache errors degrade to the store lookup instead of
// failing the row.
type DedupGate struct {
	cache     FingerprintCache
	documents invoice.DocumentRepository
	logger    *zap.Logger
}

// NewDedupGate creates a DedupGate. cache may be nil, leaving only the
// document store lookup.
func NewDedupGate(cache FingerprintCache, documents invoice.DocumentRepository, logger *zap.Logger) *DedupGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DedupGate{cache: cache, documents: documents, logger: logger}
}

// Check returns the previously ingested document for the fingerprint, or
// nil when the content is new. A cache hit without a store row still counts
// as a duplicate with an unknown prior document.
func (g *DedupGate) Check(ctx context.Context, fingerprint string) (*invoice.Document, bool, error) {
	if g.cache != nil {
		seen, err := g.cache.Seen(ctx, fingerprint)
		if err != nil {
			g.logger.Warn("Fingerprint cache lookup failed, falling back to store",
				zap.String("fingerprint", fingerprint),
				zap.Error(err))
		} else if seen {
			doc, err := g.documents.FindByFingerprint(ctx, fingerprint)
			if err != nil && !errors.Is(err, invoice.ErrNotFound) {
				return nil, false, err
			}
			return doc, true, nil
		}
	}

	doc, err := g.documents.FindByFingerprint(ctx, fingerprint)
	if err != nil {
		if errors.Is(err, invoice.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return doc, true, nil
}

// Mark records the fingerprint in the cache, best-effort
func (g *DedupGate) Mark(ctx context.Context, fingerprint string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Mark(ctx, fingerprint); err != nil {
		g.logger.Warn("Failed to mark fingerprint in cache",
			zap.String("fingerprint", fingerprint),
			zap.Error(err))
	}
}
