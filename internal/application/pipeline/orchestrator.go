package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/finkraft/expense-exporter/internal/infrastructure/tabular"
	"go.uber.org/zap"
)

// Orchestrator runs the per-row state machine: resolve link, fetch,
// fingerprint, duplicate gate, then the fan-out writes. Every failure is
// contained to its row; a panic in any stage becomes a FAILED status
// instead of taking the batch down.
type Orchestrator struct {
	fetcher    Fetcher
	gate       *DedupGate
	writer     *RecordWriter
	storage    ObjectStorage
	rowContext RowContext
	baseURL    string
	scratchDir string
	dryRun     bool
	logger     *zap.Logger
}

// OrchestratorParams collects the orchestrator dependencies
type OrchestratorParams struct {
	Fetcher    Fetcher
	Gate       *DedupGate
	Writer     *RecordWriter
	Storage    ObjectStorage
	RowContext RowContext
	BaseURL    string
	ScratchDir string
	DryRun     bool
	Logger     *zap.Logger
}

// NewOrchestrator creates an Orchestrator
func NewOrchestrator(p OrchestratorParams) *Orchestrator {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		fetcher:    p.Fetcher,
		gate:       p.Gate,
		writer:     p.Writer,
		storage:    p.Storage,
		rowContext: p.RowContext,
		baseURL:    p.BaseURL,
		scratchDir: p.ScratchDir,
		dryRun:     p.DryRun,
		logger:     logger,
	}
}

// ResolveLink joins a relative link onto the configured base URL. Absolute
// links pass through untouched.
func ResolveLink(baseURL, link string) string {
	if strings.HasPrefix(link, "http://") || strings.HasPrefix(link, "https://") {
		return link
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(link, "/")
}

// GenericArtifactName is the fallback file name fetchers use when a URL
// carries no usable path segment.
const GenericArtifactName = "invoice.pdf"

// StorageKey builds the object key an artifact is stored under
func StorageKey(source, clientName, fileName string) string {
	return source + "/" + strings.ToUpper(clientName) + "/" + fileName
}

// ProcessRow runs one row through the pipeline and returns its outcome.
// The outcome is always well-formed; errors surface as FAILED statuses.
func (o *Orchestrator) ProcessRow(ctx context.Context, row *tabular.Row, column string) (outcome Outcome) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("Row processing panicked",
				zap.Int("line", row.Line),
				zap.Any("panic", r))
			outcome = Outcome{Status: invoice.FailedStatus("internal error")}
		}
	}()

	// Cells holding only separators or whitespace carry no link at all
	links := SplitLinks(row.Get(column))
	if len(links) == 0 {
		return Outcome{Status: invoice.FailedStatus("Missing " + column)}
	}
	invoiceURL := ResolveLink(o.baseURL, links[0])

	if o.dryRun {
		o.logger.Info("Dry run, skipping row",
			zap.Int("line", row.Line),
			zap.String("url", invoiceURL))
		// Deterministic per-row placeholders keep the output columns
		// stable across dry runs.
		return Outcome{
			Status:      invoice.StatusSuccess,
			Fingerprint: fmt.Sprintf("dry-run-hash-%d", row.Line),
			StorageLink: fmt.Sprintf("https://dry-run.invalid/dry-run-file-%d.pdf", row.Line),
		}
	}

	rowDir := filepath.Join(o.scratchDir, fmt.Sprintf("row-%04d", row.Line))
	if err := os.MkdirAll(rowDir, 0o755); err != nil {
		return o.failed(row.Line, "scratch directory unavailable", err)
	}

	localPath, err := o.fetcher.Fetch(ctx, invoiceURL, rowDir)
	if err != nil {
		return o.failed(row.Line, failureReason(err), err)
	}

	fingerprint, err := FingerprintFile(localPath)
	if err != nil {
		return o.failed(row.Line, invoice.ErrFingerprint.Message, err)
	}

	existing, duplicate, err := o.gate.Check(ctx, fingerprint)
	if err != nil {
		return o.failed(row.Line, "duplicate check failed", err)
	}
	if duplicate {
		o.cleanup(rowDir)
		outcome := Outcome{Status: invoice.StatusDuplicate, Fingerprint: fingerprint}
		if existing != nil {
			outcome.StorageLink = existing.StorageLink
		}
		return outcome
	}

	fileName := filepath.Base(localPath)
	if fileName == GenericArtifactName {
		// Generic names would collide across rows under the same key prefix
		fileName = fmt.Sprintf("invoice_%d.pdf", row.Line)
	}
	storageKey := StorageKey(o.rowContext.Source, o.rowContext.ClientName, fileName)
	if err := o.storage.UploadFile(ctx, storageKey, localPath, "application/pdf"); err != nil {
		return o.failed(row.Line, invoice.ErrUploadFailed.Message, err)
	}

	storageLink, err := o.storage.ResolveURL(ctx, storageKey)
	if err != nil {
		o.compensateObject(ctx, storageKey)
		return o.failed(row.Line, invoice.ErrUploadFailed.Message, err)
	}

	doc := BuildDocument(row.Data, o.rowContext, invoiceURL, storageLink, fingerprint)
	rec := BuildRecord(row.Data, o.rowContext, storageLink, fingerprint)

	lateDuplicate, err := o.writer.Persist(ctx, doc, rec, storageKey)
	if err != nil {
		return o.failed(row.Line, failureReason(err), err)
	}
	if lateDuplicate {
		o.gate.Mark(ctx, fingerprint)
		o.cleanup(rowDir)
		return Outcome{Status: invoice.StatusDuplicate, Fingerprint: fingerprint}
	}

	o.gate.Mark(ctx, fingerprint)
	o.cleanup(rowDir)

	o.logger.Info("Row ingested",
		zap.Int("line", row.Line),
		zap.String("fingerprint", fingerprint),
		zap.String("storage_key", storageKey))
	return Outcome{
		Status:      invoice.StatusSuccess,
		Fingerprint: fingerprint,
		StorageLink: storageLink,
	}
}

// cleanup removes row scratch files. Failed rows keep theirs so the
// artifact can be inspected.
func (o *Orchestrator) cleanup(rowDir string) {
	if err := os.RemoveAll(rowDir); err != nil {
		o.logger.Warn("Failed to clean scratch directory",
			zap.String("dir", rowDir),
			zap.Error(err))
	}
}

func (o *Orchestrator) compensateObject(ctx context.Context, storageKey string) {
	if err := o.storage.DeleteObject(ctx, storageKey); err != nil {
		o.logger.Error("Failed to compensate object upload",
			zap.String("storage_key", storageKey),
			zap.Error(err))
	}
}

func (o *Orchestrator) failed(line int, reason string, err error) Outcome {
	o.logger.Warn("Row failed",
		zap.Int("line", line),
		zap.String("reason", reason),
		zap.Error(err))
	return Outcome{Status: invoice.FailedStatus(reason)}
}

// failureReason prefers the stable domain error message over the raw chain
func failureReason(err error) string {
	var domainErr *invoice.Error
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
