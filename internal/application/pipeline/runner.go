package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/finkraft/expense-exporter/internal/infrastructure/tabular"
	"go.uber.org/zap"
)

// Runner drives one batch: load the input table, expand multi-link cells,
// process every row, and write the annotated table back out. Row failures
// never abort the batch; only a missing attachment column does, before any
// row runs.
type Runner struct {
	orchestrator     *Orchestrator
	storage          ObjectStorage
	attachmentColumn string
	inputPath        string
	outputPath       string
	rowContext       RowContext
	dryRun           bool
	logger           *zap.Logger
}

// RunnerParams collects the runner dependencies
type RunnerParams struct {
	Orchestrator     *Orchestrator
	Storage          ObjectStorage
	AttachmentColumn string
	InputPath        string
	OutputPath       string
	RowContext       RowContext
	DryRun           bool
	Logger           *zap.Logger
}

// NewRunner creates a Runner. OutputPath empty means the input file is
// rewritten in place.
func NewRunner(p RunnerParams) *Runner {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	outputPath := p.OutputPath
	if outputPath == "" {
		outputPath = p.InputPath
	}
	return &Runner{
		orchestrator:     p.Orchestrator,
		storage:          p.Storage,
		attachmentColumn: p.AttachmentColumn,
		inputPath:        p.InputPath,
		outputPath:       outputPath,
		rowContext:       p.RowContext,
		dryRun:           p.DryRun,
		logger:           logger,
	}
}

// Run executes the batch and returns the aggregate report. The report is
// valid even when Run returns an error after rows started processing; the
// error then describes why the batch stopped early.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	table, err := tabular.Load(r.inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load input table: %w", err)
	}

	if !table.HasColumn(r.attachmentColumn) {
		return nil, fmt.Errorf("%w: %q", invoice.ErrMissingColumn, r.attachmentColumn)
	}

	expanded := ExpandRows(table, r.attachmentColumn)
	expanded.EnsureColumns(ColumnStorageLink, ColumnStatus, ColumnFingerprint)

	r.logger.Info("Batch started",
		zap.String("input", r.inputPath),
		zap.Int("source_rows", table.Len()),
		zap.Int("expanded_rows", expanded.Len()))

	report := &Report{OutputPath: r.outputPath}
	var runErr error
	for _, row := range expanded.Rows {
		if err := ctx.Err(); err != nil {
			runErr = fmt.Errorf("batch interrupted: %w", err)
			break
		}

		outcome := r.orchestrator.ProcessRow(ctx, row, r.attachmentColumn)
		row.Set(ColumnStatus, outcome.Status)
		row.Set(ColumnStorageLink, outcome.StorageLink)
		row.Set(ColumnFingerprint, outcome.Fingerprint)
		report.Add(outcome)
	}

	if err := tabular.Save(expanded, r.outputPath); err != nil {
		return report, fmt.Errorf("failed to save output table: %w", err)
	}

	r.uploadOutput(ctx)

	report.Elapsed = time.Since(start)
	r.logger.Info("Batch finished",
		zap.Int("total", report.TotalRows),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("duplicates", report.Duplicates),
		zap.Int("failed", report.Failed),
		zap.Duration("elapsed", report.Elapsed))

	return report, runErr
}

// uploadOutput pushes the annotated table next to the artifacts. Best
// effort: the local output file is the source of truth.
func (r *Runner) uploadOutput(ctx context.Context) {
	if r.dryRun {
		return
	}

	name := filepath.Base(r.outputPath)
	key := StorageKey(r.rowContext.Source, r.rowContext.ClientName, "processed/"+name)
	if err := r.storage.UploadFile(ctx, key, r.outputPath, contentTypeForTable(name)); err != nil {
		r.logger.Warn("Failed to upload output table",
			zap.String("key", key),
			zap.Error(err))
		return
	}
	r.logger.Info("Output table uploaded", zap.String("key", key))
}

func contentTypeForTable(name string) string {
	switch filepath.Ext(name) {
	case ".xlsx", ".xls":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv"
	}
}
