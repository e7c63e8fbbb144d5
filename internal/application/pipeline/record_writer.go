package pipeline

import (
	"context"
	"fmt"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"go.uber.org/zap"
)

// RecordWriter performs the fan-out persistence of one processed row: the
// document store insert followed by the relational upsert. When a later
// write fails, the earlier writes are compensated so no sink keeps a
// half-ingested row. Compensation failures are logged and never mask the
// original error.
type RecordWriter struct {
	documents invoice.DocumentRepository
	records   invoice.RecordRepository
	storage   ObjectStorage
	logger    *zap.Logger
}

// NewRecordWriter creates a RecordWriter
func NewRecordWriter(documents invoice.DocumentRepository, records invoice.RecordRepository, storage ObjectStorage, logger *zap.Logger) *RecordWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordWriter{
		documents: documents,
		records:   records,
		storage:   storage,
		logger:    logger,
	}
}

// Persist writes the document and the record for an artifact already
// uploaded under storageKey. Returns whether the relational unique index
// reported the hash as already present.
func (w *RecordWriter) Persist(ctx context.Context, doc *invoice.Document, rec *invoice.Record, storageKey string) (bool, error) {
	docID, err := w.documents.Insert(ctx, doc)
	if err != nil {
		w.compensateObject(ctx, storageKey)
		return false, fmt.Errorf("%w: %v", invoice.ErrDocumentInsert, err)
	}

	// The relational row references its document counterpart by id
	rec.SourceID = docID

	result, err := w.records.UpsertByHash(ctx, rec)
	if err != nil {
		w.compensateDocument(ctx, docID)
		w.compensateObject(ctx, storageKey)
		return false, fmt.Errorf("%w: %v", invoice.ErrRecordUpsert, err)
	}

	if result.IsDuplicate {
		// The hash slipped past the gate, usually a concurrent writer. The
		// relational row already points at the earlier artifact, so the
		// fresh document and object are redundant.
		w.logger.Info("Relational unique index caught duplicate hash",
			zap.String("file_hash", rec.FileHash),
			zap.String("existing_id", result.ID))
		w.compensateDocument(ctx, docID)
		w.compensateObject(ctx, storageKey)
		return true, nil
	}

	return false, nil
}

func (w *RecordWriter) compensateDocument(ctx context.Context, docID string) {
	if err := w.documents.Delete(ctx, docID); err != nil {
		w.logger.Error("Failed to compensate document insert",
			zap.String("document_id", docID),
			zap.Error(err))
	}
}

func (w *RecordWriter) compensateObject(ctx context.Context, storageKey string) {
	if err := w.storage.DeleteObject(ctx, storageKey); err != nil {
		w.logger.Error("Failed to compensate object upload",
			zap.String("storage_key", storageKey),
			zap.Error(err))
	}
}
