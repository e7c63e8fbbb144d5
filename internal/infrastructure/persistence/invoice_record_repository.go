package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/finkraft/expense-exporter/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRecordRepository implements invoice.RecordRepository using GORM
type GormInvoiceRecordRepository struct {
	db *gorm.DB
}

var _ invoice.RecordRepository = (*GormInvoiceRecordRepository)(nil)

// NewGormInvoiceRecordRepository creates a new GormInvoiceRecordRepository
func NewGormInvoiceRecordRepository(db *gorm.DB) *GormInvoiceRecordRepository {
	return &GormInvoiceRecordRepository{db: db}
}

// UpsertByHash inserts the record unless a row with the same file hash
// already exists. An existing row only gets its updated_on refreshed and the
// result is flagged as a duplicate. The unique index on file_hash backs this
// up against concurrent writers.
func (r *GormInvoiceRecordRepository) UpsertByHash(ctx context.Context, rec *invoice.Record) (*invoice.UpsertResult, error) {
	var existing models.InvoiceRecordModel
	err := r.db.WithContext(ctx).
		Where("file_hash = ?", rec.FileHash).
		First(&existing).Error
	if err == nil {
		if err := r.db.WithContext(ctx).
			Model(&models.InvoiceRecordModel{}).
			Where("id = ?", existing.ID).
			Update("updated_on", time.Now().UTC()).Error; err != nil {
			return nil, err
		}
		return &invoice.UpsertResult{ID: existing.ID.String(), IsDuplicate: true}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var model models.InvoiceRecordModel
	model.FromDomain(rec)
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return nil, err
	}
	return &invoice.UpsertResult{ID: model.ID.String(), IsDuplicate: false}, nil
}
