package persistence

import (
	"context"
	"errors"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/finkraft/expense-exporter/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceDocumentRepository implements invoice.DocumentRepository using GORM
type GormInvoiceDocumentRepository struct {
	db *gorm.DB
}

var _ invoice.DocumentRepository = (*GormInvoiceDocumentRepository)(nil)

// NewGormInvoiceDocumentRepository creates a new GormInvoiceDocumentRepository
func NewGormInvoiceDocumentRepository(db *gorm.DB) *GormInvoiceDocumentRepository {
	return &GormInvoiceDocumentRepository{db: db}
}

// Insert persists a new document and returns its identifier
func (r *GormInvoiceDocumentRepository) Insert(ctx context.Context, doc *invoice.Document) (string, error) {
	var model models.InvoiceDocumentModel
	if err := model.FromDomain(doc); err != nil {
		return "", err
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return "", err
	}
	return model.ID.String(), nil
}

// FindByFingerprint returns the most recently processed document carrying
// the fingerprint, or invoice.ErrNotFound.
func (r *GormInvoiceDocumentRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*invoice.Document, error) {
	var model models.InvoiceDocumentModel
	if err := r.db.WithContext(ctx).
		Where("fingerprint = ?", fingerprint).
		Order("processed_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invoice.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Delete removes a document by ID. Deleting a missing document is not an
// error so compensation stays idempotent.
func (r *GormInvoiceDocumentRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.InvoiceDocumentModel{}).Error
}
