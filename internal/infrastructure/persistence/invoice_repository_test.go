package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/finkraft/expense-exporter/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.InvoiceRecordModel{}, &models.InvoiceDocumentModel{}))
	return db
}

func newTestDocument(fingerprint string) *invoice.Document {
	doc := invoice.NewDocument(map[string]string{
		"BOOKING_ID":     "BK-1001",
		"Q2T_INVOICE_NO": "INV-42",
	})
	doc.Fingerprint = fingerprint
	doc.StorageLink = "https://files.finkraft.ai/tmc-portal/ACME/INV-42.pdf"
	doc.InvoiceURL = "https://portal.example.com/INV-42.pdf"
	doc.Status = invoice.StatusSuccess
	doc.Source = "tmc-portal"
	doc.ClientName = "acme"
	doc.CorpName = "acme"
	return doc
}

func newTestRecord(hash string) *invoice.Record {
	booking := "BK-1001"
	amount := decimal.NewFromFloat(1180.50)
	return &invoice.Record{
		ID:         uuid.New(),
		SourceID:   uuid.NewString(),
		Source:     "tmc-portal",
		ClientName: "acme",
		FileURL:    "https://files.finkraft.ai/tmc-portal/ACME/INV-42.pdf",
		FileHash:   hash,
		Status:     invoice.RecordStatusPending,
		BookingID:  &booking,
		GSTAmount:  &amount,
		Remarks:    "Processed from acme",
		UpdatedOn:  time.Now().UTC(),
	}
}

func TestDocumentRepositoryInsertAndFind(t *testing.T) {
	repo := NewGormInvoiceDocumentRepository(setupTestDB(t))
	ctx := context.Background()

	doc := newTestDocument("d41d8cd98f00b204e9800998ecf8427e")
	id, err := repo.Insert(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, doc.ID.String(), id)

	found, err := repo.FindByFingerprint(ctx, doc.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, found.ID)
	assert.Equal(t, doc.StorageLink, found.StorageLink)
	assert.Equal(t, "BK-1001", found.Fields["BOOKING_ID"])
	assert.Equal(t, "INV-42", found.Fields["Q2T_INVOICE_NO"])
}

func TestDocumentRepositoryFindByFingerprintNotFound(t *testing.T) {
	repo := NewGormInvoiceDocumentRepository(setupTestDB(t))

	_, err := repo.FindByFingerprint(context.Background(), "no-such-fingerprint")
	assert.ErrorIs(t, err, invoice.ErrNotFound)
}

func TestDocumentRepositoryDelete(t *testing.T) {
	repo := NewGormInvoiceDocumentRepository(setupTestDB(t))
	ctx := context.Background()

	doc := newTestDocument("9e107d9d372bb6826bd81d3542a419d6")
	id, err := repo.Insert(ctx, doc)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))

	_, err = repo.FindByFingerprint(ctx, doc.Fingerprint)
	assert.ErrorIs(t, err, invoice.ErrNotFound)

	// Deleting again is a no-op
	assert.NoError(t, repo.Delete(ctx, id))
}

func TestRecordRepositoryUpsertInsertsNewHash(t *testing.T) {
	repo := NewGormInvoiceRecordRepository(setupTestDB(t))

	rec := newTestRecord("aaaa0000aaaa0000aaaa0000aaaa0000")
	result, err := repo.UpsertByHash(context.Background(), rec)
	require.NoError(t, err)
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, rec.ID.String(), result.ID)
}

func TestRecordRepositoryUpsertDetectsDuplicateHash(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRecordRepository(db)
	ctx := context.Background()

	first := newTestRecord("bbbb1111bbbb1111bbbb1111bbbb1111")
	firstResult, err := repo.UpsertByHash(ctx, first)
	require.NoError(t, err)
	require.False(t, firstResult.IsDuplicate)

	var before models.InvoiceRecordModel
	require.NoError(t, db.Where("file_hash = ?", first.FileHash).First(&before).Error)

	time.Sleep(10 * time.Millisecond)

	second := newTestRecord(first.FileHash)
	secondResult, err := repo.UpsertByHash(ctx, second)
	require.NoError(t, err)

	assert.True(t, secondResult.IsDuplicate)
	assert.Equal(t, firstResult.ID, secondResult.ID, "duplicate reports the existing row")

	var count int64
	require.NoError(t, db.Model(&models.InvoiceRecordModel{}).Where("file_hash = ?", first.FileHash).Count(&count).Error)
	assert.EqualValues(t, 1, count, "no second row inserted")

	var after models.InvoiceRecordModel
	require.NoError(t, db.Where("file_hash = ?", first.FileHash).First(&after).Error)
	assert.True(t, after.UpdatedOn.After(before.UpdatedOn), "updated_on refreshed")
}

func TestRecordRepositoryDistinctHashesInsertSeparately(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInvoiceRecordRepository(db)
	ctx := context.Background()

	for _, hash := range []string{
		"cccc2222cccc2222cccc2222cccc2222",
		"dddd3333dddd3333dddd3333dddd3333",
	} {
		result, err := repo.UpsertByHash(ctx, newTestRecord(hash))
		require.NoError(t, err)
		assert.False(t, result.IsDuplicate)
	}

	var count int64
	require.NoError(t, db.Model(&models.InvoiceRecordModel{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
