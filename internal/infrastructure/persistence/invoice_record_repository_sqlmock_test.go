package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestRecordRepositoryUpsertLookupErrorPropagates(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormInvoiceRecordRepository(db)

	dbErr := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT \* FROM "hotel_invoice"`).
		WithArgs("eeee4444eeee4444eeee4444eeee4444", 1).
		WillReturnError(dbErr)

	rec := newTestRecord("eeee4444eeee4444eeee4444eeee4444")
	_, err := repo.UpsertByHash(context.Background(), rec)

	assert.ErrorIs(t, err, dbErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryInsertErrorPropagates(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewGormInvoiceDocumentRepository(db)

	dbErr := errors.New("deadlock detected")
	mock.ExpectExec(`INSERT INTO "invoice_documents"`).
		WillReturnError(dbErr)

	doc := newTestDocument("ffff5555ffff5555ffff5555ffff5555")
	_, err := repo.Insert(context.Background(), doc)

	assert.ErrorIs(t, err, dbErr)
}
