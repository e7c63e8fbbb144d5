package pipeline

import (
	"context"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/stretchr/testify/mock"
)

// MockDocumentRepository is a testify mock for invoice.DocumentRepository
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Insert(ctx context.Context, doc *invoice.Document) (string, error) {
	args := m.Called(ctx, doc)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) FindByFingerprint(ctx context.Context, fingerprint string) (*invoice.Document, error) {
	args := m.Called(ctx, fingerprint)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.Document), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRecordRepository is a testify mock for invoice.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) UpsertByHash(ctx context.Context, rec *invoice.Record) (*invoice.UpsertResult, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoice.UpsertResult), args.Error(1)
}

// MockObjectStorage is a testify mock for ObjectStorage
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) UploadFile(ctx context.Context, storageKey, localPath, contentType string) error {
	args := m.Called(ctx, storageKey, localPath, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) ResolveURL(ctx context.Context, storageKey string) (string, error) {
	args := m.Called(ctx, storageKey)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	args := m.Called(ctx, storageKey)
	return args.Error(0)
}

func (m *MockObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	args := m.Called(ctx, storageKey)
	return args.Bool(0), args.Error(1)
}

// MockFingerprintCache is a testify mock for FingerprintCache
type MockFingerprintCache struct {
	mock.Mock
}

func (m *MockFingerprintCache) Seen(ctx context.Context, fingerprint string) (bool, error) {
	args := m.Called(ctx, fingerprint)
	return args.Bool(0), args.Error(1)
}

func (m *MockFingerprintCache) Mark(ctx context.Context, fingerprint string) error {
	args := m.Called(ctx, fingerprint)
	return args.Error(0)
}

// MockFetcher is a testify mock for Fetcher
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	args := m.Called(ctx, rawURL, destDir)
	return args.String(0), args.Error(1)
}
