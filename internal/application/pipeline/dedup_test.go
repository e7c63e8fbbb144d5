package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testFingerprint = "900150983cd24fb0d6963f7d28e17f72"

func TestDedupGateNewFingerprint(t *testing.T) {
	docs := new(MockDocumentRepository)
	cache := new(MockFingerprintCache)
	cache.On("Seen", mock.Anything, testFingerprint).Return(false, nil)
	docs.On("FindByFingerprint", mock.Anything, testFingerprint).Return(nil, invoice.ErrNotFound)

	gate := NewDedupGate(cache, docs, nil)
	doc, duplicate, err := gate.Check(context.Background(), testFingerprint)

	require.NoError(t, err)
	assert.False(t, duplicate)
	assert.Nil(t, doc)
}

func TestDedupGateCacheHitShortCircuits(t *testing.T) {
	existing := invoice.NewDocument(nil)
	existing.Fingerprint = testFingerprint
	existing.StorageLink = "https://files.finkraft.ai/tmc-portal/ACME/a.pdf"

	docs := new(MockDocumentRepository)
	cache := new(MockFingerprintCache)
	cache.On("Seen", mock.Anything, testFingerprint).Return(true, nil)
	docs.On("FindByFingerprint", mock.Anything, testFingerprint).Return(existing, nil)

	gate := NewDedupGate(cache, docs, nil)
	doc, duplicate, err := gate.Check(context.Background(), testFingerprint)

	require.NoError(t, err)
	assert.True(t, duplicate)
	require.NotNil(t, doc)
	assert.Equal(t, existing.StorageLink, doc.StorageLink)
}

func TestDedupGateStoreHitWithoutCache(t *testing.T) {
	existing := invoice.NewDocument(nil)
	existing.Fingerprint = testFingerprint

	docs := new(MockDocumentRepository)
	docs.On("FindByFingerprint", mock.Anything, testFingerprint).Return(existing, nil)

	gate := NewDedupGate(nil, docs, nil)
	doc, duplicate, err := gate.Check(context.Background(), testFingerprint)

	require.NoError(t, err)
	assert.True(t, duplicate)
	assert.NotNil(t, doc)
}

func TestDedupGateCacheErrorFallsBackToStore(t *testing.T) {
	docs := new(MockDocumentRepository)
	cache := new(MockFingerprintCache)
	cache.On("Seen", mock.Anything, testFingerprint).Return(false, errors.New("redis down"))
	docs.On("FindByFingerprint", mock.Anything, testFingerprint).Return(nil, invoice.ErrNotFound)

	gate := NewDedupGate(cache, docs, nil)
	_, duplicate, err := gate.Check(context.Background(), testFingerprint)

	require.NoError(t, err, "cache failure must not fail the row")
	assert.False(t, duplicate)
	docs.AssertCalled(t, "FindByFingerprint", mock.Anything, testFingerprint)
}

func TestDedupGateStoreErrorPropagates(t *testing.T) {
	dbErr := errors.New("connection refused")
	docs := new(MockDocumentRepository)
	docs.On("FindByFingerprint", mock.Anything, testFingerprint).Return(nil, dbErr)

	gate := NewDedupGate(nil, docs, nil)
	_, _, err := gate.Check(context.Background(), testFingerprint)

	assert.ErrorIs(t, err, dbErr)
}

func TestDedupGateCacheHitWithEvictedStoreRow(t *testing.T) {
	docs := new(MockDocumentRepository)
	cache := new(MockFingerprintCache)
	cache.On("Seen", mock.Anything, testFingerprint).Return(true, nil)
	docs.On("FindByFingerprint", mock.Anything, testFingerprint).Return(nil, invoice.ErrNotFound)

	gate := NewDedupGate(cache, docs, nil)
	doc, duplicate, err := gate.Check(context.Background(), testFingerprint)

	require.NoError(t, err)
	assert.True(t, duplicate, "cache hit counts even without a store row")
	assert.Nil(t, doc)
}

func TestDedupGateMarkIsBestEffort(t *testing.T) {
	cache := new(MockFingerprintCache)
	cache.On("Mark", mock.Anything, testFingerprint).Return(errors.New("redis down"))

	gate := NewDedupGate(cache, new(MockDocumentRepository), nil)
	gate.Mark(context.Background(), testFingerprint) // must not panic

	cache.AssertExpectations(t)
}
