package storage

import (
	"context"
	"errors"
	"os"

	"github.com/finkraft/expense-exporter/internal/application/pipeline"
)

// StubObjectStorage is a placeholder object store for local development and
// dry runs. Nothing leaves the machine; uploads only validate that the
// local file is readable.
type StubObjectStorage struct {
	// BaseURL is the base under which resolved links are fabricated
	BaseURL string

	uploaded map[string]bool
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage() *StubObjectStorage {
	return &StubObjectStorage{
		BaseURL:  "https://storage.example.com",
		uploaded: make(map[string]bool),
	}
}

// Ensure StubObjectStorage implements pipeline.ObjectStorage
var _ pipeline.ObjectStorage = (*StubObjectStorage)(nil)

// UploadFile verifies the local file is readable and records the key
func (s *StubObjectStorage) UploadFile(ctx context.Context, storageKey, localPath, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	if _, err := os.Stat(localPath); err != nil {
		return err
	}
	s.uploaded[storageKey] = true
	return nil
}

// ResolveURL fabricates a deterministic link under BaseURL
func (s *StubObjectStorage) ResolveURL(ctx context.Context, storageKey string) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}
	return s.BaseURL + "/" + storageKey, nil
}

// DeleteObject forgets a recorded key
func (s *StubObjectStorage) DeleteObject(ctx context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}
	delete(s.uploaded, storageKey)
	return nil
}

// ObjectExists reports whether the key was uploaded through this instance
func (s *StubObjectStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	return s.uploaded[storageKey], nil
}
