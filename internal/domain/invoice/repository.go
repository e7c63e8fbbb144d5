package invoice

import "context"

// DocumentRepository persists denormalized invoice documents. Insert is a
// pure insert; there is no update path. FindByFingerprint returns
// ErrNotFound when no document carries the fingerprint.
type DocumentRepository interface {
	Insert(ctx context.Context, doc *Document) (string, error)
	FindByFingerprint(ctx context.Context, fingerprint string) (*Document, error)
	Delete(ctx context.Context, id string) error
}

// RecordRepository persists normalized invoice records with upsert-by-hash
// semantics: an existing row with the same FileHash gets its UpdatedOn
// refreshed and is reported as a duplicate instead of inserting.
type RecordRepository interface {
	UpsertByHash(ctx context.Context, rec *Record) (*UpsertResult, error)
}
