// Package pipeline implements the invoice ingestion pipeline: link
// expansion, fetch, content fingerprinting, duplicate detection, and the
// fan-out writes to object storage, the document store, and the relational
// store.
package pipeline

import "context"

// ObjectStorage is the pipeline's view of the artifact store. ResolveURL
// returns the durable link recorded against a stored artifact; depending on
// the adapter it is either pre-signed or a static container URL.
type ObjectStorage interface {
	UploadFile(ctx context.Context, storageKey, localPath, contentType string) error
	ResolveURL(ctx context.Context, storageKey string) (string, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// Fetcher downloads one invoice URL into destDir and returns the path of
// the downloaded file. A zero-byte result is an error.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, destDir string) (string, error)
}

// FingerprintCache is an optional fast-path seen-set over content
// fingerprints. It only short-circuits; the document store lookup and the
// relational unique index remain authoritative.
type FingerprintCache interface {
	Seen(ctx context.Context, fingerprint string) (bool, error)
	Mark(ctx context.Context, fingerprint string) error
}
