package invoice

// Error represents a domain-level error with a stable code.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *Error) Error() string {
	return e.Message
}

// NewError creates a new domain error
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Common pipeline errors. Row-level errors translate into a FAILED status on
// the row; ErrMissingColumn is batch-level and aborts before any row runs.
var (
	ErrNotFound        = NewError("NOT_FOUND", "Resource not found")
	ErrMissingColumn   = NewError("MISSING_COLUMN", "Attachment column not present in input table")
	ErrDownloadFailed  = NewError("DOWNLOAD_FAILED", "PDF download failed")
	ErrEmptyArtifact   = NewError("EMPTY_ARTIFACT", "Downloaded file is empty")
	ErrFingerprint     = NewError("FINGERPRINT_FAILED", "Failed to fingerprint downloaded file")
	ErrUploadFailed    = NewError("UPLOAD_FAILED", "Object storage upload failed")
	ErrDocumentInsert  = NewError("DOCUMENT_INSERT_FAILED", "Document store insert failed")
	ErrRecordUpsert    = NewError("RECORD_UPSERT_FAILED", "Relational store upsert failed")
	ErrDuplicate       = NewError("DUPLICATE", "File already processed")
	ErrUnsupportedFile = NewError("UNSUPPORTED_FILE", "Unsupported input file format")
)
