// Package invoice contains the domain model for ingested hotel invoices:
// the denormalized document written to the document store, the normalized
// record written to the relational store, and the processing statuses that
// annotate each row of the input table.
package invoice

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Row processing statuses written into the output table's status column.
const (
	StatusSuccess   = "SUCCESS"
	StatusDuplicate = "DUPLICATE: File already processed"
	failedPrefix    = "FAILED: "
)

// RecordStatusPending is the initial status of a relational record; a later
// enrichment stage moves it forward.
const RecordStatusPending = "PENDING"

// FailedStatus builds a row status string for a failed stage.
func FailedStatus(reason string) string {
	return failedPrefix + reason
}

// IsFailed reports whether a row status string denotes a failure.
func IsFailed(status string) bool {
	return strings.HasPrefix(status, failedPrefix)
}

// Document is the denormalized unit of work persisted to the document store.
// Fields carries every column of the source row verbatim; the named fields
// are derived by the pipeline.
type Document struct {
	ID          uuid.UUID
	Fingerprint string
	StorageLink string
	InvoiceURL  string
	Status      string
	Source      string
	ClientName  string
	CorpName    string
	ProcessedAt time.Time
	Fields      map[string]string
}

// NewDocument creates a Document with a fresh identity and a defensive copy
// of the source columns.
func NewDocument(fields map[string]string) *Document {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Document{
		ID:          uuid.New(),
		ProcessedAt: time.Now().UTC(),
		Fields:      copied,
	}
}

// Record is the normalized relational row describing the same unit of work
// as a Document. SourceID holds the id of that Document. FileHash is unique
// across the table; a second insert with the same hash only refreshes
// UpdatedOn.
type Record struct {
	ID                 uuid.UUID
	SourceID           string
	Source             string
	ClientName         string
	FileURL            string
	FileHash           string
	Status             string
	MatchStatus        *string
	BookingID          *string
	ClientGSTIN        *string
	HotelGSTIN         *string
	InvoiceNumber      *string
	InvoiceDate        *time.Time
	GSTAmount          *decimal.Decimal
	Remarks            string
	FollowupTrackingID *string
	UpdatedOn          time.Time
}

// UpsertResult is the outcome of an upsert-by-hash against the relational
// store.
type UpsertResult struct {
	ID          string
	IsDuplicate bool
}
