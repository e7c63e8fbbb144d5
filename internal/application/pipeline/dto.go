package pipeline

import (
	"time"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
)

// Column names the pipeline reads from and writes into the table.
const (
	ColumnStorageLink = "storage_link"
	ColumnStatus      = "status"
	ColumnFingerprint = "content_fingerprint"
)

// Outcome is the per-row result of a pipeline pass. Fingerprint and
// StorageLink are empty when the row failed before the respective stage.
type Outcome struct {
	Status      string
	Fingerprint string
	StorageLink string
}

// Succeeded reports whether the outcome is a successful first-time ingest
func (o Outcome) Succeeded() bool {
	return o.Status == invoice.StatusSuccess
}

// Duplicate reports whether the row resolved to previously ingested content
func (o Outcome) Duplicate() bool {
	return o.Status == invoice.StatusDuplicate
}

// Failed reports whether the outcome is a failure of any stage
func (o Outcome) Failed() bool {
	return invoice.IsFailed(o.Status)
}

// Report aggregates a batch run
type Report struct {
	TotalRows  int
	Succeeded  int
	Duplicates int
	Failed     int
	Elapsed    time.Duration
	OutputPath string
}

// Add folds one row outcome into the report
func (r *Report) Add(o Outcome) {
	r.TotalRows++
	switch {
	case o.Succeeded():
		r.Succeeded++
	case o.Duplicate():
		r.Duplicates++
	default:
		r.Failed++
	}
}

// SuccessRate is the fraction of rows that succeeded or were duplicates.
// Duplicates count as handled: the content is already ingested.
func (r *Report) SuccessRate() float64 {
	if r.TotalRows == 0 {
		return 0
	}
	return float64(r.Succeeded+r.Duplicates) / float64(r.TotalRows)
}
