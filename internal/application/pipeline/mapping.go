package pipeline

import (
	"time"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Source column names the relational mapping reads. Columns the input table
// does not carry simply map to NULL.
const (
	colClientGSTIN   = "CLIENT_GST_NO"
	colHotelGSTIN    = "HOTEL_GST_NUMBER"
	colInvoiceNumber = "Q2T_INVOICE_NO"
	colInvoiceDate   = "HOTEL_INVOICE_DATE"
	colInvoiceAmount = "TOTAL INVOICE AMOUNT"
	colBookingID     = "BOOKING_ID"
)

// invoiceDateFormats are tried in order when parsing the invoice date cell
var invoiceDateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02 15:04:05",
}

// RowContext carries the batch-level identity every document and record is
// stamped with.
type RowContext struct {
	Source     string
	ClientName string
}

// BuildDocument builds the denormalized document for one processed row
func BuildDocument(fields map[string]string, rc RowContext, invoiceURL, storageLink, fingerprint string) *invoice.Document {
	doc := invoice.NewDocument(fields)
	doc.Fingerprint = fingerprint
	doc.StorageLink = storageLink
	doc.InvoiceURL = invoiceURL
	doc.Status = invoice.StatusSuccess
	doc.Source = rc.Source
	doc.ClientName = rc.ClientName
	doc.CorpName = rc.ClientName
	return doc
}

// BuildRecord maps the source columns into a normalized relational record.
// Unparseable dates and amounts map to NULL rather than failing the row;
// the raw values survive in the document payload. SourceID is filled at
// persist time from the inserted document id.
func BuildRecord(fields map[string]string, rc RowContext, fileURL, fileHash string) *invoice.Record {
	rec := &invoice.Record{
		ID:         uuid.New(),
		Source:     rc.Source,
		ClientName: rc.ClientName,
		FileURL:    fileURL,
		FileHash:   fileHash,
		Status:     invoice.RecordStatusPending,
		Remarks:    "Processed from " + rc.ClientName,
		UpdatedOn:  time.Now().UTC(),
	}

	rec.ClientGSTIN = optionalString(fields[colClientGSTIN])
	rec.HotelGSTIN = optionalString(fields[colHotelGSTIN])
	rec.InvoiceNumber = optionalString(fields[colInvoiceNumber])
	rec.BookingID = optionalString(fields[colBookingID])

	if raw := fields[colInvoiceDate]; raw != "" {
		for _, format := range invoiceDateFormats {
			if parsed, err := time.Parse(format, raw); err == nil {
				rec.InvoiceDate = &parsed
				break
			}
		}
	}

	if raw := fields[colInvoiceAmount]; raw != "" {
		if amount, err := decimal.NewFromString(raw); err == nil {
			rec.GSTAmount = &amount
		}
	}

	return rec
}

func optionalString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
