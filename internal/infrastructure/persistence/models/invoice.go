// Package models defines the GORM persistence models and their conversions
// to and from the domain types.
package models

import (
	"encoding/json"
	"time"

	"github.com/finkraft/expense-exporter/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceRecordModel is the normalized relational row. FileHash carries a
// unique index so a repeated insert surfaces as a duplicate, not a second
// row.
type InvoiceRecordModel struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primary_key"`
	SourceID           string           `gorm:"column:source_id;size:255"`
	Source             string           `gorm:"size:100;not null"`
	ClientName         string           `gorm:"size:255;not null"`
	FileURL            string           `gorm:"column:file_url;type:text;not null"`
	FileHash           string           `gorm:"column:file_hash;size:32;not null;uniqueIndex:idx_hotel_invoice_file_hash"`
	Status             string           `gorm:"size:50;not null"`
	MatchStatus        *string          `gorm:"size:50"`
	BookingID          *string          `gorm:"column:booking_id;size:255"`
	ClientGSTIN        *string          `gorm:"column:client_gstin;size:15"`
	HotelGSTIN         *string          `gorm:"column:hotel_gstin;size:15"`
	InvoiceNumber      *string          `gorm:"size:255"`
	InvoiceDate        *time.Time       `gorm:"type:date"`
	GSTAmount          *decimal.Decimal `gorm:"column:gst_amount;type:numeric(14,2)"`
	Remarks            string           `gorm:"type:text"`
	FollowupTrackingID *string          `gorm:"column:followup_tracking_id;size:255"`
	UpdatedOn          time.Time        `gorm:"column:updated_on;not null"`
}

// TableName overrides the table name
func (InvoiceRecordModel) TableName() string {
	return "hotel_invoice"
}

// ToDomain converts the model to a domain Record
func (m *InvoiceRecordModel) ToDomain() *invoice.Record {
	return &invoice.Record{
		ID:                 m.ID,
		SourceID:           m.SourceID,
		Source:             m.Source,
		ClientName:         m.ClientName,
		FileURL:            m.FileURL,
		FileHash:           m.FileHash,
		Status:             m.Status,
		MatchStatus:        m.MatchStatus,
		BookingID:          m.BookingID,
		ClientGSTIN:        m.ClientGSTIN,
		HotelGSTIN:         m.HotelGSTIN,
		InvoiceNumber:      m.InvoiceNumber,
		InvoiceDate:        m.InvoiceDate,
		GSTAmount:          m.GSTAmount,
		Remarks:            m.Remarks,
		FollowupTrackingID: m.FollowupTrackingID,
		UpdatedOn:          m.UpdatedOn,
	}
}

// FromDomain populates the model from a domain Record
func (m *InvoiceRecordModel) FromDomain(r *invoice.Record) {
	m.ID = r.ID
	m.SourceID = r.SourceID
	m.Source = r.Source
	m.ClientName = r.ClientName
	m.FileURL = r.FileURL
	m.FileHash = r.FileHash
	m.Status = r.Status
	m.MatchStatus = r.MatchStatus
	m.BookingID = r.BookingID
	m.ClientGSTIN = r.ClientGSTIN
	m.HotelGSTIN = r.HotelGSTIN
	m.InvoiceNumber = r.InvoiceNumber
	m.InvoiceDate = r.InvoiceDate
	m.GSTAmount = r.GSTAmount
	m.Remarks = r.Remarks
	m.FollowupTrackingID = r.FollowupTrackingID
	m.UpdatedOn = r.UpdatedOn
}

// InvoiceDocumentModel is the denormalized document-store row. The source
// columns travel as a JSON payload; the named columns are the derived
// fields the pipeline queries by.
type InvoiceDocumentModel struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key"`
	Fingerprint string         `gorm:"size:32;not null;index:idx_invoice_documents_fingerprint"`
	StorageLink string         `gorm:"column:storage_link;type:text"`
	InvoiceURL  string         `gorm:"column:invoice_url;type:text"`
	Status      string         `gorm:"size:100;not null"`
	Source      string         `gorm:"size:100;not null"`
	ClientName  string         `gorm:"size:255;not null"`
	CorpName    string         `gorm:"column:corp_name;size:255"`
	ProcessedAt time.Time      `gorm:"column:processed_at;not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb"`
}

// TableName overrides the table name
func (InvoiceDocumentModel) TableName() string {
	return "invoice_documents"
}

// ToDomain converts the model to a domain Document
func (m *InvoiceDocumentModel) ToDomain() (*invoice.Document, error) {
	fields := make(map[string]string)
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &fields); err != nil {
			return nil, err
		}
	}
	return &invoice.Document{
		ID:          m.ID,
		Fingerprint: m.Fingerprint,
		StorageLink: m.StorageLink,
		InvoiceURL:  m.InvoiceURL,
		Status:      m.Status,
		Source:      m.Source,
		ClientName:  m.ClientName,
		CorpName:    m.CorpName,
		ProcessedAt: m.ProcessedAt,
		Fields:      fields,
	}, nil
}

// FromDomain populates the model from a domain Document
func (m *InvoiceDocumentModel) FromDomain(d *invoice.Document) error {
	payload, err := json.Marshal(d.Fields)
	if err != nil {
		return err
	}
	m.ID = d.ID
	m.Fingerprint = d.Fingerprint
	m.StorageLink = d.StorageLink
	m.InvoiceURL = d.InvoiceURL
	m.Status = d.Status
	m.Source = d.Source
	m.ClientName = d.ClientName
	m.CorpName = d.CorpName
	m.ProcessedAt = d.ProcessedAt
	m.Payload = datatypes.JSON(payload)
	return nil
}
