// Package domain contains persistence models for monthly invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusFinalized InvoiceStatus = "FINALIZED"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusVoid      InvoiceStatus = "VOID"
)

// Invoice is the persisted monthly invoice for one company. One invoice per
// (company, year, month).
type Invoice struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_invoice_company_period" json:"company_id"`
	Year      int          `gorm:"not null;uniqueIndex:ux_invoice_company_period" json:"year"`
	Month     int          `gorm:"not null;uniqueIndex:ux_invoice_company_period" json:"month"`

	InvoiceNumber *string       `gorm:"type:text;uniqueIndex" json:"invoice_number,omitempty"`
	Status        InvoiceStatus `gorm:"type:text;not null;default:'DRAFT'" json:"status"`
	TotalCents    int64         `gorm:"not null;default:0" json:"total_cents"`
	Currency      string        `gorm:"type:text;not null" json:"currency"`

	IssuedAt *time.Time `json:"issued_at,omitempty"`
	DueAt    *time.Time `json:"due_at,omitempty"`
	SentAt   *time.Time `json:"sent_at,omitempty"`

	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one daily line on an invoice, copied verbatim from the
// billing statement at generation time.
type InvoiceItem struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`

	// Date is the local calendar day, yyyy-MM-dd.
	Date           string `gorm:"type:text;not null" json:"date"`
	ActualCount    int    `gorm:"not null" json:"actual_count"`
	BilledCount    int    `gorm:"not null" json:"billed_count"`
	UnitPriceCents int64  `gorm:"not null" json:"unit_price_cents"`
	SubtotalCents  int64  `gorm:"not null" json:"subtotal_cents"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
