package domain

import (
	"context"
	"errors"
	"time"
)

type GenerateInvoiceRequest struct {
	CompanyID string
	Year      int
	Month     time.Month
}

type ListInvoiceRequest struct {
	CompanyID string
	Status    *InvoiceStatus
	Year      *int
}

type InvoiceWithItems struct {
	Invoice Invoice       `json:"invoice"`
	Items   []InvoiceItem `json:"items"`
}

type Service interface {
	// Generate computes the statement for the period and persists it as a
	// draft invoice. Regenerating an existing draft replaces its items;
	// finalized invoices are immutable.
	Generate(context.Context, GenerateInvoiceRequest) (InvoiceWithItems, error)
	// Finalize assigns an invoice number and freezes the invoice.
	Finalize(ctx context.Context, id string) (Invoice, error)
	// Send renders the invoice PDF and emails it to the company contact.
	Send(ctx context.Context, id string) (Invoice, error)
	GetByID(ctx context.Context, id string) (InvoiceWithItems, error)
	List(context.Context, ListInvoiceRequest) ([]Invoice, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrNotDraft          = errors.New("not_draft")
	ErrNotFinalized      = errors.New("not_finalized")
	ErrAlreadyFinalized  = errors.New("already_finalized")
	ErrMissingRecipient  = errors.New("missing_recipient")
)
