package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/cantina/pkg/db/pagination"
)

type RegisterConsumptionRequest struct {
	CompanyID      string         `json:"company_id"`
	EmployeeID     string         `json:"employee_id"`
	Source         string         `json:"source"`
	OccurredAt     time.Time      `json:"occurred_at"`
	IdempotencyKey *string        `json:"idempotency_key"`
	Metadata       map[string]any `json:"metadata"`
}

type ListConsumptionRequest struct {
	CompanyID  string
	EmployeeID string
	From       *time.Time
	To         *time.Time
	Voided     *bool
	PageToken  string
	PageSize   int
}

type ListConsumptionResponse struct {
	pagination.PageInfo
	Consumptions []Consumption `json:"consumptions"`
}

type Service interface {
	Register(context.Context, RegisterConsumptionRequest) (Consumption, error)
	Void(ctx context.Context, id string) (Consumption, error)
	Unvoid(ctx context.Context, id string) (Consumption, error)
	List(context.Context, ListConsumptionRequest) (ListConsumptionResponse, error)

	// ListForBillingMonth returns every non-voided event whose local
	// calendar day in loc could fall inside the given month. The fetch
	// window is widened by a day on both ends so UTC rows recorded near
	// midnight are not missed; exact day filtering is the engine's job.
	ListForBillingMonth(ctx context.Context, companyID string, year int, month time.Month, loc *time.Location) ([]Consumption, error)
}

var (
	ErrInvalidCompany    = errors.New("invalid_company")
	ErrInvalidEmployee   = errors.New("invalid_employee")
	ErrInvalidSource     = errors.New("invalid_source")
	ErrInvalidOccurredAt = errors.New("invalid_occurred_at")
	ErrInvalidID         = errors.New("invalid_id")
	ErrNotFound          = errors.New("not_found")
	ErrAlreadyVoided     = errors.New("already_voided")
	ErrNotVoided         = errors.New("not_voided")
)
