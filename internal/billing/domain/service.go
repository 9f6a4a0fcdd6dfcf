package domain

import (
	"context"
	"errors"
	"time"
)

type StatementRequest struct {
	CompanyID string
	Year      int
	Month     time.Month
}

type Service interface {
	// GetStatement computes (or returns a cached) monthly statement.
	// Caching is keyed by the event fingerprint, so a changed event set
	// (new registration, void toggle) misses the cache naturally.
	GetStatement(context.Context, StatementRequest) (Statement, error)
}

var (
	ErrInvalidCompany  = errors.New("invalid_company")
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrCompanyNotFound = errors.New("company_not_found")
)

// MinBillingYear bounds period validation; anything earlier is a caller bug.
const MinBillingYear = 2000

// ValidatePeriod rejects periods outside a sane range. The engine itself is
// total; this wrapper keeps malformed input out of API responses.
func ValidatePeriod(year int, month time.Month, now time.Time) error {
	if year < MinBillingYear || year > now.Year()+1 {
		return ErrInvalidPeriod
	}
	if month < time.January || month > time.December {
		return ErrInvalidPeriod
	}
	return nil
}
