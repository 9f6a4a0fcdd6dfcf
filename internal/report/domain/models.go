// Package domain defines aggregated revenue reports. Reports are derived
// from per-company statements and never persisted.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cantina/internal/billing/engine"
)

// CompanyRevenue is one company's contribution to a monthly report.
type CompanyRevenue struct {
	CompanyID   snowflake.ID `json:"company_id"`
	CompanyName string       `json:"company_name"`
	MealCount   int          `json:"meal_count"`
	BilledCount int          `json:"billed_count"`
	TotalCents  int64        `json:"total_cents"`
}

// MonthlyRevenue is the fleet-wide revenue summary for one period.
type MonthlyRevenue struct {
	Year       int              `json:"year"`
	Month      time.Month       `json:"month"`
	Currency   string           `json:"currency"`
	Companies  []CompanyRevenue `json:"companies"`
	TotalCents int64            `json:"total_cents"`
	ComputedAt time.Time        `json:"computed_at"`
}

// CompanyBreakdown is the per-day detail for one company, the report
// counterpart of a billing statement.
type CompanyBreakdown struct {
	CompanyID   snowflake.ID      `json:"company_id"`
	CompanyName string            `json:"company_name"`
	Year        int               `json:"year"`
	Month       time.Month        `json:"month"`
	Currency    string            `json:"currency"`
	Rows        []engine.DailyRow `json:"rows"`
	TotalCents  int64             `json:"total_cents"`
}

type Service interface {
	// MonthlyRevenue aggregates statements across all active companies.
	MonthlyRevenue(ctx context.Context, year int, month time.Month) (MonthlyRevenue, error)
	// CompanyBreakdown returns the daily rows for one company.
	CompanyBreakdown(ctx context.Context, companyID string, year int, month time.Month) (CompanyBreakdown, error)
}

var ErrInvalidPeriod = errors.New("invalid_period")
