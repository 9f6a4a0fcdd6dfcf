// Package domain defines derived billing artifacts. Statements are computed
// on demand from consumption events and never persisted.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cantina/internal/billing/engine"
)

// DefaultCurrency is the invoice currency for all tenants.
const DefaultCurrency = "MXN"

// Statement is the monthly billing breakdown for one company.
type Statement struct {
	CompanyID   snowflake.ID      `json:"company_id"`
	CompanyName string            `json:"company_name"`
	Year        int               `json:"year"`
	Month       time.Month        `json:"month"`
	Currency    string            `json:"currency"`
	Rows        []engine.DailyRow `json:"rows"`
	TotalCents  int64             `json:"total_cents"`
	ComputedAt  time.Time         `json:"computed_at"`
}
