// Package domain contains persistence models for meal-consumption events.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Source identifies the registration flow that produced an event.
type Source string

const (
	SourceCafeteria Source = "cafeteria"
	SourcePOS       Source = "pos"
	SourceKiosk     Source = "kiosk"
)

// WalkInEmployeeID marks anonymous point-of-sale consumptions.
const WalkInEmployeeID = "anonymous"

// Consumption stores a single meal registration. Rows are immutable except
// for the void flag.
type Consumption struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	CompanyID  snowflake.ID `gorm:"not null;index:idx_consumptions_company_time" json:"company_id"`
	EmployeeID string       `gorm:"not null" json:"employee_id"`
	Source     Source       `gorm:"type:text;not null" json:"source"`

	// OccurredAt is stored in UTC; billing re-expresses it in the
	// company's calendar zone.
	OccurredAt time.Time `gorm:"not null;index:idx_consumptions_company_time" json:"occurred_at"`

	Voided   bool       `gorm:"not null;default:false" json:"voided"`
	VoidedAt *time.Time `json:"voided_at,omitempty"`

	IdempotencyKey *string           `gorm:"type:text;uniqueIndex" json:"idempotency_key,omitempty"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Consumption) TableName() string { return "consumptions" }
