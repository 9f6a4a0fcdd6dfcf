// Package domain contains persistence models for tenant companies and their
// billing configuration.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/cantina/internal/billing/engine"
	"gorm.io/datatypes"
)

// Company is a cafeteria tenant with its own pricing and billing rules.
type Company struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"not null" json:"name"`
	Slug         string       `gorm:"not null;uniqueIndex" json:"slug"`
	ContactEmail string       `gorm:"not null" json:"contact_email"`

	// Timezone is the IANA zone the company's billing calendar runs in.
	Timezone string `gorm:"type:text;not null" json:"timezone"`

	// MealPriceCents is the price per billable meal in cents.
	MealPriceCents int64 `gorm:"not null;default:0" json:"meal_price_cents"`
	// DailyTarget is the minimum meals billed on chargeable days; 0 disables.
	DailyTarget int `gorm:"not null;default:0" json:"daily_target"`
	// ChargeableWeekdays stores weekday numbers 0 (Sunday) through 6.
	ChargeableWeekdays datatypes.JSONSlice[int] `gorm:"type:jsonb" json:"chargeable_weekdays"`
	// IncludeWalkIns counts anonymous POS sales toward the invoice.
	IncludeWalkIns bool `gorm:"not null;default:false" json:"include_walk_ins"`

	Active    bool              `gorm:"not null;default:true" json:"active"`
	Metadata  datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }

// BillingConfig converts the stored configuration into an engine config.
// The zone must have been validated at write time; an unloadable zone
// falls back to UTC rather than failing a read path.
func (c Company) BillingConfig() engine.Config {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		loc = time.UTC
	}

	weekdays := make([]time.Weekday, 0, len(c.ChargeableWeekdays))
	for _, day := range c.ChargeableWeekdays {
		weekdays = append(weekdays, time.Weekday(day))
	}

	return engine.Config{
		MealPriceCents:     c.MealPriceCents,
		DailyTarget:        c.DailyTarget,
		ChargeableWeekdays: weekdays,
		Location:           loc,
		IncludeWalkIns:     c.IncludeWalkIns,
	}
}
