// Package seed bootstraps demo data for local development.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	demoCompanyName  = "Acme de México"
	demoCompanySlug  = "acme-mx"
	demoCompanyEmail = "facturacion@acme.example"
)

// EnsureDemoCompany seeds one company so a fresh checkout has something to
// register consumptions against.
func EnsureDemoCompany(db *gorm.DB, timezone string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing companydomain.Company
		err := tx.Where("slug = ?", demoCompanySlug).First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		company := companydomain.Company{
			ID:                 node.Generate(),
			Name:               demoCompanyName,
			Slug:               demoCompanySlug,
			ContactEmail:       demoCompanyEmail,
			Timezone:           timezone,
			MealPriceCents:     8000,
			DailyTarget:        300,
			ChargeableWeekdays: datatypes.NewJSONSlice([]int{1, 2, 3, 4}),
			Active:             true,
		}
		return tx.Create(&company).Error
	})
}
