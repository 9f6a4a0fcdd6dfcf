// Package migration keeps the schema current on startup so local and
// self-hosted deployments work out of the box.
package migration

import (
	"errors"

	companydomain "github.com/smallbiznis/cantina/internal/company/domain"
	consumptiondomain "github.com/smallbiznis/cantina/internal/consumption/domain"
	invoicedomain "github.com/smallbiznis/cantina/internal/invoice/domain"
	schedulerdomain "github.com/smallbiznis/cantina/internal/scheduler/domain"
	"gorm.io/gorm"
)

// RunMigrations applies the schema for every persisted model. AutoMigrate is
// additive only; destructive changes need a manual migration.
func RunMigrations(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	return conn.AutoMigrate(
		&companydomain.Company{},
		&consumptiondomain.Consumption{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&schedulerdomain.JobRun{},
	)
}
