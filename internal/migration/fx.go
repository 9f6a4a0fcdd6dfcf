package migration

import (
	"github.com/smallbiznis/cantina/internal/config"
	"github.com/smallbiznis/cantina/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := RunMigrations(conn); err != nil {
			return err
		}
		if cfg.Environment == "development" {
			return seed.EnsureDemoCompany(conn, cfg.DefaultTimezone)
		}
		return nil
	}),
)
