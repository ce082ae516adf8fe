package migration

import (
	"github.com/smallbiznis/lodgia/internal/config"
	"github.com/smallbiznis/lodgia/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if err := Run(conn); err != nil {
			return err
		}

		if cfg.SeedOnStartup {
			return seed.Ensure(conn)
		}
		return nil
	}),
)
