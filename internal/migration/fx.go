package migration

import (
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
		// The embedded migrations are written for postgres. Other dialects
		// (sqlite in tests, mysql deployments with external schema
		// management) skip the automatic path.
		if cfg.DBType != "postgres" {
			log.Info("skipping automatic migrations", zap.String("db_type", cfg.DBType))
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		return RunMigrations(sqlDB)
	}),
)
