package migration

import (
	auditdomain "github.com/rapidwifi/zone/internal/audit/domain"
	"github.com/rapidwifi/zone/internal/config"
	operatordomain "github.com/rapidwifi/zone/internal/operator/domain"
	paymentdomain "github.com/rapidwifi/zone/internal/payment/domain"
	profiledomain "github.com/rapidwifi/zone/internal/profile/domain"
	"github.com/rapidwifi/zone/internal/seed"
	voucherdomain "github.com/rapidwifi/zone/internal/voucher/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType == "postgres" {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// sqlite and mysql deployments are single-node installs;
			// AutoMigrate keeps them schema-current without a migration
			// driver per dialect.
			if err := conn.AutoMigrate(
				&voucherdomain.Voucher{},
				&paymentdomain.Payment{},
				&auditdomain.Entry{},
				&profiledomain.Profile{},
				&operatordomain.Operator{},
			); err != nil {
				return err
			}
		}
		return seed.EnsureDefaults(conn)
	}),
)
