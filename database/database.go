package database

import (
	"fmt"

	"github.com/Gangoo91/Elec-Mate-Merge-sub067/config"
	"github.com/Gangoo91/Elec-Mate-Merge-sub067/model"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database. sqlite is meant for local runs
// and tests; production uses postgres.
func Open(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate brings the schema up to date.
func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20240115_create_reports",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.Report{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("reports")
			},
		},
		{
			ID: "20240115_create_report_photos",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.ReportPhoto{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("report_photos")
			},
		},
		{
			ID: "20240302_create_part_p_notifications",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&model.PartPNotification{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("part_p_notifications")
			},
		},
		{
			ID: "20240410_add_report_status",
			Migrate: func(tx *gorm.DB) error {
				if !tx.Migrator().HasColumn(&model.Report{}, "Status") {
					if err := tx.Migrator().AddColumn(&model.Report{}, "Status"); err != nil {
						return err
					}
				}
				return tx.Model(&model.Report{}).
					Where("pdf_url <> ''").
					Update("status", model.ReportStatusCompleted).Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropColumn(&model.Report{}, "Status")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
