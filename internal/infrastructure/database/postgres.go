package database

import (
	"fmt"

	"github.com/sangkips/repairshop-api/internal/config"
	"github.com/sangkips/repairshop-api/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig, debug bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Set connection pool settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("Running database migrations")

	err := db.AutoMigrate(
		&entity.User{},
		&entity.Product{},
		&entity.Sale{},
		&entity.SaleItem{},
		&entity.Repair{},
		&entity.Expense{},

		// System entities
		&entity.ReportCache{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := normalizeLegacyRoles(db, log); err != nil {
		return fmt.Errorf("failed to normalize user roles: %w", err)
	}

	log.Info("Database migrations completed")
	return nil
}

// normalizeLegacyRoles copies the single-valued role column of older schemas
// into the roles array for users that have none yet
func normalizeLegacyRoles(db *gorm.DB, log *zap.Logger) error {
	if !db.Migrator().HasColumn(&entity.User{}, "role") {
		return nil
	}

	result := db.Exec(`
		UPDATE users
		SET roles = jsonb_build_array(LOWER(TRIM(role)))
		WHERE role IS NOT NULL AND TRIM(role) <> ''
			AND (roles IS NULL OR roles = '[]'::jsonb)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Info("Normalized legacy user roles", zap.Int64("users", result.RowsAffected))
	}
	return nil
}
