package pkg

import (
	"fmt"
	"log"
	"os"

	"github.com/formify/form-service/internal/config"
	"github.com/formify/form-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDatabase opens the postgres connection and sizes its pool. Queries
// slower than cfg.Database.SlowQuery are logged in every environment.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	gormLogger := logger.New(log.New(os.Stdout, "", log.LstdFlags), logger.Config{
		SlowThreshold:             cfg.Database.SlowQuery,
		LogLevel:                  databaseLogLevel(cfg),
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func databaseLogLevel(cfg *config.Config) logger.LogLevel {
	if cfg.IsProduction() {
		return logger.Warn
	}
	return logger.Info
}

// Migrate creates or updates the form and response tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Form{},
		&models.Question{},
		&models.Option{},
		&models.FormResponse{},
		&models.Answer{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
