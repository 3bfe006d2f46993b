package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Conceptual-Machines/reel-director/internal/config"
	"github.com/Conceptual-Machines/reel-director/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the database selected by DATABASE_TYPE
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}
	if !cfg.IsProduction() {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	switch cfg.DatabaseType {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for postgres")
		}
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		log.Printf("✅ Database connected (postgres)")
		return db, nil
	case "sqlite", "":
		return ConnectSQLite(cfg.SQLitePath, gormConfig)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", cfg.DatabaseType)
	}
}

// ConnectSQLite opens a SQLite database, creating its directory if needed.
// ":memory:" opens a private in-memory database.
func ConnectSQLite(path string, gormConfig *gorm.Config) (*gorm.DB, error) {
	if gormConfig == nil {
		gormConfig = &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	log.Printf("✅ Database connected (sqlite: %s)", path)
	return db, nil
}

// Migrate creates or updates the run tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.RunRecord{}, &models.ReviewRoundRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	log.Println("✅ Database migrated")
	return nil
}
