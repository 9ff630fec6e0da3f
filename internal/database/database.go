package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS sync_runs (
		id TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		dry_run BOOLEAN DEFAULT false,
		state TEXT NOT NULL,
		processed INTEGER DEFAULT 0,
		succeeded INTEGER DEFAULT 0,
		already_done INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		error TEXT,
		started_at TIMESTAMP,
		finished_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS probe_attempts (
		id INTEGER PRIMARY KEY,
		run_id TEXT NOT NULL,
		product_id TEXT NOT NULL,
		country TEXT NOT NULL,
		outcome TEXT NOT NULL,
		code TEXT,
		message TEXT,
		title TEXT,
		image_count INTEGER DEFAULT 0,
		variant_count INTEGER DEFAULT 0,
		created_at TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_probe_attempts_run ON probe_attempts (run_id);
	CREATE INDEX IF NOT EXISTS idx_probe_attempts_product ON probe_attempts (product_id);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
