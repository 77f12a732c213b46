package database

import (
	"database/sql"
	"fmt"
	"time"

	"site-safety-inspection/config"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// Database represents the database connection
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection with exponential backoff retry
	var waitInterval time.Duration = 1 * time.Second
	for {
		if err := db.Ping(); err == nil {
			break // Connection successful
		}
		log.Warnf("Database connection failed, retrying in %v: %v", waitInterval, err)
		time.Sleep(waitInterval)
		waitInterval *= 2 // Exponential backoff: 1s, 2s, 4s, 8s, ...
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Database{db: db}, nil
}

// NewDatabaseFromConn wraps an existing connection (used by tests).
func NewDatabaseFromConn(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the underlying sql.DB
func (d *Database) GetDB() *sql.DB {
	return d.db
}

// CreateTables creates the inspection tables if they don't exist. History
// tables are append-only; this service never updates or deletes their rows.
func (d *Database) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS inspection_images (
			image_id VARCHAR(32) NOT NULL PRIMARY KEY,
			file_name VARCHAR(255) NOT NULL,
			content LONGBLOB NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_inspection_images_file_name (file_name)
		)`,
		`CREATE TABLE IF NOT EXISTS site_risk_history (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			site_id VARCHAR(255) NOT NULL,
			inspection_ts TIMESTAMP NOT NULL,
			image_count INT NOT NULL,
			weighted_score FLOAT NOT NULL,
			site_severity ENUM('Low', 'Medium', 'High') NOT NULL,
			highest_image_score INT NOT NULL,
			INDEX idx_site_risk_history_site (site_id, inspection_ts)
		)`,
		`CREATE TABLE IF NOT EXISTS site_hazard_history (
			id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
			site_id VARCHAR(255) NOT NULL,
			inspection_ts TIMESTAMP NOT NULL,
			hazard_category VARCHAR(255) NOT NULL,
			hazard_count INT NOT NULL,
			INDEX idx_site_hazard_history_site (site_id, inspection_ts),
			INDEX idx_site_hazard_history_category (hazard_category)
		)`,
	}

	for _, query := range queries {
		if _, err := d.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	log.Info("inspection tables created/verified successfully")
	return nil
}
