// internal/storage/database.go
package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql" // Driver registration

	"github.com/chideraz/country-currency-api/config"
	"github.com/chideraz/country-currency-api/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Connect initializes the bounded connection pool for the country store
// and ensures the required tables exist.
func Connect(cfg *config.Config) (*sql.DB, error) {
	customLog.Printf("Storage: Initializing country store: %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", cfg.DSN())
	if err != nil {
		customLog.Warnf("Storage: Failed to open country store: %v", err)
		return nil, fmt.Errorf("failed to open country store: %w", err)
	}

	// Bounded pool shared by read requests and refresh cycles.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection is working
	if err = db.Ping(); err != nil {
		db.Close() // Close the connection if ping fails
		customLog.Warnf("Storage: Failed to ping country store: %v", err)
		return nil, fmt.Errorf("failed to connect to country store: %w", err)
	}
	customLog.Println("Storage: Country store connection successful.")

	if err := EnsureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// schemaTableOptions returns the CREATE TABLE options for the connected
// driver. MySQL's default collation on 8.0+ is accent- and case-insensitive,
// which would make name uniqueness and the region/currency filters
// case-insensitive; pinning a binary collation keeps comparisons exact.
// SQLite already compares BINARY and rejects MySQL table options, so the
// test driver gets none.
func schemaTableOptions(db *sql.DB) string {
	if _, ok := db.Driver().(*mysql.MySQLDriver); ok {
		return " DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"
	}
	return ""
}

// EnsureSchema creates the 'countries' and 'refresh_metadata' tables when
// missing and seeds the singleton metadata row. The DDL sticks to the
// MySQL/SQLite-common subset so tests can run against temporary SQLite files.
func EnsureSchema(db *sql.DB) error {
	tableOptions := schemaTableOptions(db)

	createCountriesTableSQL := `
	CREATE TABLE IF NOT EXISTS countries (
		name VARCHAR(255) PRIMARY KEY,
		capital VARCHAR(255),
		region VARCHAR(255),
		population BIGINT NOT NULL DEFAULT 0,
		currency_code VARCHAR(16),
		exchange_rate DECIMAL(24,8),
		estimated_gdp DECIMAL(40,8),
		flag_url VARCHAR(512),
		last_refreshed_at DATETIME NOT NULL
	)` + tableOptions + `;`
	if _, err := db.Exec(createCountriesTableSQL); err != nil {
		customLog.Warnf("Storage: Failed to create countries table: %v", err)
		return fmt.Errorf("failed to ensure countries table: %w", err)
	}
	customLog.Println("Storage: Countries table ensured.")

	createMetadataTableSQL := `
	CREATE TABLE IF NOT EXISTS refresh_metadata (
		id INTEGER PRIMARY KEY,
		last_refreshed_at DATETIME
	)` + tableOptions + `;`
	if _, err := db.Exec(createMetadataTableSQL); err != nil {
		customLog.Warnf("Storage: Failed to create refresh_metadata table: %v", err)
		return fmt.Errorf("failed to ensure refresh_metadata table: %w", err)
	}

	// Seed the singleton row once; it is only ever updated afterwards.
	var seeded int
	if err := db.QueryRow(`SELECT COUNT(*) FROM refresh_metadata WHERE id = 1`).Scan(&seeded); err != nil {
		return fmt.Errorf("failed to inspect refresh_metadata: %w", err)
	}
	if seeded == 0 {
		if _, err := db.Exec(`INSERT INTO refresh_metadata (id, last_refreshed_at) VALUES (1, NULL)`); err != nil {
			customLog.Warnf("Storage: Failed to seed refresh_metadata: %v", err)
			return fmt.Errorf("failed to seed refresh_metadata: %w", err)
		}
	}
	customLog.Println("Storage: Refresh metadata table ensured.")

	return nil
}
