package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/chideraz/country-currency-api/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Config holds application configuration values
type Config struct {
	ServerPort string

	// Country store (MySQL) connection settings
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// External feeds
	CountriesAPIURL string
	RatesAPIURL     string
	FetchTimeout    time.Duration

	// Cached summary artifact
	SummaryImagePath string
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	// Attempt to load .env file if in development environment (skip in production)
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	// Read values from environment variables, providing defaults where appropriate
	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),

		DBHost:     getEnv("DB_HOST", "127.0.0.1"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "country_api"),

		CountriesAPIURL: getEnv("COUNTRIES_API_URL",
			"https://restcountries.com/v2/all?fields=name,capital,region,population,flag,currencies"),
		RatesAPIURL: getEnv("RATES_API_URL", "https://open.er-api.com/v6/latest/USD"),

		SummaryImagePath: getEnv("SUMMARY_IMAGE_PATH", "cache/summary.png"),
	}

	// Parse fetch timeout (seconds); both external feeds share this bound.
	timeoutStr := getEnv("FETCH_TIMEOUT_SECONDS", "10")
	timeoutSecs, err := strconv.Atoi(timeoutStr)
	if err != nil || timeoutSecs <= 0 {
		customLog.Warnf("Invalid FETCH_TIMEOUT_SECONDS '%s'. Using default 10s. Error: %v", timeoutStr, err)
		timeoutSecs = 10
	}
	cfg.FetchTimeout = time.Duration(timeoutSecs) * time.Second

	customLog.Printf("Configuration loaded successfully. Port: %s, DB: %s@%s:%s/%s",
		cfg.ServerPort, cfg.DBUser, cfg.DBHost, cfg.DBPort, cfg.DBName)
	return cfg, nil
}

// DSN builds the MySQL data source name for the country store.
// parseTime lets DATETIME columns scan into time.Time; clientFoundRows makes
// UPDATE report matched rows so the upsert's update-then-insert stays correct.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&clientFoundRows=true&charset=utf8mb4",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
