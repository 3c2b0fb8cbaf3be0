// internal/storage/country_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/chideraz/country-currency-api/internal/core"
	"github.com/chideraz/country-currency-api/internal/domain"
)

// Specific errors for country store operations
var (
	ErrCountryNotFound = errors.New("country not found")
)

// Querier is satisfied by both *sql.DB and *sql.Tx, so the same repository
// functions serve plain reads and the refresh cycle's transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const countryColumns = `name, capital, region, population, currency_code, exchange_rate, estimated_gdp, flag_url, last_refreshed_at`

// UpsertCountry inserts or fully replaces a country record keyed by name.
// Update-then-insert keeps the statement portable across MySQL and SQLite.
func UpsertCountry(ctx context.Context, q Querier, c *domain.Country) error {
	updateSQL := `UPDATE countries
		SET capital = ?, region = ?, population = ?, currency_code = ?,
		    exchange_rate = ?, estimated_gdp = ?, flag_url = ?, last_refreshed_at = ?
		WHERE name = ?`
	result, err := q.ExecContext(ctx, updateSQL,
		c.Capital, c.Region, c.Population, c.CurrencyCode,
		c.ExchangeRate, c.EstimatedGDP, c.FlagURL, c.LastRefreshedAt, c.Name)
	if err != nil {
		customLog.Warnf("Storage: Failed to update country '%s': %v", c.Name, err)
		return fmt.Errorf("database error upserting country: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for country '%s': %w", c.Name, err)
	}
	if rows > 0 {
		return nil
	}

	insertSQL := `INSERT INTO countries (` + countryColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = q.ExecContext(ctx, insertSQL,
		c.Name, c.Capital, c.Region, c.Population, c.CurrencyCode,
		c.ExchangeRate, c.EstimatedGDP, c.FlagURL, c.LastRefreshedAt)
	if err != nil {
		customLog.Warnf("Storage: Failed to insert country '%s': %v", c.Name, err)
		return fmt.Errorf("database error upserting country: %w", err)
	}
	return nil
}

// GetCountry retrieves a country by name, matched case-insensitively.
func GetCountry(ctx context.Context, q Querier, name string) (*domain.Country, error) {
	sqlStatement := `SELECT ` + countryColumns + ` FROM countries WHERE LOWER(name) = LOWER(?) LIMIT 1`
	row := q.QueryRowContext(ctx, sqlStatement, name)
	country, err := scanCountry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCountryNotFound
		}
		customLog.Warnf("Storage: Failed to find country '%s': %v", name, err)
		return nil, fmt.Errorf("database error finding country: %w", err)
	}
	return country, nil
}

// DeleteCountry removes a country by name, matched case-insensitively.
func DeleteCountry(ctx context.Context, q Querier, name string) error {
	result, err := q.ExecContext(ctx, `DELETE FROM countries WHERE LOWER(name) = LOWER(?)`, name)
	if err != nil {
		customLog.Warnf("Storage: Failed to delete country '%s': %v", name, err)
		return fmt.Errorf("database error deleting country: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected deleting '%s': %w", name, err)
	}
	if rows == 0 {
		return ErrCountryNotFound
	}
	return nil
}

// ListCountries returns countries matching the parsed filter options.
// Region and currency filters are exact and case-sensitive; GDP sort modes
// always place records with an unknown estimated GDP last.
func ListCountries(ctx context.Context, q Querier, opts *core.CountryListOptions) ([]domain.Country, error) {
	sqlStatement := `SELECT ` + countryColumns + ` FROM countries`
	var clauses []string
	var args []any

	if opts.Region != "" {
		clauses = append(clauses, "region = ?")
		args = append(args, opts.Region)
	}
	if opts.CurrencyCode != "" {
		clauses = append(clauses, "currency_code = ?")
		args = append(args, opts.CurrencyCode)
	}
	for i, clause := range clauses {
		if i == 0 {
			sqlStatement += " WHERE " + clause
		} else {
			sqlStatement += " AND " + clause
		}
	}

	switch opts.Sort {
	case core.SortGDPDesc:
		sqlStatement += " ORDER BY (estimated_gdp IS NULL), estimated_gdp DESC, name"
	case core.SortGDPAsc:
		sqlStatement += " ORDER BY (estimated_gdp IS NULL), estimated_gdp ASC, name"
	default:
		sqlStatement += " ORDER BY name"
	}

	rows, err := q.QueryContext(ctx, sqlStatement, args...)
	if err != nil {
		customLog.Warnf("Storage: Failed to list countries: %v", err)
		return nil, fmt.Errorf("database error listing countries: %w", err)
	}
	defer rows.Close()

	return collectCountries(rows)
}

// CountCountries returns the total number of stored countries.
func CountCountries(ctx context.Context, q Querier) (int64, error) {
	var count int64
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM countries`).Scan(&count); err != nil {
		customLog.Warnf("Storage: Failed to count countries: %v", err)
		return 0, fmt.Errorf("database error counting countries: %w", err)
	}
	return count, nil
}

// TopCountriesByGDP returns up to limit countries ordered by estimated GDP
// descending, excluding records where the estimate is unknown.
func TopCountriesByGDP(ctx context.Context, q Querier, limit int) ([]domain.Country, error) {
	sqlStatement := `SELECT ` + countryColumns + ` FROM countries
		WHERE estimated_gdp IS NOT NULL
		ORDER BY estimated_gdp DESC, name LIMIT ?`
	rows, err := q.QueryContext(ctx, sqlStatement, limit)
	if err != nil {
		customLog.Warnf("Storage: Failed to query top countries: %v", err)
		return nil, fmt.Errorf("database error querying top countries: %w", err)
	}
	defer rows.Close()

	return collectCountries(rows)
}

// SetLastRefreshed updates the singleton metadata row. The refresh coordinator
// calls this inside the same transaction as its country upserts.
func SetLastRefreshed(ctx context.Context, q Querier, t time.Time) error {
	result, err := q.ExecContext(ctx, `UPDATE refresh_metadata SET last_refreshed_at = ? WHERE id = 1`, t)
	if err != nil {
		customLog.Warnf("Storage: Failed to update refresh metadata: %v", err)
		return fmt.Errorf("database error updating refresh metadata: %w", err)
	}
	if _, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to confirm refresh metadata update: %w", err)
	}
	return nil
}

// LastRefreshed returns the timestamp of the last committed refresh, or nil
// if no refresh has ever completed.
func LastRefreshed(ctx context.Context, q Querier) (*time.Time, error) {
	var t sql.NullTime
	err := q.QueryRowContext(ctx, `SELECT last_refreshed_at FROM refresh_metadata WHERE id = 1`).Scan(&t)
	if err != nil {
		customLog.Warnf("Storage: Failed to read refresh metadata: %v", err)
		return nil, fmt.Errorf("database error reading refresh metadata: %w", err)
	}
	if !t.Valid {
		return nil, nil
	}
	return &t.Time, nil
}

// --- Row scanning helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCountry(row rowScanner) (*domain.Country, error) {
	var c domain.Country
	var capital, region, currencyCode, flagURL sql.NullString
	err := row.Scan(&c.Name, &capital, &region, &c.Population, &currencyCode,
		&c.ExchangeRate, &c.EstimatedGDP, &flagURL, &c.LastRefreshedAt)
	if err != nil {
		return nil, err
	}
	c.Capital = nullableString(capital)
	c.Region = nullableString(region)
	c.CurrencyCode = nullableString(currencyCode)
	c.FlagURL = nullableString(flagURL)
	return &c, nil
}

func collectCountries(rows *sql.Rows) ([]domain.Country, error) {
	countries := []domain.Country{}
	for rows.Next() {
		c, err := scanCountry(rows)
		if err != nil {
			customLog.Warnf("Storage: Failed scanning country row: %v", err)
			return nil, fmt.Errorf("failed to parse country row: %w", err)
		}
		countries = append(countries, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read country rows: %w", err)
	}
	return countries, nil
}

func nullableString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
