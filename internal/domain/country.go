// internal/domain/country.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Country is the enriched record the service maintains, keyed by Name.
//
// ExchangeRate and EstimatedGDP use decimal.NullDecimal so their null-ness
// survives storage round trips: EstimatedGDP is null when the country lists a
// currency with no matching rate, exactly zero when it lists no currencies at
// all, and positive otherwise.
type Country struct {
	Name            string              `json:"name"`
	Capital         *string             `json:"capital"`
	Region          *string             `json:"region"`
	Population      int64               `json:"population"`
	CurrencyCode    *string             `json:"currency_code"`
	ExchangeRate    decimal.NullDecimal `json:"exchange_rate"`
	EstimatedGDP    decimal.NullDecimal `json:"estimated_gdp"`
	FlagURL         *string             `json:"flag_url"`
	LastRefreshedAt time.Time           `json:"last_refreshed_at"`
}

// RefreshMetadata is the singleton row tracking the last committed refresh.
// LastRefreshedAt is nil until the first refresh cycle commits.
type RefreshMetadata struct {
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}
