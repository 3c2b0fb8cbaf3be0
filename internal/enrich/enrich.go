// internal/enrich/enrich.go
package enrich

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"github.com/chideraz/country-currency-api/internal/domain"
	"github.com/chideraz/country-currency-api/internal/source"
)

// Multiplier bounds for the GDP estimate. The multiplier is drawn once per
// country per refresh, so estimates deliberately vary between refreshes even
// with identical inputs.
const (
	multiplierMin = 1000
	multiplierMax = 2000
)

// MultiplierFunc supplies the per-country GDP multiplier. Tests inject a
// fixed function to make enrichment deterministic.
type MultiplierFunc func() int64

func randomMultiplier() int64 {
	return multiplierMin + rand.Int63n(multiplierMax-multiplierMin+1)
}

// Enricher merges a raw country record with the rate snapshot into an
// enriched Country. Enrichment is pure and never fails; missing optional
// inputs degrade to null fields.
type Enricher struct {
	multiplier MultiplierFunc
}

// NewEnricher builds an Enricher. A nil multiplier selects the random
// production source.
func NewEnricher(multiplier MultiplierFunc) *Enricher {
	if multiplier == nil {
		multiplier = randomMultiplier
	}
	return &Enricher{multiplier: multiplier}
}

// Enrich derives the currency and economic-output fields for one country.
//
//   - The first listed currency becomes the country's currency code.
//   - A matching rate yields exchange_rate and
//     estimated_gdp = population * multiplier / rate.
//   - A listed currency with no matching rate leaves both null.
//   - No listed currencies pins estimated_gdp to exactly zero.
func (e *Enricher) Enrich(raw source.RawCountry, rates map[string]decimal.Decimal) domain.Country {
	c := domain.Country{
		Name:       raw.Name,
		Capital:    raw.Capital,
		Region:     raw.Region,
		Population: raw.Population,
		FlagURL:    raw.Flag,
	}
	if c.Population < 0 {
		c.Population = 0
	}

	if len(raw.Currencies) == 0 {
		// Declared no currencies: the estimate is known to be zero,
		// which is distinct from unknown.
		c.EstimatedGDP = decimal.NewNullDecimal(decimal.Zero)
		return c
	}

	code := raw.Currencies[0].Code
	c.CurrencyCode = &code

	rate, ok := rates[code]
	if !ok || !rate.IsPositive() {
		// No usable rate: exchange_rate and estimated_gdp stay null.
		return c
	}

	c.ExchangeRate = decimal.NewNullDecimal(rate)
	gdp := decimal.NewFromInt(c.Population).
		Mul(decimal.NewFromInt(e.multiplier())).
		Div(rate)
	c.EstimatedGDP = decimal.NewNullDecimal(gdp)
	return c
}
