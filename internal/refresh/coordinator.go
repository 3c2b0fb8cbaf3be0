// internal/refresh/coordinator.go
package refresh

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/chideraz/country-currency-api/internal/artifact"
	"github.com/chideraz/country-currency-api/internal/enrich"
	"github.com/chideraz/country-currency-api/internal/logger"
	"github.com/chideraz/country-currency-api/internal/source"
	"github.com/chideraz/country-currency-api/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

const topCountriesLimit = 5

// Result reports a successful refresh cycle.
type Result struct {
	TotalCountries int64
}

// Coordinator drives one full refresh cycle: fetch both feeds, enrich every
// country, persist the batch and the refresh timestamp in one transaction,
// then hand aggregates to the artifact generator. It is the only component
// that bulk-mutates the country store.
//
// Concurrent Refresh calls are not serialized against each other; each cycle
// is only atomic with respect to its own transaction.
type Coordinator struct {
	db        *sql.DB
	source    source.Client
	enricher  *enrich.Enricher
	artifacts *artifact.Generator
}

// NewCoordinator wires a Coordinator from its collaborators.
func NewCoordinator(db *sql.DB, src source.Client, enricher *enrich.Enricher, artifacts *artifact.Generator) *Coordinator {
	return &Coordinator{
		db:        db,
		source:    src,
		enricher:  enricher,
		artifacts: artifacts,
	}
}

// Refresh runs one cycle. A failing feed surfaces source.ErrSourceUnavailable
// with zero writes performed; any storage failure rolls the whole transaction
// back. Artifact generation runs after commit and cannot fail the refresh.
func (rc *Coordinator) Refresh(ctx context.Context) (*Result, error) {
	rawCountries, err := rc.source.FetchCountries(ctx)
	if err != nil {
		return nil, err
	}
	rates, err := rc.source.FetchRates(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)

	tx, err := rc.db.BeginTx(ctx, nil)
	if err != nil {
		customLog.Warnf("Refresh: Failed to begin transaction: %v", err)
		return nil, fmt.Errorf("failed to begin refresh transaction: %w", err)
	}
	// No-op after a successful commit; undoes everything on any early return.
	defer tx.Rollback()

	for _, raw := range rawCountries {
		country := rc.enricher.Enrich(raw, rates)
		country.LastRefreshedAt = now
		if err := storage.UpsertCountry(ctx, tx, &country); err != nil {
			return nil, err
		}
	}

	if err := storage.SetLastRefreshed(ctx, tx, now); err != nil {
		return nil, err
	}

	total, err := storage.CountCountries(ctx, tx)
	if err != nil {
		return nil, err
	}
	topFive, err := storage.TopCountriesByGDP(ctx, tx, topCountriesLimit)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		customLog.Warnf("Refresh: Failed to commit transaction: %v", err)
		return nil, fmt.Errorf("failed to commit refresh transaction: %w", err)
	}
	customLog.Printf("Refresh: Committed %d countries at %s", total, now.Format(time.RFC3339))

	// Best effort: a failed render is logged but the refresh stays committed.
	if err := rc.artifacts.Generate(total, topFive, now); err != nil {
		customLog.Warnf("Refresh: Summary image generation failed: %v", err)
	}

	return &Result{TotalCountries: total}, nil
}
