// internal/refresh/coordinator_test.go
package refresh

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chideraz/country-currency-api/internal/artifact"
	"github.com/chideraz/country-currency-api/internal/core"
	"github.com/chideraz/country-currency-api/internal/enrich"
	"github.com/chideraz/country-currency-api/internal/source"
	"github.com/chideraz/country-currency-api/internal/storage"
)

// fakeSource substitutes deterministic fixtures for the external feeds.
type fakeSource struct {
	countries    []source.RawCountry
	rates        map[string]decimal.Decimal
	countriesErr error
	ratesErr     error
}

func (f *fakeSource) FetchCountries(ctx context.Context) ([]source.RawCountry, error) {
	if f.countriesErr != nil {
		return nil, f.countriesErr
	}
	return f.countries, nil
}

func (f *fakeSource) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	if f.ratesErr != nil {
		return nil, f.ratesErr
	}
	return f.rates, nil
}

func strPtr(s string) *string { return &s }

func testDBSetup(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test_countries.db")
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.EnsureSchema(db))
	return db
}

func fixtureFeeds() *fakeSource {
	return &fakeSource{
		countries: []source.RawCountry{
			{
				Name:       "France",
				Capital:    strPtr("Paris"),
				Region:     strPtr("Europe"),
				Population: 67000000,
				Flag:       strPtr("https://flagcdn.com/fr.svg"),
				Currencies: []source.RawCurrency{{Code: "EUR"}},
			},
			{
				Name:       "Antarctica",
				Region:     strPtr("Polar"),
				Population: 1000,
			},
		},
		rates: map[string]decimal.Decimal{
			"USD": decimal.NewFromInt(1),
			"EUR": decimal.RequireFromString("0.92"),
		},
	}
}

func newTestCoordinator(t *testing.T, db *sql.DB, src source.Client, artifactPath string) *Coordinator {
	t.Helper()
	enricher := enrich.NewEnricher(func() int64 { return 1500 })
	return NewCoordinator(db, src, enricher, artifact.NewGenerator(artifactPath))
}

func TestRefreshSuccess(t *testing.T) {
	db := testDBSetup(t)
	ctx := context.Background()
	artifactPath := filepath.Join(t.TempDir(), "summary.png")

	rc := newTestCoordinator(t, db, fixtureFeeds(), artifactPath)
	result, err := rc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCountries, "count matches the raw feed")

	// The resolvable-currency country has a positive estimate.
	france, err := storage.GetCountry(ctx, db, "France")
	require.NoError(t, err)
	require.True(t, france.EstimatedGDP.Valid)
	assert.True(t, france.EstimatedGDP.Decimal.IsPositive())
	require.True(t, france.ExchangeRate.Valid)

	// The no-currency country pins its estimate to exactly zero.
	antarctica, err := storage.GetCountry(ctx, db, "Antarctica")
	require.NoError(t, err)
	require.True(t, antarctica.EstimatedGDP.Valid)
	assert.True(t, antarctica.EstimatedGDP.Decimal.IsZero())
	assert.Nil(t, antarctica.CurrencyCode)

	last, err := storage.LastRefreshed(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, last, "metadata committed with the batch")

	_, err = os.Stat(artifactPath)
	assert.NoError(t, err, "summary image rendered after commit")
}

func TestRefreshRepeatedCyclesDoNotDuplicate(t *testing.T) {
	db := testDBSetup(t)
	ctx := context.Background()

	rc := newTestCoordinator(t, db, fixtureFeeds(), filepath.Join(t.TempDir(), "summary.png"))
	_, err := rc.Refresh(ctx)
	require.NoError(t, err)
	result, err := rc.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCountries, "upserts replace, never duplicate")
}

func TestRefreshRateFeedFailureLeavesStoreUntouched(t *testing.T) {
	db := testDBSetup(t)
	ctx := context.Background()
	artifactPath := filepath.Join(t.TempDir(), "summary.png")

	// Seed a committed state from an earlier successful cycle.
	rc := newTestCoordinator(t, db, fixtureFeeds(), artifactPath)
	_, err := rc.Refresh(ctx)
	require.NoError(t, err)
	before, err := storage.LastRefreshed(ctx, db)
	require.NoError(t, err)

	// Country feed succeeds, rate feed fails: nothing may change.
	failing := fixtureFeeds()
	failing.countries = append(failing.countries, source.RawCountry{Name: "Phantom"})
	failing.ratesErr = fmt.Errorf("exchange rates feed: %w", source.ErrSourceUnavailable)

	rc = newTestCoordinator(t, db, failing, artifactPath)
	_, err = rc.Refresh(ctx)
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)

	count, err := storage.CountCountries(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "no partial writes from the failed cycle")

	_, err = storage.GetCountry(ctx, db, "Phantom")
	assert.ErrorIs(t, err, storage.ErrCountryNotFound)

	after, err := storage.LastRefreshed(ctx, db)
	require.NoError(t, err)
	require.NotNil(t, after)
	assert.Equal(t, before.Unix(), after.Unix(), "metadata timestamp unchanged")
}

func TestRefreshCountryFeedFailure(t *testing.T) {
	db := testDBSetup(t)
	ctx := context.Background()

	failing := fixtureFeeds()
	failing.countriesErr = fmt.Errorf("countries feed: %w", source.ErrSourceUnavailable)

	rc := newTestCoordinator(t, db, failing, filepath.Join(t.TempDir(), "summary.png"))
	_, err := rc.Refresh(ctx)
	assert.ErrorIs(t, err, source.ErrSourceUnavailable)

	count, err := storage.CountCountries(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRefreshSucceedsWhenArtifactWriteFails(t *testing.T) {
	db := testDBSetup(t)
	ctx := context.Background()

	// /dev/null is not a directory, so the artifact write must fail.
	rc := newTestCoordinator(t, db, fixtureFeeds(), "/dev/null/summary.png")
	result, err := rc.Refresh(ctx)
	require.NoError(t, err, "artifact failure must not demote a committed refresh")
	assert.Equal(t, int64(2), result.TotalCountries)

	last, err := storage.LastRefreshed(ctx, db)
	require.NoError(t, err)
	assert.NotNil(t, last)
}

func TestRefreshedCountriesAreQueryable(t *testing.T) {
	db := testDBSetup(t)
	ctx := context.Background()

	rc := newTestCoordinator(t, db, fixtureFeeds(), filepath.Join(t.TempDir(), "summary.png"))
	_, err := rc.Refresh(ctx)
	require.NoError(t, err)

	sorted, err := storage.ListCountries(ctx, db, &core.CountryListOptions{Sort: core.SortGDPDesc})
	require.NoError(t, err)
	require.Len(t, sorted, 2)
	assert.Equal(t, "France", sorted[0].Name, "positive estimate sorts before the zero estimate")
}
