// internal/source/client.go
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/chideraz/country-currency-api/config"
	"github.com/chideraz/country-currency-api/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// ErrSourceUnavailable covers every way an external feed can fail during a
// refresh: timeouts, transport errors, non-success responses and unreadable
// bodies. Callers never get a finer-grained cause; the wrapped message only
// names which feed failed.
var ErrSourceUnavailable = errors.New("external source unavailable")

// RawCurrency is a currency entry as listed by the country catalog feed.
type RawCurrency struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// RawCountry is one country record as returned by the catalog feed,
// before enrichment.
type RawCountry struct {
	Name       string        `json:"name"`
	Capital    *string       `json:"capital"`
	Region     *string       `json:"region"`
	Population int64         `json:"population"`
	Flag       *string       `json:"flag"`
	Currencies []RawCurrency `json:"currencies"`
}

// Client fetches the two independent external feeds a refresh cycle needs.
// It is an interface so the refresh coordinator can be tested with fixtures.
type Client interface {
	FetchCountries(ctx context.Context) ([]RawCountry, error)
	FetchRates(ctx context.Context) (map[string]decimal.Decimal, error)
}

// HTTPClient is the production Client, calling both feeds over HTTP with a
// shared bounded timeout. A single failed attempt aborts the caller; there
// are no retries.
type HTTPClient struct {
	countriesURL string
	ratesURL     string
	httpClient   *http.Client
}

// NewHTTPClient builds a feed client from the configured URLs and timeout.
func NewHTTPClient(cfg *config.Config) *HTTPClient {
	return &HTTPClient{
		countriesURL: cfg.CountriesAPIURL,
		ratesURL:     cfg.RatesAPIURL,
		httpClient:   &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// FetchCountries retrieves the country catalog snapshot.
func (c *HTTPClient) FetchCountries(ctx context.Context) ([]RawCountry, error) {
	var countries []RawCountry
	if err := c.getJSON(ctx, "countries", c.countriesURL, &countries); err != nil {
		return nil, err
	}
	return countries, nil
}

type ratesResponse struct {
	Result string                     `json:"result"`
	Rates  map[string]decimal.Decimal `json:"rates"`
}

// FetchRates retrieves the USD exchange-rate snapshot keyed by currency code.
func (c *HTTPClient) FetchRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	var resp ratesResponse
	if err := c.getJSON(ctx, "exchange rates", c.ratesURL, &resp); err != nil {
		return nil, err
	}
	if resp.Result != "success" {
		customLog.Warnf("Source: exchange rates feed reported result '%s'", resp.Result)
		return nil, fmt.Errorf("exchange rates feed: %w", ErrSourceUnavailable)
	}
	return resp.Rates, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, feed, url string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%s feed: %w", feed, ErrSourceUnavailable)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		customLog.Warnf("Source: %s feed request failed: %v", feed, err)
		return fmt.Errorf("%s feed: %w", feed, ErrSourceUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		customLog.Warnf("Source: %s feed returned status %d", feed, resp.StatusCode)
		return fmt.Errorf("%s feed: %w", feed, ErrSourceUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		customLog.Warnf("Source: %s feed returned unreadable body: %v", feed, err)
		return fmt.Errorf("%s feed: %w", feed, ErrSourceUnavailable)
	}
	return nil
}
