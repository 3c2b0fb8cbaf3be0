// internal/core/query_params.go
package core

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidQuery marks list-filter validation failures so the error handler
// middleware can map them to a 400 response.
var ErrInvalidQuery = errors.New("invalid query parameter")

// SortMode selects the estimated-GDP ordering for country listings.
type SortMode string

const (
	SortNone    SortMode = ""
	SortGDPDesc SortMode = "gdp_desc"
	SortGDPAsc  SortMode = "gdp_asc"
)

// CountryListOptions holds parsed query parameters for listing countries.
type CountryListOptions struct {
	Region       string
	CurrencyCode string
	Sort         SortMode
}

// ParseCountryListOptions extracts filter and sort options from query parameters.
// Region and currency filters are passed through verbatim (exact-match,
// case-sensitive); the sort mode must be one of the known values.
func ParseCountryListOptions(queryParams url.Values) (*CountryListOptions, error) {
	opts := &CountryListOptions{
		Region:       queryParams.Get("region"),
		CurrencyCode: queryParams.Get("currency"),
		Sort:         SortNone,
	}

	if sortStr := queryParams.Get("sort"); sortStr != "" {
		switch SortMode(strings.ToLower(sortStr)) {
		case SortGDPDesc:
			opts.Sort = SortGDPDesc
		case SortGDPAsc:
			opts.Sort = SortGDPAsc
		default:
			return nil, fmt.Errorf("%w: 'sort' must be 'gdp_desc' or 'gdp_asc'", ErrInvalidQuery)
		}
	}

	return opts, nil
}
