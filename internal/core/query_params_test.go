// internal/core/query_params_test.go
package core

import (
	"errors"
	"net/url"
	"testing"
)

func TestParseCountryListOptions(t *testing.T) {
	testCases := []struct {
		name    string
		query   string
		want    CountryListOptions
		wantErr bool
		comment string
	}{
		{"empty query", "", CountryListOptions{Sort: SortNone}, false, ""},
		{"region filter", "region=Europe", CountryListOptions{Region: "Europe", Sort: SortNone}, false, ""},
		{"currency filter", "currency=EUR", CountryListOptions{CurrencyCode: "EUR", Sort: SortNone}, false, ""},
		{"sort desc", "sort=gdp_desc", CountryListOptions{Sort: SortGDPDesc}, false, ""},
		{"sort asc", "sort=gdp_asc", CountryListOptions{Sort: SortGDPAsc}, false, ""},
		{"sort mixed case", "sort=GDP_DESC", CountryListOptions{Sort: SortGDPDesc}, false, ""},
		{"all combined", "region=Africa&currency=NGN&sort=gdp_asc",
			CountryListOptions{Region: "Africa", CurrencyCode: "NGN", Sort: SortGDPAsc}, false, ""},
		{"invalid sort", "sort=population", CountryListOptions{}, true, "unknown sort mode"},
		{"region preserved verbatim", "region=europe", CountryListOptions{Region: "europe", Sort: SortNone}, false, "filters are case-sensitive"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.query)
			if err != nil {
				t.Fatalf("bad test query %q: %v", tc.query, err)
			}
			got, err := ParseCountryListOptions(values)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseCountryListOptions(%q) expected error, got %+v. %s", tc.query, got, tc.comment)
				}
				if !errors.Is(err, ErrInvalidQuery) {
					t.Errorf("error should wrap ErrInvalidQuery, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCountryListOptions(%q) unexpected error: %v", tc.query, err)
			}
			if *got != tc.want {
				t.Errorf("ParseCountryListOptions(%q) = %+v; want %+v. %s", tc.query, *got, tc.want, tc.comment)
			}
		})
	}
}
