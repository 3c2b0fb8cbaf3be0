// api/models/country_models.go
package models

import "time"

// --- Response Structs ---

// MessageResponse is the generic success envelope for message-only replies.
type MessageResponse struct {
	Message string `json:"message"`
}

// RefreshResponse reports a completed refresh cycle.
type RefreshResponse struct {
	Message        string `json:"message"`
	TotalCountries int64  `json:"total_countries"`
}

// StatusResponse combines the country count with the last committed refresh.
type StatusResponse struct {
	TotalCountries  int64      `json:"total_countries"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}
