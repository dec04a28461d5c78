package models

import "time"

// MVisitorStats are the portal's visitor counters.
type MVisitorStats struct {
	Online      int       `json:"online"`
	Peak        int       `json:"peak"`
	Total       int       `json:"total"`
	LastUpdated time.Time `json:"lastUpdated"`
}
