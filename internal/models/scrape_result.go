package models

import "time"

// ScrapeResult is the append-only audit record for one scrape attempt of one
// park. It is never updated after being stored.
type ScrapeResult struct {
	ID                    string     `json:"id" db:"id"`
	Park                  Park       `json:"park" db:"park"`
	ScrapeTimestamp       time.Time  `json:"scrape_timestamp" db:"scrape_timestamp"`
	CompletedAt           *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	SitesFound            int        `json:"sites_found" db:"sites_found"`
	AvailableSites        int        `json:"available_sites" db:"available_sites"`
	Errors                []string   `json:"errors,omitempty" db:"errors"`
	Warnings              []string   `json:"warnings,omitempty" db:"warnings"`
	ProcessingTimeSeconds float64    `json:"processing_time_seconds" db:"processing_time_seconds"`
	Success               bool       `json:"success" db:"success"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
}

// AddError records an error and marks the attempt failed.
func (r *ScrapeResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Success = false
}

func (r *ScrapeResult) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}
