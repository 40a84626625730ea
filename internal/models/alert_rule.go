package models

import (
	"fmt"
	"strings"
	"time"
)

const (
	MinNightsFloor         = 1
	MinNightsCeil          = 14
	AdvanceNoticeDaysFloor = 1
	AdvanceNoticeDaysCeil  = 180
)

// AlertRule describes what a user wants to be notified about. Rules are
// immutable while a scrape cycle matches against them; only an explicit user
// update changes them.
type AlertRule struct {
	ID                string     `json:"id" db:"id"`
	UserEmail         string     `json:"user_email" db:"user_email"`
	Parks             []Park     `json:"parks" db:"parks"`
	SiteTypes         []SiteType `json:"site_types" db:"site_types"`
	WeekendOnly       bool       `json:"weekend_only" db:"weekend_only"`
	MinNights         int        `json:"min_nights" db:"min_nights"`
	MaxPrice          *float64   `json:"max_price,omitempty" db:"max_price"`
	AdvanceNoticeDays int        `json:"advance_notice_days" db:"advance_notice_days"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// ValidationError reports which field of a rule draft failed which constraint.
type ValidationError struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Constraint)
}

// Validate checks a rule draft against the closed enumerations and the
// numeric ranges. The first violation found is returned.
func (r *AlertRule) Validate() error {
	if !validEmail(r.UserEmail) {
		return &ValidationError{Field: "user_email", Constraint: "must be a valid email address"}
	}
	if len(r.Parks) == 0 {
		return &ValidationError{Field: "parks", Constraint: "at least one park is required"}
	}
	for _, p := range r.Parks {
		if _, err := ParsePark(string(p)); err != nil {
			return &ValidationError{Field: "parks", Constraint: fmt.Sprintf("unknown park %q", p)}
		}
	}
	if len(r.SiteTypes) == 0 {
		return &ValidationError{Field: "site_types", Constraint: "at least one site type is required"}
	}
	for _, st := range r.SiteTypes {
		if _, err := ParseSiteType(string(st)); err != nil {
			return &ValidationError{Field: "site_types", Constraint: fmt.Sprintf("unknown site type %q", st)}
		}
	}
	if r.MinNights < MinNightsFloor || r.MinNights > MinNightsCeil {
		return &ValidationError{
			Field:      "min_nights",
			Constraint: fmt.Sprintf("must be between %d and %d", MinNightsFloor, MinNightsCeil),
		}
	}
	if r.MaxPrice != nil && *r.MaxPrice < 0 {
		return &ValidationError{Field: "max_price", Constraint: "must be >= 0"}
	}
	if r.AdvanceNoticeDays < AdvanceNoticeDaysFloor || r.AdvanceNoticeDays > AdvanceNoticeDaysCeil {
		return &ValidationError{
			Field:      "advance_notice_days",
			Constraint: fmt.Sprintf("must be between %d and %d", AdvanceNoticeDaysFloor, AdvanceNoticeDaysCeil),
		}
	}
	return nil
}

// MonitorsPark reports whether the rule covers the given park.
func (r *AlertRule) MonitorsPark(p Park) bool {
	for _, rp := range r.Parks {
		if rp == p {
			return true
		}
	}
	return false
}

// MonitorsSiteType reports whether the rule covers the given site type.
func (r *AlertRule) MonitorsSiteType(st SiteType) bool {
	for _, rst := range r.SiteTypes {
		if rst == st {
			return true
		}
	}
	return false
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
