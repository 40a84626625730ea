package models

import (
	"fmt"
	"time"
)

type Park string

const (
	ParkJoshuaTree Park = "joshua_tree"
	ParkCarlsbad   Park = "carlsbad"
	ParkOceanside  Park = "oceanside"
)

// AllParks lists every monitored park in a stable order.
var AllParks = []Park{ParkJoshuaTree, ParkCarlsbad, ParkOceanside}

func ParsePark(s string) (Park, error) {
	switch Park(s) {
	case ParkJoshuaTree, ParkCarlsbad, ParkOceanside:
		return Park(s), nil
	}
	return "", fmt.Errorf("unknown park %q", s)
}

type SiteType string

const (
	SiteTypeTent   SiteType = "tent"
	SiteTypeRV     SiteType = "rv"
	SiteTypeCabin  SiteType = "cabin"
	SiteTypeGroup  SiteType = "group"
	SiteTypeDayUse SiteType = "day_use"
)

var AllSiteTypes = []SiteType{SiteTypeTent, SiteTypeRV, SiteTypeCabin, SiteTypeGroup, SiteTypeDayUse}

func ParseSiteType(s string) (SiteType, error) {
	switch SiteType(s) {
	case SiteTypeTent, SiteTypeRV, SiteTypeCabin, SiteTypeGroup, SiteTypeDayUse:
		return SiteType(s), nil
	}
	return "", fmt.Errorf("unknown site type %q", s)
}

type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusBooked      AvailabilityStatus = "booked"
	StatusClosed      AvailabilityStatus = "closed"
	StatusMaintenance AvailabilityStatus = "maintenance"
	StatusUnknown     AvailabilityStatus = "unknown"
)

// AvailabilityRecord is the current state of one bookable site on one
// check-in date. Exactly one row exists per (park, site_id, check_in_date);
// a fresh scrape overwrites it in place.
type AvailabilityRecord struct {
	ID           string             `json:"id" db:"id"`
	Park         Park               `json:"park" db:"park"`
	SiteID       string             `json:"site_id" db:"site_id"`
	SiteName     string             `json:"site_name" db:"site_name"`
	SiteType     SiteType           `json:"site_type" db:"site_type"`
	CheckInDate  time.Time          `json:"check_in_date" db:"check_in_date"`
	Status       AvailabilityStatus `json:"status" db:"status"`
	Price        *float64           `json:"price,omitempty" db:"price"`
	MaxOccupancy *int               `json:"max_occupancy,omitempty" db:"max_occupancy"`
	Amenities    []string           `json:"amenities,omitempty" db:"amenities"`
	BookingURL   *string            `json:"booking_url,omitempty" db:"booking_url"`
	ScrapedAt    time.Time          `json:"scraped_at" db:"scraped_at"`
}

// CompositeKey identifies the bookable unit-date, formatted the same way the
// notification dedup rows store it.
func (r AvailabilityRecord) CompositeKey() string {
	return fmt.Sprintf("%s_%s_%s", r.Park, r.SiteID, r.CheckInDate.Format("2006-01-02"))
}

// IsWeekend reports whether the check-in falls on Friday, Saturday or Sunday.
func (r AvailabilityRecord) IsWeekend() bool {
	switch r.CheckInDate.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		return true
	}
	return false
}
