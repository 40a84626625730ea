package scraper

import (
	"fmt"
	"strings"
	"time"

	"github.com/campwatch/campwatch-api/internal/crawler"
	"github.com/campwatch/campwatch-api/internal/models"
)

var statusAliases = map[string]models.AvailabilityStatus{
	"available":   models.StatusAvailable,
	"open":        models.StatusAvailable,
	"a":           models.StatusAvailable,
	"booked":      models.StatusBooked,
	"reserved":    models.StatusBooked,
	"r":           models.StatusBooked,
	"unavailable": models.StatusBooked,
	"na":          models.StatusBooked,
	"closed":      models.StatusClosed,
	"c":           models.StatusClosed,
	"maintenance": models.StatusMaintenance,
	"m":           models.StatusMaintenance,
}

var siteTypeAliases = map[string]models.SiteType{
	"tent":           models.SiteTypeTent,
	"standard":       models.SiteTypeTent,
	"primitive":      models.SiteTypeTent,
	"rv":             models.SiteTypeRV,
	"electric":       models.SiteTypeRV,
	"hookup":         models.SiteTypeRV,
	"full hookup":    models.SiteTypeRV,
	"partial hookup": models.SiteTypeRV,
	"cabin":          models.SiteTypeCabin,
	"group":          models.SiteTypeGroup,
}

// Parse converts raw crawler payloads into availability records. Entries
// that cannot be interpreted are dropped with a warning rather than failing
// the whole scrape; duplicates keep the first occurrence.
func Parse(park models.Park, payloads []crawler.SitePayload, scrapedAt time.Time) ([]models.AvailabilityRecord, []string) {
	var (
		records  []models.AvailabilityRecord
		warnings []string
	)
	seen := make(map[string]bool, len(payloads))

	for _, p := range payloads {
		if strings.TrimSpace(p.SiteID) == "" {
			warnings = append(warnings, "dropped entry with empty site_id")
			continue
		}

		status, ok := NormalizeStatus(p.Status)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("site %s: unknown status %q", p.SiteID, p.Status))
			continue
		}

		checkIn, err := time.Parse("2006-01-02", strings.TrimSpace(p.CheckInDate))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("site %s: bad check_in_date %q", p.SiteID, p.CheckInDate))
			continue
		}

		siteType, ok := NormalizeSiteType(p.SiteType)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("site %s: unknown site_type %q, assuming tent", p.SiteID, p.SiteType))
			siteType = models.SiteTypeTent
		}

		price := p.Price
		if price != nil && *price < 0 {
			warnings = append(warnings, fmt.Sprintf("site %s: negative price %.2f discarded", p.SiteID, *price))
			price = nil
		}

		rec := models.AvailabilityRecord{
			Park:         park,
			SiteID:       strings.TrimSpace(p.SiteID),
			SiteName:     strings.TrimSpace(p.SiteName),
			SiteType:     siteType,
			CheckInDate:  checkIn,
			Status:       status,
			Price:        price,
			MaxOccupancy: p.MaxOccupancy,
			Amenities:    p.Amenities,
			ScrapedAt:    scrapedAt,
		}
		if rec.SiteName == "" {
			rec.SiteName = rec.SiteID
		}
		if url := strings.TrimSpace(p.BookingURL); url != "" {
			rec.BookingURL = &url
		}

		key := rec.CompositeKey()
		if seen[key] {
			warnings = append(warnings, fmt.Sprintf("duplicate entry for %s ignored", key))
			continue
		}
		seen[key] = true

		records = append(records, rec)
	}

	return records, warnings
}

// NormalizeStatus maps a raw status string onto a known availability status.
func NormalizeStatus(raw string) (models.AvailabilityStatus, bool) {
	status, ok := statusAliases[strings.ToLower(strings.TrimSpace(raw))]
	return status, ok
}

// NormalizeSiteType maps a raw site type string onto a known site type.
func NormalizeSiteType(raw string) (models.SiteType, bool) {
	siteType, ok := siteTypeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return siteType, ok
}
