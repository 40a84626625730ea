package scraper

import (
	"testing"
	"time"

	"github.com/campwatch/campwatch-api/internal/crawler"
	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestParseBasic(t *testing.T) {
	scrapedAt := time.Now()
	payloads := []crawler.SitePayload{
		{
			SiteID:      "A12",
			SiteName:    "Jumbo Rocks 12",
			SiteType:    "Standard",
			CheckInDate: "2026-10-02",
			Status:      "Available",
			Price:       floatPtr(35),
			Amenities:   []string{"fire ring"},
			BookingURL:  "https://example.com/book/A12",
		},
	}

	records, warnings := Parse(models.ParkJoshuaTree, payloads, scrapedAt)
	require.Len(t, records, 1)
	assert.Empty(t, warnings)

	rec := records[0]
	assert.Equal(t, models.ParkJoshuaTree, rec.Park)
	assert.Equal(t, "A12", rec.SiteID)
	assert.Equal(t, models.SiteTypeTent, rec.SiteType)
	assert.Equal(t, models.StatusAvailable, rec.Status)
	assert.Equal(t, time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), rec.CheckInDate)
	require.NotNil(t, rec.Price)
	assert.Equal(t, 35.0, *rec.Price)
	require.NotNil(t, rec.BookingURL)
	assert.Equal(t, scrapedAt, rec.ScrapedAt)
}

func TestParseStatusNormalization(t *testing.T) {
	cases := map[string]models.AvailabilityStatus{
		"available":   models.StatusAvailable,
		"OPEN":        models.StatusAvailable,
		"a":           models.StatusAvailable,
		"booked":      models.StatusBooked,
		"Reserved":    models.StatusBooked,
		"r":           models.StatusBooked,
		"unavailable": models.StatusBooked,
		"NA":          models.StatusBooked,
		"closed":      models.StatusClosed,
		"c":           models.StatusClosed,
		"maintenance": models.StatusMaintenance,
		"m":           models.StatusMaintenance,
	}
	for raw, want := range cases {
		status, ok := NormalizeStatus(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, status, raw)
	}

	_, ok := NormalizeStatus("pending")
	assert.False(t, ok)
}

func TestParseSiteTypeNormalization(t *testing.T) {
	cases := map[string]models.SiteType{
		"tent":           models.SiteTypeTent,
		"Standard":       models.SiteTypeTent,
		"primitive":      models.SiteTypeTent,
		"rv":             models.SiteTypeRV,
		"electric":       models.SiteTypeRV,
		"Full Hookup":    models.SiteTypeRV,
		"partial hookup": models.SiteTypeRV,
		"cabin":          models.SiteTypeCabin,
		"group":          models.SiteTypeGroup,
	}
	for raw, want := range cases {
		siteType, ok := NormalizeSiteType(raw)
		require.True(t, ok, raw)
		assert.Equal(t, want, siteType, raw)
	}
}

func TestParseDropsBadEntries(t *testing.T) {
	payloads := []crawler.SitePayload{
		{SiteID: "", CheckInDate: "2026-10-02", Status: "available"},
		{SiteID: "B1", CheckInDate: "not-a-date", Status: "available"},
		{SiteID: "B2", CheckInDate: "2026-10-02", Status: "wat"},
		{SiteID: "B3", CheckInDate: "2026-10-02", Status: "available", SiteType: "yurt"},
	}

	records, warnings := Parse(models.ParkCarlsbad, payloads, time.Now())
	require.Len(t, records, 1)
	assert.Equal(t, "B3", records[0].SiteID)
	assert.Equal(t, models.SiteTypeTent, records[0].SiteType)
	assert.Len(t, warnings, 4)
}

func TestParseNegativePriceDiscarded(t *testing.T) {
	payloads := []crawler.SitePayload{
		{SiteID: "C1", SiteType: "tent", CheckInDate: "2026-10-02", Status: "available", Price: floatPtr(-5)},
	}

	records, warnings := Parse(models.ParkCarlsbad, payloads, time.Now())
	require.Len(t, records, 1)
	assert.Nil(t, records[0].Price)
	assert.Len(t, warnings, 1)
}

func TestParseDeduplicates(t *testing.T) {
	payloads := []crawler.SitePayload{
		{SiteID: "D1", SiteType: "tent", CheckInDate: "2026-10-02", Status: "available", Price: floatPtr(40)},
		{SiteID: "D1", SiteType: "tent", CheckInDate: "2026-10-02", Status: "booked"},
	}

	records, warnings := Parse(models.ParkCarlsbad, payloads, time.Now())
	require.Len(t, records, 1)
	assert.Equal(t, models.StatusAvailable, records[0].Status)
	assert.Len(t, warnings, 1)
}

func TestParseEmptySiteNameFallsBackToID(t *testing.T) {
	payloads := []crawler.SitePayload{
		{SiteID: "E1", SiteType: "rv", CheckInDate: "2026-10-02", Status: "available"},
	}

	records, _ := Parse(models.ParkOceanside, payloads, time.Now())
	require.Len(t, records, 1)
	assert.Equal(t, "E1", records[0].SiteName)
}
