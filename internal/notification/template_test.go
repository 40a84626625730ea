package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSite(siteID string, checkIn time.Time, price *float64) models.AvailabilityRecord {
	url := "https://www.reservecalifornia.com/book/" + siteID
	return models.AvailabilityRecord{
		Park:        models.ParkCarlsbad,
		SiteID:      siteID,
		SiteName:    "Site " + siteID,
		SiteType:    models.SiteTypeTent,
		CheckInDate: checkIn,
		Status:      models.StatusAvailable,
		Price:       price,
		BookingURL:  &url,
	}
}

func TestRenderAlertEmail(t *testing.T) {
	price := 45.0
	sites := []models.AvailabilityRecord{
		testSite("A12", time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), &price),
		testSite("A13", time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC), nil),
	}

	subject, body, err := RenderAlertEmail(sites, time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "Campsite alert: 2 available at Carlsbad State Beach", subject)
	assert.Contains(t, body, "Site A12")
	assert.Contains(t, body, "$45.00")
	assert.Contains(t, body, "n/a")
	assert.Contains(t, body, "https://www.reservecalifornia.com/book/A12")
	assert.Contains(t, body, "Carlsbad State Beach")
	// Friday check-in carries the weekend marker.
	assert.True(t, strings.Contains(body, "&#9733;"))
}

func TestRenderAlertEmailMultiPark(t *testing.T) {
	siteA := testSite("A1", time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), nil)
	siteB := testSite("B1", time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC), nil)
	siteB.Park = models.ParkJoshuaTree

	subject, _, err := RenderAlertEmail([]models.AvailabilityRecord{siteA, siteB}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Campsite alert: 2 sites available", subject)
}

func TestRenderAlertEmailEmpty(t *testing.T) {
	_, _, err := RenderAlertEmail(nil, time.Now())
	assert.Error(t, err)
}
