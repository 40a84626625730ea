package alerts

import (
	"testing"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(park models.Park, siteID string, checkIn time.Time, status models.AvailabilityStatus, price *float64) models.AvailabilityRecord {
	return models.AvailabilityRecord{
		Park:        park,
		SiteID:      siteID,
		SiteName:    "Site " + siteID,
		SiteType:    models.SiteTypeTent,
		CheckInDate: checkIn,
		Status:      status,
		Price:       price,
		ScrapedAt:   time.Now(),
	}
}

func price(v float64) *float64 { return &v }

func snapshotOf(records ...models.AvailabilityRecord) map[string]models.AvailabilityRecord {
	snapshot := make(map[string]models.AvailabilityRecord, len(records))
	for _, rec := range records {
		snapshot[rec.CompositeKey()] = rec
	}
	return snapshot
}

func TestDiffCreated(t *testing.T) {
	scraped := []models.AvailabilityRecord{
		record(models.ParkCarlsbad, "A12", date(2026, 10, 2), models.StatusAvailable, price(45)),
	}

	events := Diff(map[string]models.AvailabilityRecord{}, scraped)
	require.Len(t, events, 1)
	assert.Equal(t, ChangeCreated, events[0].Kind)
	assert.Nil(t, events[0].Previous)
	assert.True(t, events[0].Alertable())
}

func TestDiffCreatedBookedNotAlertable(t *testing.T) {
	scraped := []models.AvailabilityRecord{
		record(models.ParkCarlsbad, "A12", date(2026, 10, 2), models.StatusBooked, nil),
	}

	events := Diff(map[string]models.AvailabilityRecord{}, scraped)
	require.Len(t, events, 1)
	assert.Equal(t, ChangeCreated, events[0].Kind)
	assert.False(t, events[0].Alertable())
}

func TestDiffStatusChanged(t *testing.T) {
	old := record(models.ParkJoshuaTree, "J1", date(2026, 11, 6), models.StatusBooked, price(30))
	updated := record(models.ParkJoshuaTree, "J1", date(2026, 11, 6), models.StatusAvailable, price(30))

	events := Diff(snapshotOf(old), []models.AvailabilityRecord{updated})
	require.Len(t, events, 1)
	assert.Equal(t, ChangeStatusChanged, events[0].Kind)
	require.NotNil(t, events[0].Previous)
	assert.Equal(t, models.StatusBooked, events[0].Previous.Status)
	assert.True(t, events[0].Alertable())
}

func TestDiffTransitionOutOfAvailableNotAlertable(t *testing.T) {
	old := record(models.ParkJoshuaTree, "J1", date(2026, 11, 6), models.StatusAvailable, price(30))
	updated := record(models.ParkJoshuaTree, "J1", date(2026, 11, 6), models.StatusBooked, price(30))

	events := Diff(snapshotOf(old), []models.AvailabilityRecord{updated})
	require.Len(t, events, 1)
	assert.Equal(t, ChangeStatusChanged, events[0].Kind)
	assert.False(t, events[0].Alertable())
}

func TestDiffPriceChanged(t *testing.T) {
	old := record(models.ParkOceanside, "O5", date(2026, 7, 10), models.StatusAvailable, price(55))
	updated := record(models.ParkOceanside, "O5", date(2026, 7, 10), models.StatusAvailable, price(65))

	events := Diff(snapshotOf(old), []models.AvailabilityRecord{updated})
	require.Len(t, events, 1)
	assert.Equal(t, ChangePriceChanged, events[0].Kind)
	assert.False(t, events[0].Alertable())
}

func TestDiffPriceAppears(t *testing.T) {
	old := record(models.ParkOceanside, "O5", date(2026, 7, 10), models.StatusAvailable, nil)
	updated := record(models.ParkOceanside, "O5", date(2026, 7, 10), models.StatusAvailable, price(65))

	events := Diff(snapshotOf(old), []models.AvailabilityRecord{updated})
	require.Len(t, events, 1)
	assert.Equal(t, ChangePriceChanged, events[0].Kind)
}

func TestDiffUnchangedProducesNoEvent(t *testing.T) {
	old := record(models.ParkCarlsbad, "A12", date(2026, 10, 2), models.StatusAvailable, price(45))
	same := record(models.ParkCarlsbad, "A12", date(2026, 10, 2), models.StatusAvailable, price(45))

	events := Diff(snapshotOf(old), []models.AvailabilityRecord{same})
	assert.Empty(t, events)
}

func TestDiffAbsentRecordsIgnored(t *testing.T) {
	old := record(models.ParkCarlsbad, "A12", date(2026, 10, 2), models.StatusAvailable, price(45))

	events := Diff(snapshotOf(old), nil)
	assert.Empty(t, events)
}

func TestDiffAtMostOneEventPerKey(t *testing.T) {
	dup1 := record(models.ParkCarlsbad, "A12", date(2026, 10, 2), models.StatusAvailable, price(45))
	dup2 := record(models.ParkCarlsbad, "A12", date(2026, 10, 2), models.StatusBooked, price(45))

	events := Diff(map[string]models.AvailabilityRecord{}, []models.AvailabilityRecord{dup1, dup2})
	require.Len(t, events, 1)
	assert.Equal(t, models.StatusAvailable, events[0].Record.Status)
}

func TestDiffDeterministicOrder(t *testing.T) {
	scraped := []models.AvailabilityRecord{
		record(models.ParkOceanside, "O2", date(2026, 7, 10), models.StatusAvailable, nil),
		record(models.ParkCarlsbad, "A1", date(2026, 7, 10), models.StatusAvailable, nil),
		record(models.ParkCarlsbad, "A1", date(2026, 7, 9), models.StatusAvailable, nil),
	}

	first := Diff(map[string]models.AvailabilityRecord{}, scraped)

	reversed := []models.AvailabilityRecord{scraped[2], scraped[1], scraped[0]}
	second := Diff(map[string]models.AvailabilityRecord{}, reversed)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Record.CompositeKey(), second[i].Record.CompositeKey())
	}
	for i := 1; i < len(first); i++ {
		assert.Less(t, first[i-1].Record.CompositeKey(), first[i].Record.CompositeKey())
	}
}

func TestDiffIdempotent(t *testing.T) {
	scraped := []models.AvailabilityRecord{
		record(models.ParkCarlsbad, "A12", date(2026, 10, 2), models.StatusAvailable, price(45)),
		record(models.ParkCarlsbad, "A13", date(2026, 10, 2), models.StatusBooked, nil),
	}

	events := Diff(snapshotOf(scraped...), scraped)
	assert.Empty(t, events)
}
