package alerts

import (
	"testing"
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func baseRule() models.AlertRule {
	return models.AlertRule{
		ID:                "rule-1",
		UserEmail:         "camper@example.com",
		Parks:             []models.Park{models.ParkCarlsbad, models.ParkJoshuaTree},
		SiteTypes:         []models.SiteType{models.SiteTypeTent, models.SiteTypeRV},
		MinNights:         1,
		AdvanceNoticeDays: 1,
		IsActive:          true,
	}
}

// 2026-10-02 is a Friday.
var friday = date(2026, 10, 2)

func matchOpts() MatchOptions {
	return MatchOptions{Now: date(2026, 9, 1)}
}

func TestMatchBasics(t *testing.T) {
	rule := baseRule()
	rec := record(models.ParkCarlsbad, "A12", friday, models.StatusAvailable, price(45))

	assert.True(t, Match(rule, rec, nil, matchOpts()))

	inactive := rule
	inactive.IsActive = false
	assert.False(t, Match(inactive, rec, nil, matchOpts()))

	otherPark := rec
	otherPark.Park = models.ParkOceanside
	assert.False(t, Match(rule, otherPark, nil, matchOpts()))

	cabin := rec
	cabin.SiteType = models.SiteTypeCabin
	assert.False(t, Match(rule, cabin, nil, matchOpts()))
}

func TestMatchWeekendOnly(t *testing.T) {
	rule := baseRule()
	rule.WeekendOnly = true

	weekdays := map[time.Time]bool{
		date(2026, 10, 1): false, // Thursday
		date(2026, 10, 2): true,  // Friday
		date(2026, 10, 3): true,  // Saturday
		date(2026, 10, 4): true,  // Sunday
		date(2026, 10, 5): false, // Monday
	}
	for day, want := range weekdays {
		rec := record(models.ParkCarlsbad, "A12", day, models.StatusAvailable, nil)
		assert.Equal(t, want, Match(rule, rec, nil, matchOpts()), day.Weekday().String())
	}
}

func TestMatchMaxPriceInclusive(t *testing.T) {
	rule := baseRule()
	rule.MaxPrice = price(50)

	under := record(models.ParkCarlsbad, "A12", friday, models.StatusAvailable, price(49.99))
	exact := record(models.ParkCarlsbad, "A13", friday, models.StatusAvailable, price(50))
	over := record(models.ParkCarlsbad, "A14", friday, models.StatusAvailable, price(50.01))
	unpriced := record(models.ParkCarlsbad, "A15", friday, models.StatusAvailable, nil)

	assert.True(t, Match(rule, under, nil, matchOpts()))
	assert.True(t, Match(rule, exact, nil, matchOpts()))
	assert.False(t, Match(rule, over, nil, matchOpts()))
	assert.True(t, Match(rule, unpriced, nil, matchOpts()))
}

func TestMatchAdvanceNoticeMinimumLead(t *testing.T) {
	rule := baseRule()
	rule.AdvanceNoticeDays = 7
	opts := MatchOptions{AdvanceNoticeMode: AdvanceModeMinimumLead, Now: date(2026, 9, 25)}

	tooSoon := record(models.ParkCarlsbad, "A12", date(2026, 9, 28), models.StatusAvailable, nil)
	exactLead := record(models.ParkCarlsbad, "A12", friday, models.StatusAvailable, nil)
	farOut := record(models.ParkCarlsbad, "A12", date(2026, 11, 20), models.StatusAvailable, nil)
	past := record(models.ParkCarlsbad, "A12", date(2026, 9, 20), models.StatusAvailable, nil)

	assert.False(t, Match(rule, tooSoon, nil, opts))
	assert.True(t, Match(rule, exactLead, nil, opts))
	assert.True(t, Match(rule, farOut, nil, opts))
	assert.False(t, Match(rule, past, nil, opts))
}

func TestMatchAdvanceNoticeMaxWindow(t *testing.T) {
	rule := baseRule()
	rule.AdvanceNoticeDays = 7
	opts := MatchOptions{AdvanceNoticeMode: AdvanceModeMaxWindow, Now: date(2026, 9, 25)}

	within := record(models.ParkCarlsbad, "A12", date(2026, 9, 28), models.StatusAvailable, nil)
	boundary := record(models.ParkCarlsbad, "A12", friday, models.StatusAvailable, nil)
	beyond := record(models.ParkCarlsbad, "A12", date(2026, 10, 10), models.StatusAvailable, nil)

	assert.True(t, Match(rule, within, nil, opts))
	assert.True(t, Match(rule, boundary, nil, opts))
	assert.False(t, Match(rule, beyond, nil, opts))
}

func TestMatchMinNightsConsecutive(t *testing.T) {
	rule := baseRule()
	rule.MinNights = 3

	rec := record(models.ParkCarlsbad, "A12", friday, models.StatusAvailable, nil)

	allOpen := BuildSiteDates([]models.AvailabilityRecord{
		rec,
		record(models.ParkCarlsbad, "A12", date(2026, 10, 3), models.StatusAvailable, nil),
		record(models.ParkCarlsbad, "A12", date(2026, 10, 4), models.StatusAvailable, nil),
	})
	assert.True(t, Match(rule, rec, allOpen, matchOpts()))

	gap := BuildSiteDates([]models.AvailabilityRecord{
		rec,
		record(models.ParkCarlsbad, "A12", date(2026, 10, 3), models.StatusBooked, nil),
		record(models.ParkCarlsbad, "A12", date(2026, 10, 4), models.StatusAvailable, nil),
	})
	assert.False(t, Match(rule, rec, gap, matchOpts()))

	missing := BuildSiteDates([]models.AvailabilityRecord{rec})
	assert.False(t, Match(rule, rec, missing, matchOpts()))

	otherSite := BuildSiteDates([]models.AvailabilityRecord{
		rec,
		record(models.ParkCarlsbad, "A99", date(2026, 10, 3), models.StatusAvailable, nil),
		record(models.ParkCarlsbad, "A99", date(2026, 10, 4), models.StatusAvailable, nil),
	})
	assert.False(t, Match(rule, rec, otherSite, matchOpts()))
}

func TestMatchSingleNightIgnoresIndex(t *testing.T) {
	rule := baseRule()
	rule.MinNights = 1

	rec := record(models.ParkCarlsbad, "A12", friday, models.StatusAvailable, nil)
	assert.True(t, Match(rule, rec, nil, matchOpts()))
}
