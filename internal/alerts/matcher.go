package alerts

import (
	"time"

	"github.com/campwatch/campwatch-api/internal/models"
)

// AdvanceNoticeMode selects how a rule's advance_notice_days is interpreted.
type AdvanceNoticeMode string

const (
	// AdvanceModeMinimumLead requires at least advance_notice_days between
	// now and the check-in date.
	AdvanceModeMinimumLead AdvanceNoticeMode = "minimum_lead"
	// AdvanceModeMaxWindow requires the check-in date to fall within
	// advance_notice_days from now.
	AdvanceModeMaxWindow AdvanceNoticeMode = "max_window"
)

// MatchOptions tunes rule evaluation.
type MatchOptions struct {
	AdvanceNoticeMode AdvanceNoticeMode
	Now               time.Time
}

// SiteDates indexes availability status per site by check-in date. It backs
// the consecutive-nights check for rules with min_nights above one.
type SiteDates map[string]map[string]models.AvailabilityStatus

// BuildSiteDates builds a SiteDates index from a scraped snapshot.
func BuildSiteDates(records []models.AvailabilityRecord) SiteDates {
	index := make(SiteDates)
	for _, rec := range records {
		siteKey := string(rec.Park) + "/" + rec.SiteID
		dates, ok := index[siteKey]
		if !ok {
			dates = make(map[string]models.AvailabilityStatus)
			index[siteKey] = dates
		}
		dates[rec.CheckInDate.Format("2006-01-02")] = rec.Status
	}
	return index
}

// Match reports whether a record satisfies a rule. Rules that are inactive
// never match. A record with no price passes any price cap; absence of data
// is not treated as exceeding the limit.
func Match(rule models.AlertRule, rec models.AvailabilityRecord, dates SiteDates, opts MatchOptions) bool {
	if !rule.IsActive {
		return false
	}
	if !rule.MonitorsPark(rec.Park) {
		return false
	}
	if !rule.MonitorsSiteType(rec.SiteType) {
		return false
	}
	if rule.WeekendOnly && !rec.IsWeekend() {
		return false
	}
	if rule.MaxPrice != nil && rec.Price != nil && *rec.Price > *rule.MaxPrice {
		return false
	}
	if !advanceNoticeOK(rule, rec, opts) {
		return false
	}
	if rule.MinNights > 1 && !consecutiveNightsOK(rule.MinNights, rec, dates) {
		return false
	}
	return true
}

func advanceNoticeOK(rule models.AlertRule, rec models.AvailabilityRecord, opts MatchOptions) bool {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	checkIn := time.Date(rec.CheckInDate.Year(), rec.CheckInDate.Month(), rec.CheckInDate.Day(), 0, 0, 0, 0, time.UTC)
	daysAhead := int(checkIn.Sub(today).Hours() / 24)

	if daysAhead < 0 {
		return false
	}

	switch opts.AdvanceNoticeMode {
	case AdvanceModeMaxWindow:
		return daysAhead <= rule.AdvanceNoticeDays
	default:
		return daysAhead >= rule.AdvanceNoticeDays
	}
}

// consecutiveNightsOK checks that the site is available for minNights nights
// in a row starting at the record's check-in date. Dates missing from the
// index count as unavailable.
func consecutiveNightsOK(minNights int, rec models.AvailabilityRecord, dates SiteDates) bool {
	siteKey := string(rec.Park) + "/" + rec.SiteID
	siteDates, ok := dates[siteKey]
	if !ok {
		return false
	}
	for night := 0; night < minNights; night++ {
		date := rec.CheckInDate.AddDate(0, 0, night).Format("2006-01-02")
		if siteDates[date] != models.StatusAvailable {
			return false
		}
	}
	return true
}
