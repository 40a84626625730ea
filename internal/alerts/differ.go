// Package alerts implements the availability diffing and alert matching
// pipeline that turns scraped snapshots into notifications.
package alerts

import (
	"sort"

	"github.com/campwatch/campwatch-api/internal/models"
)

type ChangeKind string

const (
	ChangeCreated       ChangeKind = "created"
	ChangeStatusChanged ChangeKind = "status_changed"
	ChangePriceChanged  ChangeKind = "price_changed"
)

// ChangeEvent describes one difference between the stored snapshot and a
// freshly scraped record. Previous is nil for created events.
type ChangeEvent struct {
	Kind     ChangeKind
	Record   models.AvailabilityRecord
	Previous *models.AvailabilityRecord
}

// Alertable reports whether the event represents a transition into the
// available state. Records that were already available, or that changed in
// some other way, never trigger alerts.
func (e ChangeEvent) Alertable() bool {
	if e.Record.Status != models.StatusAvailable {
		return false
	}
	switch e.Kind {
	case ChangeCreated:
		return true
	case ChangeStatusChanged:
		return e.Previous == nil || e.Previous.Status != models.StatusAvailable
	default:
		return false
	}
}

// Diff compares the stored snapshot against freshly scraped records and
// returns at most one event per composite key, ordered by key. Keys present
// in the snapshot but absent from the scrape produce no event; a missing site
// is not evidence that it was booked.
func Diff(snapshot map[string]models.AvailabilityRecord, scraped []models.AvailabilityRecord) []ChangeEvent {
	var events []ChangeEvent
	seen := make(map[string]bool, len(scraped))

	for _, rec := range scraped {
		key := rec.CompositeKey()
		if seen[key] {
			continue
		}
		seen[key] = true

		prev, ok := snapshot[key]
		if !ok {
			events = append(events, ChangeEvent{Kind: ChangeCreated, Record: rec})
			continue
		}

		if prev.Status != rec.Status {
			p := prev
			events = append(events, ChangeEvent{Kind: ChangeStatusChanged, Record: rec, Previous: &p})
			continue
		}

		if !priceEqual(prev.Price, rec.Price) {
			p := prev
			events = append(events, ChangeEvent{Kind: ChangePriceChanged, Record: rec, Previous: &p})
		}
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Record.CompositeKey() < events[j].Record.CompositeKey()
	})
	return events
}

func priceEqual(a, b *float64) bool {
	if a == nil || b == nil {
		return (a == nil) == (b == nil)
	}
	return *a == *b
}
